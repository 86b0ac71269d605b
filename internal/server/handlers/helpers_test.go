package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/phoneauth/internal/crypto"
	"github.com/iudanet/phoneauth/internal/models"
	"github.com/iudanet/phoneauth/internal/server/router"
	"github.com/iudanet/phoneauth/internal/server/storage"
	"github.com/iudanet/phoneauth/internal/server/storage/memory"
	"github.com/iudanet/phoneauth/pkg/api"
)

const (
	testPhone    = "12345678901"
	testPassword = "s3cret"
	testSecret   = "thisIsASecret"
)

// setupTestLogger creates a logger for testing
func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newRequest builds a router request; payload is JSON-encoded unless it is already []byte
func newRequest(path, method string, query url.Values, payload any) *router.Request {
	var raw []byte
	switch p := payload.(type) {
	case nil:
	case []byte:
		raw = p
	default:
		var err error
		raw, err = json.Marshal(p)
		if err != nil {
			panic(err)
		}
	}
	if query == nil {
		query = url.Values{}
	}
	return &router.Request{
		Path:    path,
		Method:  method,
		Query:   query,
		Headers: http.Header{},
		Payload: raw,
	}
}

func withToken(req *router.Request, id string) *router.Request {
	req.Headers.Set("token", id)
	return req
}

// mockUserStorage delegates to UserStorage unless an error is injected
type mockUserStorage struct {
	storage.UserStorage
	createError error
	getError    error
	updateError error
	deleteError error
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.createError != nil {
		return m.createError
	}
	return m.UserStorage.CreateUser(ctx, user)
}

func (m *mockUserStorage) GetUser(ctx context.Context, phone string) (*models.User, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.UserStorage.GetUser(ctx, phone)
}

func (m *mockUserStorage) UpdateUser(ctx context.Context, user *models.User) error {
	if m.updateError != nil {
		return m.updateError
	}
	return m.UserStorage.UpdateUser(ctx, user)
}

func (m *mockUserStorage) DeleteUser(ctx context.Context, phone string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	return m.UserStorage.DeleteUser(ctx, phone)
}

// mockTokenStorage delegates to TokenStorage unless an error is injected
type mockTokenStorage struct {
	storage.TokenStorage
	createError     error
	getError        error
	updateError     error
	deleteError     error
	deleteUserError error
}

func (m *mockTokenStorage) CreateToken(ctx context.Context, token *models.Token) error {
	if m.createError != nil {
		return m.createError
	}
	return m.TokenStorage.CreateToken(ctx, token)
}

func (m *mockTokenStorage) GetToken(ctx context.Context, id string) (*models.Token, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	return m.TokenStorage.GetToken(ctx, id)
}

func (m *mockTokenStorage) UpdateToken(ctx context.Context, token *models.Token) error {
	if m.updateError != nil {
		return m.updateError
	}
	return m.TokenStorage.UpdateToken(ctx, token)
}

func (m *mockTokenStorage) DeleteToken(ctx context.Context, id string) error {
	if m.deleteError != nil {
		return m.deleteError
	}
	return m.TokenStorage.DeleteToken(ctx, id)
}

func (m *mockTokenStorage) DeleteUserTokens(ctx context.Context, phone string) (int, error) {
	if m.deleteUserError != nil {
		return 0, m.deleteUserError
	}
	return m.TokenStorage.DeleteUserTokens(ctx, phone)
}

// fixture wires handlers over an in-memory store with a fixed clock
type fixture struct {
	now       time.Time
	userStore *mockUserStorage
	tokStore  *mockTokenStorage
	hasher    *crypto.Hasher
	auth      *Authenticator
	users     *UsersHandler
	tokens    *TokensHandler
}

func newFixture(t *testing.T, requireToken bool) *fixture {
	t.Helper()

	records := storage.NewRecords(memory.New(), time.Second)
	f := &fixture{
		now:       time.UnixMilli(1_700_000_000_000),
		userStore: &mockUserStorage{UserStorage: records},
		tokStore:  &mockTokenStorage{TokenStorage: records},
		hasher:    crypto.NewHasher(testSecret),
	}

	logger := setupTestLogger()
	clock := func() time.Time { return f.now }

	f.auth = NewAuthenticator(logger, f.tokStore, requireToken)
	f.auth.now = clock
	f.users = NewUsersHandler(logger, f.userStore, f.tokStore, f.hasher, f.auth)
	f.tokens = NewTokensHandler(logger, f.userStore, f.tokStore, f.hasher, time.Hour)
	f.tokens.now = clock

	return f
}

// createUser registers a user through the handler
func (f *fixture) createUser(t *testing.T, phone, password string) {
	t.Helper()
	res := f.users.Handle(context.Background(), newRequest("users", "post", nil, api.CreateUserRequest{
		FirstName:    "John",
		LastName:     "Smith",
		Phone:        phone,
		Password:     password,
		TOSAgreement: true,
	}))
	require.Equal(t, http.StatusOK, res.Status)
}

// login issues a token through the handler and returns its id
func (f *fixture) login(t *testing.T, phone, password string) string {
	t.Helper()
	res := f.tokens.Handle(context.Background(), newRequest("tokens", "post", nil, api.CreateTokenRequest{
		Phone:    phone,
		Password: password,
	}))
	require.Equal(t, http.StatusOK, res.Status)
	token, ok := res.Payload.(api.Token)
	require.True(t, ok)
	return token.ID
}
