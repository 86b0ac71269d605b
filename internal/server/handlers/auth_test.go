package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/phoneauth/internal/models"
)

func TestAuthenticator_Verify(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	valid := models.NewToken("aaaaaaaaaaaaaaaaaaaa", testPhone, f.now, time.Hour)
	expiresNow := models.NewToken("bbbbbbbbbbbbbbbbbbbb", testPhone, f.now, 0)
	expired := models.NewToken("cccccccccccccccccccc", testPhone, f.now, -time.Minute)
	for _, token := range []*models.Token{valid, expiresNow, expired} {
		require.NoError(t, f.tokStore.CreateToken(ctx, token))
	}

	tests := []struct {
		name  string
		id    string
		phone string
		want  bool
	}{
		{name: "valid token", id: valid.ID, phone: testPhone, want: true},
		{name: "other phone", id: valid.ID, phone: "10987654321", want: false},
		{name: "expires exactly now", id: expiresNow.ID, phone: testPhone, want: false},
		{name: "expired", id: expired.ID, phone: testPhone, want: false},
		{name: "absent", id: "dddddddddddddddddddd", phone: testPhone, want: false},
		{name: "malformed id", id: "AAAA", phone: testPhone, want: false},
		{name: "empty phone", id: valid.ID, phone: "", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.auth.Verify(ctx, tt.id, tt.phone))
		})
	}
}

func TestAuthenticator_Verify_RereadsStorage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, true)

	token := models.NewToken("aaaaaaaaaaaaaaaaaaaa", testPhone, f.now, time.Hour)
	require.NoError(t, f.tokStore.CreateToken(ctx, token))
	require.True(t, f.auth.Verify(ctx, token.ID, testPhone))

	f.now = f.now.Add(time.Hour)
	assert.False(t, f.auth.Verify(ctx, token.ID, testPhone))

	f.now = f.now.Add(-time.Hour)
	require.NoError(t, f.tokStore.DeleteToken(ctx, token.ID))
	assert.False(t, f.auth.Verify(ctx, token.ID, testPhone))
}

func TestAuthenticator_Verify_StorageError(t *testing.T) {
	f := newFixture(t, true)
	f.tokStore.getError = errors.New("disk on fire")

	assert.False(t, f.auth.Verify(context.Background(), "aaaaaaaaaaaaaaaaaaaa", testPhone))
}

func TestAuthenticator_Authorize_NotRequired(t *testing.T) {
	f := newFixture(t, false)

	assert.True(t, f.auth.Authorize(context.Background(), newRequest("users", "get", nil, nil), testPhone))
}

func TestTokenFromHeaders(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "token header", headers: map[string]string{"token": "abc"}, want: "abc"},
		{name: "bearer", headers: map[string]string{"Authorization": "Bearer abc"}, want: "abc"},
		{name: "token header wins", headers: map[string]string{"token": "abc", "Authorization": "Bearer xyz"}, want: "abc"},
		{name: "basic auth ignored", headers: map[string]string{"Authorization": "Basic abc"}, want: ""},
		{name: "none", headers: nil, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			for k, v := range tt.headers {
				h.Set(k, v)
			}
			assert.Equal(t, tt.want, TokenFromHeaders(h))
		})
	}
}

func TestRoutes(t *testing.T) {
	f := newFixture(t, true)
	routes := Routes(NewHealthHandler("dev"), f.users, f.tokens)

	assert.Len(t, routes, 3)
	for _, name := range []string{RoutePing, RouteUsers, RouteTokens} {
		assert.Contains(t, routes, name)
	}
}
