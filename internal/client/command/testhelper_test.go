package command

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iudanet/phoneauth/internal/client/iocli"
	"github.com/iudanet/phoneauth/internal/client/storage"
	"github.com/iudanet/phoneauth/internal/client/storage/boltdb"
	"github.com/iudanet/phoneauth/internal/crypto"
	"github.com/iudanet/phoneauth/internal/server/handlers"
	"github.com/iudanet/phoneauth/internal/server/router"
	serverstorage "github.com/iudanet/phoneauth/internal/server/storage"
	"github.com/iudanet/phoneauth/internal/server/storage/memory"
)

const (
	testPhone    = "12345678901"
	testPassword = "s3cret"
)

// testEnv поднимает настоящий сервер на memory хранилище и отдельную клиентскую БД
type testEnv struct {
	server  *httptest.Server
	records *serverstorage.Records
	dbPath  string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	records := serverstorage.NewRecords(memory.New(), time.Second)
	hasher := crypto.NewHasher("thisIsASecret")

	routes := handlers.Routes(
		handlers.NewHealthHandler("test"),
		handlers.NewUsersHandler(logger, records, records, hasher, handlers.NewAuthenticator(logger, records, true)),
		handlers.NewTokensHandler(logger, records, records, hasher, time.Hour),
	)
	server := httptest.NewServer(router.New(logger, routes))
	t.Cleanup(server.Close)

	return &testEnv{
		server:  server,
		records: records,
		dbPath:  filepath.Join(t.TempDir(), "client.db"),
	}
}

// run выполняет команду клиента; input подается на stdin построчно
func (e *testEnv) run(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	app := NewApp(iocli.NewStream(strings.NewReader(input), &out))
	full := append([]string{"phoneauth", "--server", e.server.URL, "--db", e.dbPath}, args...)
	err := app.RunContext(context.Background(), full)
	return out.String(), err
}

func (e *testEnv) signupAndLogin(t *testing.T) {
	t.Helper()

	_, err := e.run(t, "", "signup",
		"--first-name", "John", "--last-name", "Smith",
		"--phone", testPhone, "--password", testPassword, "--tos")
	require.NoError(t, err)

	_, err = e.run(t, "", "login", "--phone", testPhone, "--password", testPassword)
	require.NoError(t, err)
}

// session читает сохраненную сессию напрямую из клиентской БД
func (e *testEnv) session(t *testing.T) (*storage.Session, error) {
	t.Helper()

	store, err := boltdb.New(context.Background(), e.dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.Close())
	}()

	return store.GetSession(context.Background())
}
