// Package command provides the phoneauth client command tree.
//
// It uses urfave/cli/v2 for command parsing. Every command talks to the
// server through the typed API client and keeps the current token in the
// local BoltDB session store.
package command

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/iudanet/phoneauth/internal/client/api"
	"github.com/iudanet/phoneauth/internal/client/iocli"
	"github.com/iudanet/phoneauth/internal/client/storage"
	"github.com/iudanet/phoneauth/internal/client/storage/boltdb"
)

// Build information, set via ldflags.
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// Default flag values.
const (
	DefaultServer = "http://localhost:3000"
	DefaultDB     = "phoneauth-client.db"
)

const (
	metaEnv   = "env"
	metaStore = "store"
)

// ErrNotLoggedIn is returned by commands that need a saved session.
var ErrNotLoggedIn = errors.New("not logged in, run 'phoneauth login' first")

// Env holds what every command action needs.
type Env struct {
	Client *api.Client
	Store  storage.SessionStorage
	IO     iocli.IO
	Now    func() time.Time
}

// App creates the CLI application on the process terminal.
func App() *cli.App {
	return NewApp(iocli.NewStdio())
}

// NewApp creates the CLI application talking to term.
func NewApp(term iocli.IO) *cli.App {
	return &cli.App{
		Name:    "phoneauth",
		Usage:   "PhoneAuth command-line client",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		Flags:   globalFlags(),
		Writer:  term,
		Commands: []*cli.Command{
			SignupCommand(),
			LoginCommand(),
			LogoutCommand(),
			WhoamiCommand(),
			UpdateCommand(),
			DeleteCommand(),
			ExtendCommand(),
			StatusCommand(),
		},
		Before: func(c *cli.Context) error {
			// Открываем BoltDB storage
			store, err := boltdb.New(c.Context, c.String("db"))
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			c.App.Metadata[metaStore] = store
			c.App.Metadata[metaEnv] = &Env{
				Client: api.NewClient(c.String("server")),
				Store:  store,
				IO:     term,
				Now:    time.Now,
			}
			return nil
		},
		After: func(c *cli.Context) error {
			if store, ok := c.App.Metadata[metaStore].(*boltdb.Storage); ok {
				return store.Close()
			}
			return nil
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "PhoneAuth server URL",
			EnvVars: []string{"PHONEAUTH_SERVER"},
			Value:   DefaultServer,
		},
		&cli.StringFlag{
			Name:    "db",
			Usage:   "Path to local session database",
			EnvVars: []string{"PHONEAUTH_CLIENT_DB"},
			Value:   DefaultDB,
		},
	}
}

// passwordFlag is shared by commands that send a password.
func passwordFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "password",
		Aliases: []string{"p"},
		Usage:   "Password (prompted when empty)",
		EnvVars: []string{"PHONEAUTH_PASSWORD"},
	}
}

// GetEnv retrieves the command environment from context.
func GetEnv(c *cli.Context) *Env {
	if env, ok := c.App.Metadata[metaEnv].(*Env); ok {
		return env
	}
	return nil
}

// currentSession возвращает сохраненную сессию или ErrNotLoggedIn
func currentSession(c *cli.Context, env *Env) (*storage.Session, error) {
	session, err := env.Store.GetSession(c.Context)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrNotLoggedIn
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return session, nil
}

// valueOrPrompt берет значение флага, а если его нет, спрашивает у пользователя
func valueOrPrompt(c *cli.Context, env *Env, flag, prompt string) (string, error) {
	if v := strings.TrimSpace(c.String(flag)); v != "" {
		return v, nil
	}
	v, err := env.IO.ReadInput(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", flag, err)
	}
	return v, nil
}

// passwordOrPrompt берет пароль из флага/переменной окружения или запрашивает без эха
func passwordOrPrompt(c *cli.Context, env *Env) (string, error) {
	if v := strings.TrimSpace(c.String("password")); v != "" {
		return v, nil
	}
	v, err := env.IO.ReadPassword("Password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if v == "" {
		return "", errors.New("password cannot be empty")
	}
	return v, nil
}

func formatExpiry(ms int64) string {
	return time.UnixMilli(ms).Format(time.RFC3339)
}
