package command

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/iudanet/phoneauth/internal/client/api"
	"github.com/iudanet/phoneauth/internal/client/storage"
	"github.com/iudanet/phoneauth/internal/validation"
	pkgapi "github.com/iudanet/phoneauth/pkg/api"
)

// LoginCommand returns the login command.
func LoginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "Get a token and save it locally",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "phone", Usage: "Phone number (11 characters)"},
			passwordFlag(),
		},
		Action: sessionLogin,
	}
}

// LogoutCommand returns the logout command.
func LogoutCommand() *cli.Command {
	return &cli.Command{
		Name:   "logout",
		Usage:  "Revoke the saved token",
		Action: sessionLogout,
	}
}

// ExtendCommand returns the extend command.
func ExtendCommand() *cli.Command {
	return &cli.Command{
		Name:   "extend",
		Usage:  "Extend the saved token by one TTL",
		Action: sessionExtend,
	}
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show server and session status",
		Action: sessionStatus,
	}
}

func sessionLogin(c *cli.Context) error {
	env := GetEnv(c)

	phone, err := valueOrPrompt(c, env, "phone", "Phone: ")
	if err != nil {
		return err
	}
	if err := validation.ValidatePhone(phone); err != nil {
		return fmt.Errorf("invalid phone: %w", err)
	}
	password, err := passwordOrPrompt(c, env)
	if err != nil {
		return err
	}

	token, err := env.Client.CreateToken(c.Context, pkgapi.CreateTokenRequest{
		Phone:    phone,
		Password: password,
	})
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	err = env.Store.SaveSession(c.Context, &storage.Session{
		Phone:   token.Phone,
		TokenID: token.ID,
		Expires: token.Expires,
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	env.IO.Printf("Logged in as %s, token expires at %s\n", token.Phone, formatExpiry(token.Expires))
	return nil
}

func sessionLogout(c *cli.Context) error {
	env := GetEnv(c)

	session, err := currentSession(c, env)
	if err != nil {
		return err
	}

	// Токен мог уже истечь и быть удален на сервере
	if err := env.Client.DeleteToken(c.Context, session.TokenID); err != nil && !api.IsStatus(err, http.StatusBadRequest) {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	if err := env.Store.DeleteSession(c.Context); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	env.IO.Println("Logged out")
	return nil
}

func sessionExtend(c *cli.Context) error {
	env := GetEnv(c)

	session, err := currentSession(c, env)
	if err != nil {
		return err
	}

	token, err := env.Client.ExtendToken(c.Context, session.TokenID)
	if err != nil {
		return fmt.Errorf("extend failed: %w", err)
	}

	session.Expires = token.Expires
	if err := env.Store.SaveSession(c.Context, session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	env.IO.Printf("Token extended until %s\n", formatExpiry(token.Expires))
	return nil
}

func sessionStatus(c *cli.Context) error {
	env := GetEnv(c)

	health, err := env.Client.Ping(c.Context)
	if err != nil {
		env.IO.Printf("Server:  unreachable (%v)\n", err)
	} else {
		env.IO.Printf("Server:  %s %s\n", health.Status, health.Version)
	}

	session, err := currentSession(c, env)
	if err != nil {
		if errors.Is(err, ErrNotLoggedIn) {
			env.IO.Println("Session: not logged in")
			return nil
		}
		return err
	}

	state := "active"
	if !session.Valid(env.Now()) {
		state = "expired"
	}
	env.IO.Printf("Session: %s (%s), expires at %s\n", session.Phone, state, formatExpiry(session.Expires))
	return nil
}
