package command

import (
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/iudanet/phoneauth/internal/client/storage"
	"github.com/iudanet/phoneauth/internal/validation"
	"github.com/iudanet/phoneauth/pkg/api"
)

// SignupCommand returns the signup command.
func SignupCommand() *cli.Command {
	return &cli.Command{
		Name:    "signup",
		Aliases: []string{"register"},
		Usage:   "Create a new user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "first-name", Usage: "First name"},
			&cli.StringFlag{Name: "last-name", Usage: "Last name"},
			&cli.StringFlag{Name: "phone", Usage: "Phone number (11 characters)"},
			passwordFlag(),
			&cli.BoolFlag{Name: "tos", Usage: "Agree to the terms of service"},
		},
		Action: userSignup,
	}
}

// WhoamiCommand returns the whoami command.
func WhoamiCommand() *cli.Command {
	return &cli.Command{
		Name:   "whoami",
		Usage:  "Show the logged in user",
		Action: userWhoami,
	}
}

// UpdateCommand returns the update command.
func UpdateCommand() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Update the logged in user",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "first-name", Usage: "New first name"},
			&cli.StringFlag{Name: "last-name", Usage: "New last name"},
			&cli.StringFlag{Name: "new-password", Usage: "New password"},
		},
		Action: userUpdate,
	}
}

// DeleteCommand returns the delete command.
func DeleteCommand() *cli.Command {
	return &cli.Command{
		Name:  "delete",
		Usage: "Delete the logged in user and its tokens",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "force",
				Aliases: []string{"f"},
				Usage:   "Skip confirmation",
			},
		},
		Action: userDelete,
	}
}

func userSignup(c *cli.Context) error {
	env := GetEnv(c)

	env.IO.Println("=== Sign up ===")

	firstName, err := valueOrPrompt(c, env, "first-name", "First name: ")
	if err != nil {
		return err
	}
	lastName, err := valueOrPrompt(c, env, "last-name", "Last name: ")
	if err != nil {
		return err
	}
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

	tos := c.Bool("tos")
	if !tos {
		answer, err := env.IO.ReadInput("Do you agree to the terms of service? [y/N]: ")
		if err != nil {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		tos = isYes(answer)
	}
	if !tos {
		return errors.New("terms of service must be accepted")
	}

	err = env.Client.CreateUser(c.Context, api.CreateUserRequest{
		FirstName:    firstName,
		LastName:     lastName,
		Phone:        phone,
		Password:     password,
		TOSAgreement: true,
	})
	if err != nil {
		return fmt.Errorf("signup failed: %w", err)
	}

	env.IO.Printf("User %s created. Run 'phoneauth login' to get a token.\n", phone)
	return nil
}

func userWhoami(c *cli.Context) error {
	env := GetEnv(c)

	session, err := currentSession(c, env)
	if err != nil {
		return err
	}

	user, err := env.Client.GetUser(c.Context, session.Phone, session.TokenID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	env.IO.Printf("Name:  %s %s\n", user.FirstName, user.LastName)
	env.IO.Printf("Phone: %s\n", user.Phone)
	env.IO.Printf("TOS:   %t\n", user.TOSAgreement)
	return nil
}

func userUpdate(c *cli.Context) error {
	env := GetEnv(c)

	session, err := currentSession(c, env)
	if err != nil {
		return err
	}

	req := api.UpdateUserRequest{
		Phone:     session.Phone,
		FirstName: strings.TrimSpace(c.String("first-name")),
		LastName:  strings.TrimSpace(c.String("last-name")),
		Password:  strings.TrimSpace(c.String("new-password")),
	}
	if req.FirstName == "" && req.LastName == "" && req.Password == "" {
		return errors.New("nothing to update: pass --first-name, --last-name or --new-password")
	}

	if err := env.Client.UpdateUser(c.Context, req, session.TokenID); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}

	env.IO.Println("User updated")
	return nil
}

func userDelete(c *cli.Context) error {
	env := GetEnv(c)

	session, err := currentSession(c, env)
	if err != nil {
		return err
	}

	if !c.Bool("force") {
		answer, err := env.IO.ReadInput(fmt.Sprintf("Delete user %s? [y/N]: ", session.Phone))
		if err != nil {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		if !isYes(answer) {
			env.IO.Println("Cancelled")
			return nil
		}
	}

	if err := env.Client.DeleteUser(c.Context, session.Phone, session.TokenID); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}

	// Сервер отзывает токены удаленного пользователя, локальная сессия больше не нужна
	if err := env.Store.DeleteSession(c.Context); err != nil && !errors.Is(err, storage.ErrSessionNotFound) {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	env.IO.Printf("User %s deleted\n", session.Phone)
	return nil
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
