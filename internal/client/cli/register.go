package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
)

// Register создает аккаунт и выполняет вход.
// Пустой пароль запрашивается интерактивно с подтверждением.
func (c *Cli) Register(ctx context.Context, actor models.ID, password string) error {
	if actor == "" {
		input, err := c.io.ReadInput("Actor: ")
		if err != nil {
			return fmt.Errorf("failed to read actor: %w", err)
		}
		actor = models.ID(input)
	}

	if password == "" {
		var err error
		password, err = c.io.ReadPassword("Password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		confirm, err := c.io.ReadPassword("Confirm password: ")
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		if password != confirm {
			return fmt.Errorf("passwords do not match")
		}
	}

	session, err := c.auth.Register(ctx, actor, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}

	c.io.Printf("Registered and logged in as %s\n", session.Actor)
	return nil
}
