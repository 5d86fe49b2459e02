package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
)

// Login выполняет вход; недостающие данные запрашиваются интерактивно
func (c *Cli) Login(ctx context.Context, actor models.ID, password string) error {
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
	}

	session, err := c.auth.Login(ctx, actor, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	c.io.Printf("Logged in as %s at %s\n", session.Actor, session.ServerURL)
	return nil
}
