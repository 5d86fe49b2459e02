package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/gophsync/internal/client/storage"
)

// Logout завершает сессию. Локальные реплики остаются.
func (c *Cli) Logout(ctx context.Context) error {
	err := c.auth.Logout(ctx)
	if errors.Is(err, storage.ErrSessionNotFound) {
		c.io.Println("Not logged in")
		return nil
	}
	if err != nil {
		return fmt.Errorf("logout failed: %w", err)
	}
	c.io.Println("Logged out")
	return nil
}
