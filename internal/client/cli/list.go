package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
)

// Models prints the models of the repository the actor may read
func (c *Cli) Models(ctx context.Context) error {
	if _, err := c.session(ctx); err != nil {
		return err
	}

	resp, err := c.remote.Models(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models: %w", err)
	}

	if len(resp.Models) == 0 {
		c.io.Printf("Repository %s has no models\n", resp.Repository)
		return nil
	}

	c.io.Printf("Repository %s:\n", resp.Repository)
	for _, id := range resp.Models {
		c.io.Printf("  %s\n", shortAddress(models.NewModelAddress(resp.Repository, id)))
	}
	return nil
}
