package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/gophsync/internal/client/sync"
)

// Sync synchronizes one replica, or every local replica when arg is empty
func (c *Cli) Sync(ctx context.Context, arg string) error {
	if _, err := c.session(ctx); err != nil {
		return err
	}

	if arg == "" {
		reports, err := c.sync.SyncAll(ctx)
		for _, report := range reports {
			c.printReport(report)
		}
		if len(reports) == 0 && err == nil {
			c.io.Println("No local replicas, use 'get' to open a model")
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		return nil
	}

	addr, err := c.parseAddress(arg)
	if err != nil {
		return err
	}
	r, err := c.replica(ctx, addr)
	if err != nil {
		return err
	}

	report, err := c.sync.Sync(ctx, r)
	if report != nil {
		c.printReport(report)
	}
	if errors.Is(err, sync.ErrModelRemoved) {
		c.io.Printf("%s was removed from the server, local replica dropped\n", shortAddress(r.Address()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}
	return nil
}

// Forget drops the local replica of a model with its unsynced changes
func (c *Cli) Forget(ctx context.Context, arg string) error {
	addr, err := c.parseAddress(arg)
	if err != nil {
		return err
	}
	if err := c.sync.Forget(ctx, addr.ModelAddress()); err != nil {
		return err
	}
	c.io.Printf("Replica of %s removed\n", shortAddress(addr.ModelAddress()))
	return nil
}

func (c *Cli) printReport(r *sync.Report) {
	c.io.Printf("%s: revision %d, fetched %d, confirmed %d, failed %d (conflicts %d)\n",
		shortAddress(r.Model), r.Revision, r.Fetched, r.Confirmed, r.Failed, r.Conflicts)
	if r.Reloaded {
		c.io.Println("  replica reloaded from server snapshot")
	}
}
