package cli

import (
	"context"
	"errors"
	"fmt"
)

// Status prints the session and the state of every local replica
func (c *Cli) Status(ctx context.Context) error {
	session, err := c.session(ctx)
	switch {
	case errors.Is(err, ErrNotLoggedIn):
		c.io.Println("Not logged in")
	case err != nil:
		return err
	default:
		c.io.Printf("Logged in as %s at %s\n", session.Actor, session.ServerURL)
	}

	addrs, err := c.sync.Replicas(ctx)
	if err != nil {
		return err
	}
	if len(addrs) == 0 {
		c.io.Println("No local replicas")
		return nil
	}

	c.io.Println("Replicas:")
	for _, addr := range addrs {
		r, err := c.sync.Open(ctx, addr)
		if err != nil {
			return fmt.Errorf("failed to open replica of %s: %w", addr, err)
		}
		st, err := r.Status(ctx)
		if err != nil {
			return err
		}
		c.io.Printf("  %s  revision %d, synced %d, pending %d\n",
			shortAddress(st.Model), st.Revision, st.LastSynced, st.Pending)
	}
	return nil
}
