package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
)

// Remove removes a model, an object or a field.
//
// Without force the command expects the revision the replica has, so it is
// rejected if somebody changed the entity meanwhile. Models are removed on
// the server at once and their replica is dropped; a model with unsynced
// local changes is not removed.
func (c *Cli) Remove(ctx context.Context, arg string, force bool) error {
	addr, err := c.parseAddress(arg)
	if err != nil {
		return err
	}
	if addr.Type() == models.TypeRepository {
		return fmt.Errorf("repositories cannot be removed")
	}
	if addr.Type() == models.TypeModel {
		return c.removeModel(ctx, addr, force)
	}

	r, err := c.replica(ctx, addr)
	if err != nil {
		return err
	}

	rev := models.RevisionForced
	if !force {
		cur, _, ok, err := r.Lookup(ctx, addr)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: %w", shortAddress(addr), ErrNotFound)
		}
		rev = cur
	}

	change, err := r.Execute(ctx, models.NewRemoveCommand(addr, rev), nil)
	if err != nil {
		return err
	}
	return c.reportChange(change)
}

func (c *Cli) removeModel(ctx context.Context, addr models.Address, force bool) error {
	session, err := c.session(ctx)
	if err != nil {
		return err
	}

	rev := models.RevisionForced
	if !force {
		r, err := c.replica(ctx, addr)
		if err != nil {
			return err
		}
		st, err := r.Status(ctx)
		if err != nil {
			return err
		}
		if st.Pending > 0 {
			return fmt.Errorf("%s has %d unsynced changes, run 'sync' first", shortAddress(addr), st.Pending)
		}
		rev = st.Revision
	}

	result, err := c.remote.ExecuteCommand(ctx, session.Actor, models.NewRemoveCommand(addr, rev))
	if err != nil {
		return fmt.Errorf("failed to remove model: %w", err)
	}
	if err := c.reportResult(result); err != nil {
		return err
	}

	if err := c.sync.Forget(ctx, addr); err != nil {
		return fmt.Errorf("failed to drop replica: %w", err)
	}
	return nil
}
