package cli

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/validation"
)

// Add creates a child entity under parentArg: a model under the repository,
// an object under a model or a field under an object. An empty id is
// replaced by a random one. force adds with the FORCED precondition, which
// succeeds without a change when the entity exists.
//
// Models are created on the server at once; other entities go to the local
// replica and are sent by sync.
func (c *Cli) Add(ctx context.Context, parentArg, id string, force bool) error {
	parent, err := c.parseAddress(parentArg)
	if err != nil {
		return err
	}
	if parent.Type() == models.TypeField {
		return fmt.Errorf("%s is a field, fields have no children", shortAddress(parent))
	}

	if id == "" {
		id = uuid.NewString()
	}
	if err := validation.ValidateID(models.ID(id)); err != nil {
		return fmt.Errorf("invalid id: %w", err)
	}

	rev := models.RevisionNew
	if force {
		rev = models.RevisionForced
	}
	cmd := models.NewAddCommand(parent, rev, models.ID(id))

	if parent.Type() == models.TypeRepository {
		session, err := c.session(ctx)
		if err != nil {
			return err
		}
		result, err := c.remote.ExecuteCommand(ctx, session.Actor, cmd)
		if err != nil {
			return fmt.Errorf("failed to add model: %w", err)
		}
		if err := c.reportResult(result); err != nil {
			return err
		}
		c.io.Printf("Model %s\n", shortAddress(cmd.ChangedEntity()))
		return nil
	}

	r, err := c.replica(ctx, parent)
	if err != nil {
		return err
	}
	change, err := r.Execute(ctx, cmd, nil)
	if err != nil {
		return err
	}
	if err := c.reportChange(change); err != nil {
		return err
	}
	c.io.Printf("Added %s\n", shortAddress(cmd.ChangedEntity()))
	return nil
}
