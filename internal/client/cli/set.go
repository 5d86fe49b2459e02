package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
)

// Set changes the value of a field. A missing field, and its object, are
// created in the same transaction.
func (c *Cli) Set(ctx context.Context, arg, value string, force bool) error {
	addr, err := c.parseAddress(arg)
	if err != nil {
		return err
	}
	if addr.Type() != models.TypeField {
		return fmt.Errorf("%s is not a field address", shortAddress(addr))
	}

	r, err := c.replica(ctx, addr)
	if err != nil {
		return err
	}

	v := models.StringValue(value)
	rev, _, ok, err := r.Lookup(ctx, addr)
	if err != nil {
		return err
	}

	var cmd *models.Command
	if ok {
		if force {
			rev = models.RevisionForced
		}
		cmd = models.NewChangeValueCommand(addr, rev, v)
	} else {
		obj := addr.ObjectAddress()
		_, _, exists, err := r.Lookup(ctx, obj)
		if err != nil {
			return err
		}

		var cmds []*models.Command
		fieldRev := models.RevisionNew
		if !exists {
			cmds = append(cmds, models.NewAddCommand(addr.ModelAddress(), models.RevisionNew, addr.Object))
			fieldRev = models.RevisionThisTransaction
		}
		cmds = append(cmds,
			models.NewAddCommand(obj, fieldRev, addr.Field),
			models.NewChangeValueCommand(addr, models.RevisionThisTransaction, v))
		cmd = models.NewTransaction(addr.ModelAddress(), cmds...)
	}

	change, err := r.Execute(ctx, cmd, nil)
	if err != nil {
		return err
	}
	return c.reportChange(change)
}
