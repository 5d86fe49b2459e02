package cli

import (
	"context"
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
)

// Get prints a model, an object or a field of the local replica
func (c *Cli) Get(ctx context.Context, arg string) error {
	addr, err := c.parseAddress(arg)
	if err != nil {
		return err
	}
	r, err := c.replica(ctx, addr)
	if err != nil {
		return err
	}

	if addr.Type() == models.TypeField {
		rev, value, ok, err := r.Lookup(ctx, addr)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s: %w", shortAddress(addr), ErrNotFound)
		}
		c.io.Printf("%s = %s (revision %d)\n", shortAddress(addr), formatValue(value), rev)
		return nil
	}

	snapshot, err := r.Snapshot(ctx)
	if err != nil {
		return err
	}

	if addr.Type() == models.TypeModel {
		c.io.Printf("%s (revision %d)\n", shortAddress(addr), snapshot.Revision())
		for _, id := range snapshot.ObjectIDs() {
			obj, _ := snapshot.Object(id)
			c.printObject(addr.Child(id), obj, "  ")
		}
		return nil
	}

	obj, ok := snapshot.Object(addr.Object)
	if !ok {
		return fmt.Errorf("%s: %w", shortAddress(addr), ErrNotFound)
	}
	c.printObject(addr, obj, "")
	return nil
}

func (c *Cli) printObject(addr models.Address, obj *tree.Object, indent string) {
	c.io.Printf("%s%s (revision %d)\n", indent, addr.Object, obj.Revision())
	for _, id := range obj.FieldIDs() {
		f, _ := obj.Field(id)
		c.io.Printf("%s  %s = %s (revision %d)\n", indent, id, formatValue(f.Value()), f.Revision())
	}
}
