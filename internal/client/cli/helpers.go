package cli

import (
	"fmt"
	"strings"

	"github.com/iudanet/gophsync/internal/client/sync"
	"github.com/iudanet/gophsync/internal/models"
)

// shortAddress печатает адрес без отсутствующих компонент
func shortAddress(addr models.Address) string {
	parts := strings.Split(addr.String(), "/")
	for len(parts) > 2 && parts[len(parts)-1] == "-" {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "/")
}

func formatValue(v *models.Value) string {
	switch {
	case v == nil:
		return "<empty>"
	case v.Type() == models.ValueTypeString:
		return fmt.Sprintf("%q", v.String())
	default:
		return fmt.Sprintf("<%s, %d bytes>", v.Type(), len(v.Bytes()))
	}
}

// reportChange печатает итог локальной команды
func (c *Cli) reportChange(change *sync.LocalChange) error {
	rev, resolved := change.Result()
	if !resolved {
		c.io.Printf("Applied locally at revision %d, run 'sync' to send it\n", change.LocalRevision())
		return nil
	}
	return c.reportResult(rev)
}

// reportResult печатает результат команды, выполненной сервером
func (c *Cli) reportResult(rev int64) error {
	switch {
	case rev >= 0:
		c.io.Printf("Done, model revision %d\n", rev)
		return nil
	case rev == models.RevisionNoChange:
		c.io.Println("Nothing changed")
		return nil
	default:
		return fmt.Errorf("%w: precondition failed", ErrRejected)
	}
}
