package store

import (
	"fmt"
	"strings"

	"github.com/iudanet/gophsync/internal/models"
)

// Gate decides whether an actor may read or write an addressed entity.
// The store consults it; the engine never does.
type Gate interface {
	CanRead(actor models.ID, addr models.Address) bool
	CanWrite(actor models.ID, addr models.Address) bool
}

// AllowAll grants every access
type AllowAll struct{}

// CanRead always returns true
func (AllowAll) CanRead(models.ID, models.Address) bool { return true }

// CanWrite always returns true
func (AllowAll) CanWrite(models.ID, models.Address) bool { return true }

// AnyActor в правиле доступа означает любого актора
const AnyActor models.ID = "*"

// Rule grants access to everything below Prefix
type Rule struct {
	Actor  models.ID
	Prefix models.Address
	Write  bool
}

// StaticGate evaluates a fixed list of rules. Write access implies read
// access. Read access to an address also makes its ancestors readable, so an
// actor can reach the entities it was granted.
type StaticGate struct {
	rules []Rule
}

// NewStaticGate creates a gate from rules
func NewStaticGate(rules ...Rule) *StaticGate {
	return &StaticGate{rules: rules}
}

// ParseRules parses rules of the form "actor=r:/repo/model" or "actor=rw:/repo"
func ParseRules(specs []string) ([]Rule, error) {
	rules := make([]Rule, 0, len(specs))
	for _, spec := range specs {
		actor, rest, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("rule %q: missing '='", spec)
		}
		mode, path, ok := strings.Cut(rest, ":")
		if !ok {
			return nil, fmt.Errorf("rule %q: missing access mode", spec)
		}
		prefix, err := models.ParseAddress(path)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", spec, err)
		}

		var write bool
		switch mode {
		case "r":
		case "rw":
			write = true
		default:
			return nil, fmt.Errorf("rule %q: unknown mode %q", spec, mode)
		}

		rules = append(rules, Rule{Actor: models.ID(actor), Prefix: prefix, Write: write})
	}
	return rules, nil
}

// CanRead reports whether actor may know about addr
func (g *StaticGate) CanRead(actor models.ID, addr models.Address) bool {
	for _, r := range g.rules {
		if !r.matches(actor) {
			continue
		}
		if r.Prefix.Contains(addr) || addr.Contains(r.Prefix) {
			return true
		}
	}
	return false
}

// CanWrite reports whether actor may change addr
func (g *StaticGate) CanWrite(actor models.ID, addr models.Address) bool {
	for _, r := range g.rules {
		if r.Write && r.matches(actor) && r.Prefix.Contains(addr) {
			return true
		}
	}
	return false
}

func (r Rule) matches(actor models.ID) bool {
	return r.Actor == AnyActor || r.Actor == actor
}
