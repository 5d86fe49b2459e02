package engine

import (
	"fmt"

	"github.com/iudanet/gophsync/internal/models"
)

// checkCommand выполняет структурную проверку команды до проверки предусловий
func checkCommand(model models.Address, cmd *models.Command) error {
	if cmd == nil {
		return fmt.Errorf("nil command: %w", ErrInvalidCommand)
	}

	if !cmd.IsTransaction() {
		if cmd.Revision == models.RevisionThisTransaction {
			return fmt.Errorf("%s outside of a transaction: %w", cmd, ErrDanglingReference)
		}
		return checkAtomic(model, cmd)
	}

	if len(cmd.Commands) == 0 {
		return ErrEmptyTransaction
	}

	switch cmd.Target.Type() {
	case models.TypeModel, models.TypeObject:
	default:
		return fmt.Errorf("transaction target %s must be a model or an object: %w", cmd.Target, ErrInvalidCommand)
	}
	if cmd.Target.ModelAddress() != model {
		return fmt.Errorf("transaction target %s: %w", cmd.Target, ErrCrossModel)
	}

	// Сущности, созданные или измененные предыдущими командами транзакции
	touched := make(map[models.Address]bool, len(cmd.Commands))

	for i, sub := range cmd.Commands {
		if sub == nil || sub.IsTransaction() {
			return fmt.Errorf("command %d: nested or nil command: %w", i, ErrInvalidCommand)
		}
		if err := checkAtomic(model, sub); err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}

		changed := sub.ChangedEntity()
		if !cmd.Target.Contains(changed) {
			return fmt.Errorf("command %d: %s is outside of %s: %w", i, changed, cmd.Target, ErrInvalidCommand)
		}

		if sub.Revision == models.RevisionThisTransaction && !touched[sub.Target] {
			return fmt.Errorf("command %d: %s: %w", i, sub.Target, ErrDanglingReference)
		}

		touched[changed] = true
		if changed.Type() == models.TypeField {
			touched[changed.Parent()] = true
		}
	}

	return nil
}

// checkAtomic проверяет уровень адреса и допустимость предусловия атомарной команды
func checkAtomic(model models.Address, cmd *models.Command) error {
	if !cmd.Target.IsValid() {
		return fmt.Errorf("invalid target %s: %w", cmd.Target, ErrInvalidCommand)
	}
	if cmd.Target.Type() == models.TypeRepository {
		return fmt.Errorf("repository level command %s: %w", cmd, ErrInvalidCommand)
	}
	if cmd.Target.ModelAddress() != model {
		return fmt.Errorf("%s: %w", cmd.Target, ErrCrossModel)
	}

	allowNew := false

	switch cmd.Kind {
	case models.ChangeAdd:
		if t := cmd.Target.Type(); t != models.TypeModel && t != models.TypeObject {
			return fmt.Errorf("add below %s: %w", t, ErrInvalidCommand)
		}
		if cmd.NewID == "" {
			return fmt.Errorf("add without id: %w", ErrInvalidCommand)
		}
		allowNew = true
	case models.ChangeRemove:
		if t := cmd.Target.Type(); t != models.TypeObject && t != models.TypeField {
			return fmt.Errorf("remove of %s: %w", t, ErrInvalidCommand)
		}
	case models.ChangeValue:
		if cmd.Target.Type() != models.TypeField {
			return fmt.Errorf("value change of %s: %w", cmd.Target.Type(), ErrInvalidCommand)
		}
		allowNew = true
	default:
		return fmt.Errorf("unsupported command kind %s: %w", cmd.Kind, ErrInvalidCommand)
	}

	return checkPrecondition(cmd.Revision, allowNew)
}

func checkPrecondition(rev int64, allowNew bool) error {
	switch {
	case models.IsSafeRevision(rev),
		rev == models.RevisionForced,
		rev == models.RevisionThisTransaction,
		rev == models.RevisionNew && allowNew:
		return nil
	default:
		return fmt.Errorf("precondition %s: %w", models.RevisionString(rev), ErrInvalidCommand)
	}
}
