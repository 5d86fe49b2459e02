package validation

import (
	"fmt"
	"regexp"

	"github.com/iudanet/gophsync/internal/models"
)

// IDPattern определяет допустимый формат идентификатора сущности
// Латинские буквы, цифры, '_', '-', '.'; первый символ не может быть '-' (зарезервирован в адресах)
// Длина: 1-64 символа
var IDPattern = regexp.MustCompile(`^[a-zA-Z0-9_.][a-zA-Z0-9_.\-]{0,63}$`)

// ActorPattern определяет допустимый формат идентификатора актора
// Только латинские буквы (a-z, A-Z), цифры (0-9), нижнее подчеркивание (_)
// Длина: 3-32 символа
var ActorPattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

const (
	// MaxIDLen максимальная длина идентификатора сущности
	MaxIDLen = 64
	// MinActorLen минимальная длина идентификатора актора
	MinActorLen = 3
	// MaxActorLen максимальная длина идентификатора актора
	MaxActorLen = 32
	// MinCredentialLen минимальная длина пароля актора
	MinCredentialLen = 12
)

// ValidateID проверяет идентификатор репозитория, модели, объекта или поля
func ValidateID(id models.ID) error {
	if id == "" {
		return fmt.Errorf("id cannot be empty")
	}

	if len(id) > MaxIDLen {
		return fmt.Errorf("id must not exceed %d characters", MaxIDLen)
	}

	if !IDPattern.MatchString(string(id)) {
		return fmt.Errorf("id %q can only contain letters, numbers, '_', '.', '-' and must not start with '-'", id)
	}

	return nil
}

// ValidateAddress checks that every component of addr is a valid id and that
// the address points to the expected level. TypeInvalid accepts any level.
func ValidateAddress(addr models.Address, want models.AddressedType) error {
	if !addr.IsValid() {
		return fmt.Errorf("invalid address %s", addr)
	}

	if want != models.TypeInvalid && addr.Type() != want {
		return fmt.Errorf("address %s must point to a %s, got %s", addr, want, addr.Type())
	}

	for _, id := range []models.ID{addr.Repository, addr.Model, addr.Object, addr.Field} {
		if id == "" {
			break
		}
		if err := ValidateID(id); err != nil {
			return fmt.Errorf("address %s: %w", addr, err)
		}
	}

	return nil
}

// ValidateActor проверяет, что идентификатор актора соответствует требованиям
func ValidateActor(actor models.ID) error {
	if actor == "" {
		return fmt.Errorf("actor cannot be empty")
	}

	if len(actor) < MinActorLen {
		return fmt.Errorf("actor must be at least %d characters long", MinActorLen)
	}

	if len(actor) > MaxActorLen {
		return fmt.Errorf("actor must not exceed %d characters", MaxActorLen)
	}

	if !ActorPattern.MatchString(string(actor)) {
		return fmt.Errorf("actor can only contain letters (a-z, A-Z), numbers (0-9), and underscores (_)")
	}

	return nil
}

// ValidateCredential проверяет минимальные требования к паролю актора
func ValidateCredential(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	if len(password) < MinCredentialLen {
		return fmt.Errorf("password must be at least %d characters long", MinCredentialLen)
	}

	return nil
}
