package engine

import "errors"

// Структурные ошибки команд: команда отклоняется до проверки предусловий
var (
	// ErrInvalidCommand команда некорректна (неверный уровень адреса, пустой id, вложенная транзакция)
	ErrInvalidCommand = errors.New("invalid command")
	// ErrEmptyTransaction транзакция не содержит команд
	ErrEmptyTransaction = errors.New("empty transaction")
	// ErrDanglingReference ссылка THIS_TRANSACTION на сущность, не затронутую ранее в транзакции
	ErrDanglingReference = errors.New("dangling this-transaction reference")
	// ErrCrossModel команда затрагивает другую модель
	ErrCrossModel = errors.New("command targets another model")
)

// Ошибки применения событий
var (
	// ErrRevisionMismatch ревизия модели не совпадает с ожидаемой событием
	ErrRevisionMismatch = errors.New("model revision does not match event")
	// ErrEventConflict событие не может быть применено к текущему состоянию дерева
	ErrEventConflict = errors.New("event conflicts with tree state")
	// ErrInvalidEvent событие некорректно
	ErrInvalidEvent = errors.New("invalid event")
)

// ErrPlanState возвращается при повторном коммите плана
var ErrPlanState = errors.New("plan is not ready for commit")
