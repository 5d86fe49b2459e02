package models

import "strconv"

// Результаты выполнения команды. Неотрицательное значение означает
// новую ревизию модели после успешного коммита.
const (
	// RevisionFailed команда отклонена (не выполнено предусловие)
	RevisionFailed int64 = -1
	// RevisionNoChange команда ничего не изменила
	RevisionNoChange int64 = -2
)

// Предусловия команд
const (
	// RevisionForced применить команду независимо от текущей ревизии
	RevisionForced int64 = -3
	// RevisionNew сущность (для add) не должна существовать, поле (для value) не должно иметь значения
	RevisionNew int64 = -4
	// RevisionThisTransaction сущность должна быть создана или изменена ранее в той же транзакции
	RevisionThisTransaction int64 = -5
)

// RevisionNotSet используется в событиях для отсутствующей сущности
// (например, старая ревизия объекта при его добавлении)
const RevisionNotSet int64 = -6

// IsSafeRevision reports whether a precondition is an exact revision check
func IsSafeRevision(rev int64) bool {
	return rev >= 0
}

// RevisionString formats revisions and sentinels for logs
func RevisionString(rev int64) string {
	switch rev {
	case RevisionFailed:
		return "FAILED"
	case RevisionNoChange:
		return "NOCHANGE"
	case RevisionForced:
		return "FORCED"
	case RevisionNew:
		return "NEW"
	case RevisionThisTransaction:
		return "THIS_TRANSACTION"
	case RevisionNotSet:
		return "NOT_SET"
	default:
		return strconv.FormatInt(rev, 10)
	}
}
