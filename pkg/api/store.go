package api

import (
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/tree"
)

// Параметры запросов GET /api/v1/events и GET /api/v1/snapshot
const (
	QueryModel = "model" // адрес модели, например /repo/notes
	QueryBegin = "begin" // первая ревизия диапазона
	QueryEnd   = "end"   // последняя ревизия диапазона, -1 без ограничения
)

// CommandRequest представляет команду или транзакцию для выполнения
type CommandRequest struct {
	Command *models.Command `json:"command"`
}

// CommandResponse содержит результат команды: новую ревизию модели,
// -1 (FAILED) или -2 (NOCHANGE)
type CommandResponse struct {
	Result int64 `json:"result"`
}

// EventsResponse содержит записи журнала модели
type EventsResponse struct {
	Model  models.Address  `json:"model"`
	Events []*models.Event `json:"events"`
}

// SnapshotResponse содержит состояние модели
type SnapshotResponse struct {
	Model *tree.Model `json:"model"`
}

// ModelsResponse содержит список моделей репозитория, доступных актору
type ModelsResponse struct {
	Repository models.ID   `json:"repository"`
	Models     []models.ID `json:"models"`
}
