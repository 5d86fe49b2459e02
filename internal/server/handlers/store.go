package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iudanet/gophsync/internal/changelog"
	"github.com/iudanet/gophsync/internal/engine"
	"github.com/iudanet/gophsync/internal/models"
	"github.com/iudanet/gophsync/internal/store"
	"github.com/iudanet/gophsync/internal/tree"
	"github.com/iudanet/gophsync/pkg/api"
)

// StoreService is the store as exposed over HTTP
type StoreService interface {
	ExecuteCommand(ctx context.Context, actor models.ID, cmd *models.Command) (int64, error)
	GetEvents(ctx context.Context, actor models.ID, model models.Address, begin, end int64) ([]*models.Event, error)
	GetModelSnapshot(ctx context.Context, actor models.ID, model models.Address) (*tree.Model, bool, error)
	ModelIDs(ctx context.Context, actor models.ID) ([]models.ID, error)
	RepositoryID() models.ID
}

var _ StoreService = (*store.Service)(nil)

// StoreHandler handles command execution and log/snapshot reads
type StoreHandler struct {
	logger  *slog.Logger
	service StoreService
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(logger *slog.Logger, service StoreService) *StoreHandler {
	return &StoreHandler{
		logger:  logger,
		service: service,
	}
}

// ExecuteCommand обрабатывает POST /api/v1/commands
// Структурно некорректная команда дает 400, невыполненное предусловие -
// 200 с результатом -1
func (h *StoreHandler) ExecuteCommand(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := GetActor(ctx)
	if !ok {
		h.logger.Error("Actor not found in context")
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var req api.CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("Failed to decode command", "error", err)
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Command == nil {
		sendError(h.logger, w, "command is required", http.StatusBadRequest)
		return
	}

	result, err := h.service.ExecuteCommand(ctx, actor, req.Command)
	if err != nil {
		if isClientError(err) {
			h.logger.Warn("Rejected command", "actor", actor, "error", err)
			sendError(h.logger, w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("Failed to execute command", "actor", actor, "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.CommandResponse{Result: result}, http.StatusOK)
}

// isClientError сообщает, что ошибка вызвана содержимым команды
func isClientError(err error) bool {
	return errors.Is(err, engine.ErrInvalidCommand) ||
		errors.Is(err, engine.ErrEmptyTransaction) ||
		errors.Is(err, engine.ErrDanglingReference) ||
		errors.Is(err, engine.ErrCrossModel) ||
		errors.Is(err, store.ErrWrongRepository)
}

// Events обрабатывает GET /api/v1/events?model=/repo/model&begin=0&end=-1
func (h *StoreHandler) Events(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := GetActor(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	model, ok := h.modelParam(w, r)
	if !ok {
		return
	}

	begin, err := int64Param(r, api.QueryBegin, 0)
	if err != nil {
		sendError(h.logger, w, "invalid begin parameter", http.StatusBadRequest)
		return
	}
	end, err := int64Param(r, api.QueryEnd, changelog.Unbounded)
	if err != nil {
		sendError(h.logger, w, "invalid end parameter", http.StatusBadRequest)
		return
	}

	entries, err := h.service.GetEvents(ctx, actor, model, begin, end)
	if err != nil {
		if errors.Is(err, store.ErrModelNotFound) {
			sendError(h.logger, w, "model not found", http.StatusNotFound)
			return
		}
		h.logger.Error("Failed to get events", "model", model.String(), "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []*models.Event{}
	}

	h.logger.Debug("Events requested",
		"actor", actor,
		"model", model.String(),
		"begin", begin,
		"count", len(entries))

	sendJSON(h.logger, w, api.EventsResponse{Model: model, Events: entries}, http.StatusOK)
}

// Snapshot обрабатывает GET /api/v1/snapshot?model=/repo/model
func (h *StoreHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := GetActor(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	model, ok := h.modelParam(w, r)
	if !ok {
		return
	}

	m, found, err := h.service.GetModelSnapshot(ctx, actor, model)
	if err != nil {
		h.logger.Error("Failed to get snapshot", "model", model.String(), "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !found {
		sendError(h.logger, w, "model not found", http.StatusNotFound)
		return
	}

	sendJSON(h.logger, w, api.SnapshotResponse{Model: m}, http.StatusOK)
}

// Models обрабатывает GET /api/v1/models
func (h *StoreHandler) Models(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	actor, ok := GetActor(ctx)
	if !ok {
		sendError(h.logger, w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ids, err := h.service.ModelIDs(ctx, actor)
	if err != nil {
		h.logger.Error("Failed to list models", "error", err)
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	sendJSON(h.logger, w, api.ModelsResponse{
		Repository: h.service.RepositoryID(),
		Models:     ids,
	}, http.StatusOK)
}

func (h *StoreHandler) modelParam(w http.ResponseWriter, r *http.Request) (models.Address, bool) {
	raw := r.URL.Query().Get(api.QueryModel)
	model, err := models.ParseAddress(raw)
	if err != nil || model.Type() != models.TypeModel {
		h.logger.Warn("Invalid model parameter", "model", raw)
		sendError(h.logger, w, "invalid model parameter", http.StatusBadRequest)
		return models.Address{}, false
	}
	return model, true
}

func int64Param(r *http.Request, name string, def int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.ParseInt(raw, 10, 64)
}
