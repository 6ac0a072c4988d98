package handlers

import (
	"net/http"
	"time"

	"memorylane-backend/application/commands"
	"memorylane-backend/application/commands/bus"
	"memorylane-backend/application/queries"
	querybus "memorylane-backend/application/queries/bus"
	"memorylane-backend/pkg/auth"
	"memorylane-backend/pkg/common"
	pkgerrors "memorylane-backend/pkg/errors"
	"memorylane-backend/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const maxRequestBytes = 2 << 20 // encrypted payloads can be large

// MemoryHandler handles memory-related HTTP requests
type MemoryHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewMemoryHandler creates a new memory handler
func NewMemoryHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *MemoryHandler {
	return &MemoryHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// CreateMemoryRequest represents the request body for storing a memory
type CreateMemoryRequest struct {
	EncryptedContent     string    `json:"encrypted_content" validate:"required"`
	Latitude             int64     `json:"latitude"`
	Longitude            int64     `json:"longitude"`
	UnlockTime           time.Time `json:"unlock_time" validate:"required"`
	InheritanceAddresses []string  `json:"inheritance_addresses,omitempty" validate:"omitempty,max=32,dive,min=1"`
	IsPublic             bool      `json:"is_public"`
	MemoryType           string    `json:"memory_type,omitempty" validate:"omitempty,max=64"`
}

// CreateMemory handles POST /memories
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	var req CreateMemoryRequest
	if err := common.ParseJSONBody(r, &req, maxRequestBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid request body: "+err.Error())
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Validation error: "+err.Error())
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := &commands.CreateMemoryCommand{
		Owner:                userCtx.Identity,
		EncryptedContent:     req.EncryptedContent,
		Latitude:             req.Latitude,
		Longitude:            req.Longitude,
		UnlockTime:           utils.ToLedgerTime(req.UnlockTime),
		InheritanceAddresses: req.InheritanceAddresses,
		IsPublic:             req.IsPublic,
		MemoryType:           req.MemoryType,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Warn("Failed to store memory",
			zap.String("owner", userCtx.Identity),
			zap.Error(err),
		)
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, cmd.Result)
}

// GetMemory handles GET /memories/{memoryID}
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")
	if memoryID == "" {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Memory ID is required")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := &commands.RetrieveMemoryCommand{
		MemoryID:  memoryID,
		Requester: userCtx.Identity,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Debug("Retrieval rejected",
			zap.String("memoryID", memoryID),
			zap.String("requester", userCtx.Identity),
			zap.Error(err),
		)
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, cmd.Result)
}

// LikeMemory handles POST /memories/{memoryID}/likes
func (h *MemoryHandler) LikeMemory(w http.ResponseWriter, r *http.Request) {
	memoryID := chi.URLParam(r, "memoryID")
	if memoryID == "" {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Memory ID is required")
		return
	}

	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	cmd := &commands.LikeMemoryCommand{
		MemoryID: memoryID,
		Liker:    userCtx.Identity,
	}

	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.logger.Debug("Like rejected",
			zap.String("memoryID", memoryID),
			zap.String("liker", userCtx.Identity),
			zap.Error(err),
		)
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, cmd.Result)
}

// ListMemories handles GET /memories, the caller's own listing
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	query := queries.GetMemoriesByOwnerQuery{Owner: userCtx.Identity}

	raw, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Error("Failed to list memories",
			zap.String("owner", userCtx.Identity),
			zap.Error(err),
		)
		h.errorHandler.Handle(w, r, err)
		return
	}

	result, ok := raw.(*queries.GetMemoriesByOwnerResult)
	if !ok {
		h.errorHandler.Handle(w, r, pkgerrors.NewInternalError("unexpected query result type"))
		return
	}

	// Pagination is an HTTP concern; the ledger itself has no cursors
	params := common.ExtractPaginationParams(r)
	total := len(result.Memories)
	start, end := params.SliceBounds(total)

	page := queries.GetMemoriesByOwnerResult{
		Owner:    result.Owner,
		Memories: result.Memories[start:end],
	}

	common.RespondWithMeta(w, http.StatusOK, page, &common.MetaInfo{
		RequestID:  common.ExtractRequestID(r),
		Pagination: common.BuildPaginationMeta(params.Page, params.PageSize, total),
	})
}
