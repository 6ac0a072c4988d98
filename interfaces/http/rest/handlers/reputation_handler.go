package handlers

import (
	"net/http"

	"memorylane-backend/application/queries"
	querybus "memorylane-backend/application/queries/bus"
	"memorylane-backend/pkg/auth"
	"memorylane-backend/pkg/common"
	pkgerrors "memorylane-backend/pkg/errors"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReputationHandler handles reputation HTTP requests
type ReputationHandler struct {
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewReputationHandler creates a new reputation handler
func NewReputationHandler(
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *ReputationHandler {
	return &ReputationHandler{
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// GetReputation handles GET /reputation/{identity}.
// Scores are public; any authenticated caller can read any identity's score.
func (h *ReputationHandler) GetReputation(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	identity := chi.URLParam(r, "identity")
	if identity == "" {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Identity is required")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetReputationQuery{Identity: identity})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetMemoryCount handles GET /identities/{identity}/memory-count
func (h *ReputationHandler) GetMemoryCount(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	identity := chi.URLParam(r, "identity")
	if identity == "" {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Identity is required")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetUserMemoryCountQuery{Identity: identity})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}
