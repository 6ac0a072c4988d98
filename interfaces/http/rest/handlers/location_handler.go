package handlers

import (
	"net/http"
	"strconv"

	"memorylane-backend/application/queries"
	querybus "memorylane-backend/application/queries/bus"
	"memorylane-backend/pkg/auth"
	"memorylane-backend/pkg/common"
	pkgerrors "memorylane-backend/pkg/errors"

	"go.uber.org/zap"
)

// LocationHandler handles location and exploration HTTP requests
type LocationHandler struct {
	queryBus     *querybus.QueryBus
	errorHandler *pkgerrors.ErrorHandler
	logger       *zap.Logger
}

// NewLocationHandler creates a new location handler
func NewLocationHandler(
	queryBus *querybus.QueryBus,
	errorHandler *pkgerrors.ErrorHandler,
	logger *zap.Logger,
) *LocationHandler {
	return &LocationHandler{
		queryBus:     queryBus,
		errorHandler: errorHandler,
		logger:       logger,
	}
}

// Explore handles GET /locations/explore?lat=&lon=&radius_km=
func (h *LocationHandler) Explore(w http.ResponseWriter, r *http.Request) {
	userCtx, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	lat, err := parseInt64Param(r, "lat")
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid lat parameter")
		return
	}
	lon, err := parseInt64Param(r, "lon")
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid lon parameter")
		return
	}
	radiusKm, err := parseInt64Param(r, "radius_km")
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid radius_km parameter")
		return
	}

	query := queries.ExploreLocationQuery{
		Latitude:  lat,
		Longitude: lon,
		RadiusKm:  radiusKm,
		Requester: userCtx.Identity,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.logger.Debug("Explore rejected",
			zap.Int64("lat", lat),
			zap.Int64("lon", lon),
			zap.Int64("radiusKm", radiusKm),
			zap.Error(err),
		)
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetLocationStats handles GET /locations/stats?lat=&lon=
func (h *LocationHandler) GetLocationStats(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	lat, err := parseInt64Param(r, "lat")
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid lat parameter")
		return
	}
	lon, err := parseInt64Param(r, "lon")
	if err != nil {
		common.RespondError(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid lon parameter")
		return
	}

	query := queries.GetLocationMemoryCountQuery{
		Latitude:  lat,
		Longitude: lon,
	}

	result, err := h.queryBus.Ask(r.Context(), query)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// GetLandmarkCount handles GET /landmarks/count
func (h *LocationHandler) GetLandmarkCount(w http.ResponseWriter, r *http.Request) {
	if _, err := auth.GetUserFromContext(r.Context()); err != nil {
		common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized")
		return
	}

	result, err := h.queryBus.Ask(r.Context(), queries.GetLandmarkCountQuery{})
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, result)
}

// parseInt64Param parses a required integer query parameter
func parseInt64Param(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
}
