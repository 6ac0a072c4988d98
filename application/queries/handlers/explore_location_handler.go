package handlers

import (
	"context"
	"fmt"

	"memorylane-backend/application/ports"
	"memorylane-backend/application/queries"
	"memorylane-backend/domain/config"
	"memorylane-backend/domain/core/access"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"

	"go.uber.org/zap"
)

// ExploreLocationHandler answers geographic range searches. It scans every
// memory in global creation order, drops the ones the requester may not see,
// then keeps those within the squared planar radius. The full scan is a known
// scalability ceiling; a spatial index would replace it at real scale.
type ExploreLocationHandler struct {
	memoryRepo ports.MemoryRepository
	clock      ports.Clock
	cfg        *config.DomainConfig
	logger     *zap.Logger
}

// NewExploreLocationHandler creates a new explore location handler
func NewExploreLocationHandler(
	memoryRepo ports.MemoryRepository,
	clock ports.Clock,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *ExploreLocationHandler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExploreLocationHandler{
		memoryRepo: memoryRepo,
		clock:      clock,
		cfg:        cfg,
		logger:     logger,
	}
}

// Handle executes the explore location query
func (h *ExploreLocationHandler) Handle(ctx context.Context, q queries.ExploreLocationQuery) (*queries.ExploreLocationResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	if q.RadiusKm > h.cfg.MaxExploreRadiusKm {
		return nil, pkgerrors.NewInvalidInputError(
			fmt.Sprintf("radius exceeds maximum of %d km", h.cfg.MaxExploreRadiusKm))
	}

	center, err := valueobjects.NewCoordinates(q.Latitude, q.Longitude)
	if err != nil {
		return nil, err
	}

	now := h.clock.Now()
	squaredRadius := valueobjects.SquaredRadiusUnits(q.RadiusKm, h.cfg.KmPerDegree)

	memories, err := h.memoryRepo.GetAllInCreationOrder(ctx)
	if err != nil {
		return nil, err
	}

	result := &queries.ExploreLocationResult{
		MemoryIDs: []string{},
	}

	for _, memory := range memories {
		if !access.CanAccess(memory, q.Requester, now) {
			continue
		}
		if memory.Coordinates().SquaredDistanceTo(center) > squaredRadius {
			continue
		}
		result.MemoryIDs = append(result.MemoryIDs, memory.ID().String())
	}
	result.Count = len(result.MemoryIDs)

	h.logger.Debug("Explore scan completed",
		zap.Int("scanned", len(memories)),
		zap.Int("matched", result.Count),
	)

	return result, nil
}
