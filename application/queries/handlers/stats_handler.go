package handlers

import (
	"context"
	"fmt"

	"memorylane-backend/application/ports"
	"memorylane-backend/application/queries"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"

	"go.uber.org/zap"
)

// StatsHandler answers the pure read accessors: per-owner counts, landmark
// totals, per-location aggregates and reputation scores. Absent keys report
// their defined defaults rather than errors.
type StatsHandler struct {
	memoryRepo     ports.MemoryRepository
	locationRepo   ports.LocationRepository
	reputationRepo ports.ReputationRepository
	logger         *zap.Logger
}

// NewStatsHandler creates a new stats handler
func NewStatsHandler(
	memoryRepo ports.MemoryRepository,
	locationRepo ports.LocationRepository,
	reputationRepo ports.ReputationRepository,
	logger *zap.Logger,
) *StatsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsHandler{
		memoryRepo:     memoryRepo,
		locationRepo:   locationRepo,
		reputationRepo: reputationRepo,
		logger:         logger,
	}
}

// HandleUserMemoryCount executes the user memory count query
func (h *StatsHandler) HandleUserMemoryCount(ctx context.Context, q queries.GetUserMemoryCountQuery) (*queries.GetUserMemoryCountResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	count, err := h.memoryRepo.CountByOwner(ctx, q.Identity)
	if err != nil {
		return nil, err
	}

	return &queries.GetUserMemoryCountResult{
		Identity: q.Identity,
		Count:    count,
	}, nil
}

// HandleLandmarkCount executes the landmark count query
func (h *StatsHandler) HandleLandmarkCount(ctx context.Context, q queries.GetLandmarkCountQuery) (*queries.GetLandmarkCountResult, error) {
	count, err := h.locationRepo.CountLandmarks(ctx)
	if err != nil {
		return nil, err
	}

	return &queries.GetLandmarkCountResult{Count: count}, nil
}

// HandleLocationMemoryCount executes the per-location aggregate query
func (h *StatsHandler) HandleLocationMemoryCount(ctx context.Context, q queries.GetLocationMemoryCountQuery) (*queries.GetLocationMemoryCountResult, error) {
	coords, err := valueobjects.NewCoordinates(q.Latitude, q.Longitude)
	if err != nil {
		return nil, err
	}

	location, err := h.locationRepo.GetByCoordinates(ctx, coords)
	if err != nil {
		if pkgerrors.IsNotFound(err) {
			// Locations nobody has anchored to yet report zero
			return &queries.GetLocationMemoryCountResult{}, nil
		}
		return nil, err
	}

	return &queries.GetLocationMemoryCountResult{
		LocationID:  location.ID().String(),
		MemoryCount: location.MemoryCount(),
		IsLandmark:  location.IsLandmark(),
	}, nil
}

// HandleReputation executes the reputation score query
func (h *StatsHandler) HandleReputation(ctx context.Context, q queries.GetReputationQuery) (*queries.GetReputationResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	score, err := h.reputationRepo.GetBalance(ctx, q.Identity)
	if err != nil {
		return nil, err
	}

	return &queries.GetReputationResult{
		Identity: q.Identity,
		Score:    score,
	}, nil
}

// HandleMemoriesByOwner executes the owner listing query
func (h *StatsHandler) HandleMemoriesByOwner(ctx context.Context, q queries.GetMemoriesByOwnerQuery) (*queries.GetMemoriesByOwnerResult, error) {
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("invalid query: %w", err)
	}

	memories, err := h.memoryRepo.GetByOwner(ctx, q.Owner)
	if err != nil {
		return nil, err
	}

	result := &queries.GetMemoriesByOwnerResult{
		Owner:    q.Owner,
		Memories: make([]queries.OwnedMemorySummary, 0, len(memories)),
	}
	for _, memory := range memories {
		result.Memories = append(result.Memories, queries.OwnedMemorySummary{
			MemoryID:   memory.ID().String(),
			CreatedAt:  memory.CreatedAt(),
			UnlockTime: memory.UnlockTime(),
			Latitude:   memory.Coordinates().Latitude(),
			Longitude:  memory.Coordinates().Longitude(),
			MemoryType: memory.MemoryType(),
			IsPublic:   memory.IsPublic(),
			Likes:      memory.Likes(),
		})
	}

	return result, nil
}
