package handlers

import (
	"context"
	"fmt"

	"memorylane-backend/application/commands"
	"memorylane-backend/application/ports"
	"memorylane-backend/domain/config"
	"memorylane-backend/domain/core/access"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"

	"go.uber.org/zap"
)

// RetrieveMemoryHandler handles memory retrieval commands.
// A successful non-owner read credits the owner's reputation by one point,
// which is why retrieval runs inside a transaction like any other mutation.
type RetrieveMemoryHandler struct {
	uow      ports.UnitOfWork
	eventBus ports.EventPublisher
	clock    ports.Clock
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewRetrieveMemoryHandler creates a new retrieve memory handler
func NewRetrieveMemoryHandler(
	uow ports.UnitOfWork,
	eventBus ports.EventPublisher,
	clock ports.Clock,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *RetrieveMemoryHandler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RetrieveMemoryHandler{
		uow:      uow,
		eventBus: eventBus,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle executes the retrieve memory command
func (h *RetrieveMemoryHandler) Handle(ctx context.Context, cmd *commands.RetrieveMemoryCommand) error {
	if err := cmd.Validate(); err != nil {
		return fmt.Errorf("invalid command: %w", err)
	}

	now := h.clock.Now()

	memoryID, err := valueobjects.NewMemoryIDFromString(cmd.MemoryID)
	if err != nil {
		return pkgerrors.NewInvalidInputError(err.Error())
	}

	if err := h.uow.Begin(ctx); err != nil {
		return pkgerrors.Wrap(err, "failed to begin transaction")
	}
	defer h.uow.Rollback()

	memory, err := h.uow.MemoryRepository().GetByID(ctx, memoryID)
	if err != nil {
		return err
	}

	if !access.CanAccess(memory, cmd.Requester, now) {
		return pkgerrors.NewAccessDeniedError("requester is not allowed to view this memory")
	}

	// Owners reading their own memories earn nothing from the read
	if cmd.Requester != memory.Owner() {
		if err := h.uow.ReputationRepository().Credit(ctx, memory.Owner(), int64(h.cfg.AccessCredit)); err != nil {
			return err
		}
	}

	if err := h.uow.Commit(ctx); err != nil {
		return pkgerrors.Wrap(err, "failed to commit transaction")
	}

	memory.RecordAccess(cmd.Requester, now)
	if err := h.eventBus.PublishBatch(ctx, memory.GetUncommittedEvents()); err != nil {
		h.logger.Warn("Failed to publish memory unlocked event",
			zap.String("memoryID", memory.ID().String()),
			zap.Error(err),
		)
	}
	memory.MarkEventsAsCommitted()

	cmd.Result = &commands.MemoryProjection{
		MemoryID:   memory.ID().String(),
		Owner:      memory.Owner(),
		Content:    memory.Content().Payload(),
		CreatedAt:  memory.CreatedAt(),
		UnlockTime: memory.UnlockTime(),
		Latitude:   memory.Coordinates().Latitude(),
		Longitude:  memory.Coordinates().Longitude(),
		MemoryType: memory.MemoryType(),
		Likes:      memory.Likes(),
	}

	return nil
}
