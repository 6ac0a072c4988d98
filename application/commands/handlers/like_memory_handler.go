package handlers

import (
	"context"
	"fmt"

	"memorylane-backend/application/commands"
	"memorylane-backend/application/ports"
	"memorylane-backend/domain/config"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"

	"go.uber.org/zap"
)

// LikeMemoryHandler handles like commands
type LikeMemoryHandler struct {
	uow      ports.UnitOfWork
	eventBus ports.EventPublisher
	clock    ports.Clock
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewLikeMemoryHandler creates a new like memory handler
func NewLikeMemoryHandler(
	uow ports.UnitOfWork,
	eventBus ports.EventPublisher,
	clock ports.Clock,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *LikeMemoryHandler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LikeMemoryHandler{
		uow:      uow,
		eventBus: eventBus,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle executes the like memory command
func (h *LikeMemoryHandler) Handle(ctx context.Context, cmd *commands.LikeMemoryCommand) error {
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

	// The entity enforces the public-only and no-self-like rules
	if err := memory.Like(cmd.Liker, now); err != nil {
		return err
	}

	if err := h.uow.MemoryRepository().Save(ctx, memory); err != nil {
		return err
	}
	if err := h.uow.ReputationRepository().Credit(ctx, memory.Owner(), int64(h.cfg.LikeCredit)); err != nil {
		return err
	}

	if err := h.uow.Commit(ctx); err != nil {
		return pkgerrors.Wrap(err, "failed to commit transaction")
	}

	if err := h.eventBus.PublishBatch(ctx, memory.GetUncommittedEvents()); err != nil {
		h.logger.Warn("Failed to publish memory liked event",
			zap.String("memoryID", memory.ID().String()),
			zap.Error(err),
		)
	}
	memory.MarkEventsAsCommitted()

	cmd.Result = &commands.LikeMemoryResult{
		MemoryID:   memory.ID().String(),
		TotalLikes: memory.Likes(),
	}

	return nil
}
