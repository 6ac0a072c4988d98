package commands

import (
	"context"
	"errors"
	"time"

	"memorylane-backend/application/ports"
	"memorylane-backend/domain/config"
	"memorylane-backend/domain/core/entities"
	"memorylane-backend/domain/core/valueobjects"
	pkgerrors "memorylane-backend/pkg/errors"

	"go.uber.org/zap"
)

// CreateMemoryCommand represents the command to store a new memory.
// Result is filled in by the handler on success.
type CreateMemoryCommand struct {
	Owner                string    `json:"owner" validate:"required"`
	EncryptedContent     string    `json:"encrypted_content" validate:"required"`
	Latitude             int64     `json:"latitude"`
	Longitude            int64     `json:"longitude"`
	UnlockTime           time.Time `json:"unlock_time" validate:"required"`
	InheritanceAddresses []string  `json:"inheritance_addresses" validate:"max=32"`
	IsPublic             bool      `json:"is_public"`
	MemoryType           string    `json:"memory_type" validate:"max=64"`

	Result *CreateMemoryResult `json:"-"`
}

// CreateMemoryResult carries the outcome of a successful creation
type CreateMemoryResult struct {
	MemoryID       string    `json:"memory_id"`
	LocationID     string    `json:"location_id"`
	CreatedAt      time.Time `json:"created_at"`
	BecameLandmark bool      `json:"became_landmark"`
}

// Validate validates the command
func (cmd *CreateMemoryCommand) Validate() error {
	if cmd.Owner == "" {
		return errors.New("owner is required")
	}
	if cmd.EncryptedContent == "" {
		return errors.New("encrypted content is required")
	}
	if cmd.UnlockTime.IsZero() {
		return errors.New("unlock time is required")
	}
	return nil
}

// CreateMemoryHandler handles the CreateMemoryCommand.
// All writes for one creation (memory record, location aggregate, owner
// reputation, sequence counter) are staged on the unit of work and land in a
// single commit; a failure at any step leaves the ledger untouched.
type CreateMemoryHandler struct {
	uow      ports.UnitOfWork
	eventBus ports.EventPublisher
	clock    ports.Clock
	cfg      *config.DomainConfig
	logger   *zap.Logger
}

// NewCreateMemoryHandler creates a new handler instance
func NewCreateMemoryHandler(
	uow ports.UnitOfWork,
	eventBus ports.EventPublisher,
	clock ports.Clock,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *CreateMemoryHandler {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreateMemoryHandler{
		uow:      uow,
		eventBus: eventBus,
		clock:    clock,
		cfg:      cfg,
		logger:   logger,
	}
}

// Handle executes the create memory command
func (h *CreateMemoryHandler) Handle(ctx context.Context, cmd *CreateMemoryCommand) (*entities.Memory, error) {
	now := h.clock.Now()

	// Create value objects
	content, err := valueobjects.NewEncryptedContentWithConfig(cmd.EncryptedContent, h.cfg)
	if err != nil {
		return nil, err
	}

	coordinates, err := valueobjects.NewCoordinates(cmd.Latitude, cmd.Longitude)
	if err != nil {
		return nil, err
	}

	if err := h.uow.Begin(ctx); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to begin transaction")
	}
	defer h.uow.Rollback() // Will be no-op if commit succeeds

	memoryRepo := h.uow.MemoryRepository()
	locationRepo := h.uow.LocationRepository()
	reputationRepo := h.uow.ReputationRepository()

	// The running total of memories ever stored is the next sequence number;
	// it feeds the content-derived id so identical submissions stay distinct
	sequence, err := memoryRepo.TotalCount(ctx)
	if err != nil {
		return nil, err
	}

	// Create the memory entity
	memory, err := entities.NewMemoryWithConfig(
		cmd.Owner,
		content,
		coordinates,
		cmd.UnlockTime,
		cmd.InheritanceAddresses,
		cmd.IsPublic,
		cmd.MemoryType,
		now,
		sequence,
		h.cfg,
	)
	if err != nil {
		return nil, err
	}

	// Load or initialize the location aggregate for this exact coordinate pair
	location, err := locationRepo.GetByCoordinates(ctx, coordinates)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			return nil, err
		}
		location = entities.NewLocation(coordinates)
	}

	becameLandmark := location.RecordMemoryWithConfig(now, h.cfg)

	if err := memoryRepo.Save(ctx, memory); err != nil {
		return nil, err
	}
	if err := locationRepo.Save(ctx, location); err != nil {
		return nil, err
	}
	if err := reputationRepo.Credit(ctx, cmd.Owner, int64(h.cfg.CreationCredit)); err != nil {
		return nil, err
	}

	if err := h.uow.Commit(ctx); err != nil {
		return nil, pkgerrors.Wrap(err, "failed to commit transaction")
	}

	// Publish domain events after the state change is durable
	domainEvents := memory.GetUncommittedEvents()
	domainEvents = append(domainEvents, location.GetUncommittedEvents()...)

	if err := h.eventBus.PublishBatch(ctx, domainEvents); err != nil {
		// The write already committed; notification delivery is best effort
		h.logger.Warn("Failed to publish domain events",
			zap.String("memoryID", memory.ID().String()),
			zap.Error(err),
		)
	}

	memory.MarkEventsAsCommitted()
	location.MarkEventsAsCommitted()

	if becameLandmark {
		h.logger.Info("Location became a landmark",
			zap.String("locationID", location.ID().String()),
			zap.Int64("memoryCount", location.MemoryCount()),
		)
	}

	cmd.Result = &CreateMemoryResult{
		MemoryID:       memory.ID().String(),
		LocationID:     location.ID().String(),
		CreatedAt:      memory.CreatedAt(),
		BecameLandmark: becameLandmark,
	}

	return memory, nil
}
