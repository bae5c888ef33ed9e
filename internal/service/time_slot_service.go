package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sundar404/be-routine-api/internal/models"
	appErrors "github.com/sundar404/be-routine-api/pkg/errors"
)

type timeSlotRepository interface {
	ListOrdered(ctx context.Context) (models.TimeSlotCatalog, error)
	FindByID(ctx context.Context, id string) (*models.TimeSlotDefinition, error)
	Create(ctx context.Context, def *models.TimeSlotDefinition) error
	Update(ctx context.Context, def *models.TimeSlotDefinition) error
	Delete(ctx context.Context, id string) error
	Reorder(ctx context.Context, orderedIDs []string) error
}

// TimeSlotRequest is the payload for creating or updating a period definition.
type TimeSlotRequest struct {
	Label     string  `json:"label" validate:"required,max=50"`
	StartTime string  `json:"start_time" validate:"required,len=5"`
	EndTime   string  `json:"end_time" validate:"required,len=5"`
	SortOrder int     `json:"sort_order" validate:"min=0"`
	IsBreak   bool    `json:"is_break"`
	ProgramID *string `json:"program_id"`
}

// TimeSlotService manages the ordered period catalog. Catalog edits shift
// canonical slot indexes, so every mutation drops all cached routine views.
type TimeSlotService struct {
	repo      timeSlotRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimeSlotService constructs a TimeSlotService.
func NewTimeSlotService(repo timeSlotRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *TimeSlotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeSlotService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Catalog returns the period definitions ordered by sort order.
func (s *TimeSlotService) Catalog(ctx context.Context) (models.TimeSlotCatalog, error) {
	catalog, err := s.repo.ListOrdered(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot catalog")
	}
	return catalog, nil
}

// Get returns one period definition.
func (s *TimeSlotService) Get(ctx context.Context, id string) (*models.TimeSlotDefinition, error) {
	def, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	return def, nil
}

// Create adds a period definition to the catalog.
func (s *TimeSlotService) Create(ctx context.Context, req TimeSlotRequest) (*models.TimeSlotDefinition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}

	def := &models.TimeSlotDefinition{
		Label:     strings.TrimSpace(req.Label),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		SortOrder: req.SortOrder,
		IsBreak:   req.IsBreak,
		ProgramID: req.ProgramID,
	}
	if err := s.repo.Create(ctx, def); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create time slot")
	}
	s.dropRoutineCaches(ctx)
	return def, nil
}

// Update modifies a period definition.
func (s *TimeSlotService) Update(ctx context.Context, id string, req TimeSlotRequest) (*models.TimeSlotDefinition, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid time slot payload")
	}

	def, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}

	def.Label = strings.TrimSpace(req.Label)
	def.StartTime = req.StartTime
	def.EndTime = req.EndTime
	def.SortOrder = req.SortOrder
	def.IsBreak = req.IsBreak
	def.ProgramID = req.ProgramID

	if err := s.repo.Update(ctx, def); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update time slot")
	}
	s.dropRoutineCaches(ctx)
	return def, nil
}

// Delete removes a period definition.
func (s *TimeSlotService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "time slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete time slot")
	}
	s.dropRoutineCaches(ctx)
	return nil
}

// Reorder rewrites the catalog ordering to match the given id sequence.
func (s *TimeSlotService) Reorder(ctx context.Context, orderedIDs []string) (models.TimeSlotCatalog, error) {
	if len(orderedIDs) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ordered ids must not be empty")
	}
	if err := s.repo.Reorder(ctx, orderedIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reorder time slots")
	}
	s.dropRoutineCaches(ctx)
	return s.Catalog(ctx)
}

func (s *TimeSlotService) dropRoutineCaches(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "routine:*"); err != nil {
		s.logger.Warn("failed to drop routine caches after catalog change", zap.Error(err))
	}
}
