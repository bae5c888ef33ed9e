package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sundar404/be-routine-api/internal/models"
	"github.com/sundar404/be-routine-api/internal/routine"
	appErrors "github.com/sundar404/be-routine-api/pkg/errors"
)

type routineSlotRepository interface {
	WithDayLock(ctx context.Context, academicYearID string, dayIndex int, fn func(tx *sqlx.Tx) error) error
	ListActiveForDay(ctx context.Context, exec sqlx.ExtContext, academicYearID string, dayIndex int) ([]models.RoutineSlot, error)
	List(ctx context.Context, filter models.RoutineSlotFilter) ([]models.RoutineSlot, error)
	FindByID(ctx context.Context, id string) (*models.RoutineSlot, error)
	FindBySpan(ctx context.Context, spanID string) ([]models.RoutineSlot, error)
	InsertBatch(ctx context.Context, exec sqlx.ExtContext, slots []models.RoutineSlot) error
	Deactivate(ctx context.Context, exec sqlx.ExtContext, id string) (int64, error)
	DeactivateBySpan(ctx context.Context, exec sqlx.ExtContext, spanID string) (int64, error)
	ListActiveSpanned(ctx context.Context, academicYearID string) ([]models.RoutineSlot, error)
}

type timeSlotCatalogRepository interface {
	ListOrdered(ctx context.Context) (models.TimeSlotCatalog, error)
}

// AssignSlotRequest describes one requested class assignment. SpanLength > 1
// books that many contiguous periods as a single span group.
type AssignSlotRequest struct {
	AcademicYearID    string                   `json:"academic_year_id" validate:"required"`
	ProgramID         string                   `json:"program_id" validate:"required"`
	Semester          int                      `json:"semester" validate:"required,min=1"`
	Section           string                   `json:"section" validate:"required"`
	DayIndex          int                      `json:"day_index" validate:"min=0"`
	SlotIndex         int                      `json:"slot_index" validate:"min=0"`
	SpanLength        int                      `json:"span_length" validate:"omitempty,min=1"`
	SubjectID         string                   `json:"subject_id" validate:"required"`
	TeacherIDs        []string                 `json:"teacher_ids" validate:"required,min=1,dive,required"`
	RoomID            string                   `json:"room_id" validate:"required"`
	ClassType         models.ClassType         `json:"class_type" validate:"required,oneof=LECTURE PRACTICAL TUTORIAL"`
	LabGroupID        *string                  `json:"lab_group_id"`
	RecurrenceType    models.RecurrenceType    `json:"recurrence_type" validate:"omitempty,oneof=WEEKLY ALTERNATE"`
	RecurrencePattern models.RecurrencePattern `json:"recurrence_pattern" validate:"omitempty,oneof=ODD EVEN"`
}

// RoutineConfig tunes routine service behaviour.
type RoutineConfig struct {
	TeachingDays int
	CacheTTL     time.Duration
}

// RoutineService coordinates the conflict engine with persistence, caching
// and the audit trail. All mutation paths run inside a per-day advisory lock
// so overlapping proposals serialize against the same scheduling scope.
type RoutineService struct {
	slots     routineSlotRepository
	timeSlots timeSlotCatalogRepository
	cache     *CacheService
	metrics   *MetricsService
	audit     *AuditService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       RoutineConfig
}

// NewRoutineService constructs a RoutineService.
func NewRoutineService(slots routineSlotRepository, timeSlots timeSlotCatalogRepository, cache *CacheService, metrics *MetricsService, audit *AuditService, validate *validator.Validate, logger *zap.Logger, cfg RoutineConfig) *RoutineService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TeachingDays <= 0 {
		cfg.TeachingDays = 6
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 15 * time.Minute
	}
	return &RoutineService{
		slots:     slots,
		timeSlots: timeSlots,
		cache:     cache,
		metrics:   metrics,
		audit:     audit,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// Check evaluates a proposal against the stored schedule without committing
// anything. The returned result lists every collision found.
func (s *RoutineService) Check(ctx context.Context, req AssignSlotRequest) (*models.ConflictResult, error) {
	proposal, checker, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	existing, err := s.slots.ListActiveForDay(ctx, nil, req.AcademicYearID, req.DayIndex)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day schedule")
	}

	result, err := checker.CheckConflicts(proposal, existing)
	if err != nil {
		return nil, mapEngineError(err)
	}
	s.metrics.RecordConflictCheck(result.IsValid)
	return &result, nil
}

// Assign plans and commits a proposal. Multi-period proposals either commit
// every member slot or nothing.
func (s *RoutineService) Assign(ctx context.Context, req AssignSlotRequest, actorID string, meta models.RequestMeta) ([]models.RoutineSlot, error) {
	proposal, checker, err := s.prepare(ctx, req)
	if err != nil {
		return nil, err
	}

	var planned []models.RoutineSlot
	err = s.slots.WithDayLock(ctx, req.AcademicYearID, req.DayIndex, func(tx *sqlx.Tx) error {
		existing, err := s.slots.ListActiveForDay(ctx, tx, req.AcademicYearID, req.DayIndex)
		if err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load day schedule")
		}
		planned, err = checker.PlanSpan(proposal, existing)
		if err != nil {
			return mapEngineError(err)
		}
		if err := s.slots.InsertBatch(ctx, tx, planned); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store routine slots")
		}
		return nil
	})
	s.metrics.RecordConflictCheck(err == nil)
	if err != nil {
		return nil, err
	}

	s.invalidateRoutineCaches(ctx, req.AcademicYearID)
	s.recordRoutineAudit(actorID, models.AuditActionRoutineAssign, &planned[0].ID, nil, planned, meta)

	return planned, nil
}

// Clear deactivates one slot, or the slot's whole span group when it belongs
// to one. Clearing an already cleared slot is a no-op.
func (s *RoutineService) Clear(ctx context.Context, slotID, actorID string, meta models.RequestMeta) error {
	slot, err := s.slots.FindByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "routine slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routine slot")
	}

	action := models.AuditActionRoutineClear
	err = s.slots.WithDayLock(ctx, slot.AcademicYearID, slot.DayIndex, func(tx *sqlx.Tx) error {
		if slot.SpanID != nil {
			action = models.AuditActionSpanClear
			_, err := s.slots.DeactivateBySpan(ctx, tx, *slot.SpanID)
			return err
		}
		_, err := s.slots.Deactivate(ctx, tx, slot.ID)
		return err
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear routine slot")
	}

	s.invalidateRoutineCaches(ctx, slot.AcademicYearID)
	s.recordRoutineAudit(actorID, action, &slot.ID, []models.RoutineSlot{*slot}, nil, meta)
	return nil
}

// ClearSpan deactivates every member of a span group in one pass.
func (s *RoutineService) ClearSpan(ctx context.Context, spanID, actorID string, meta models.RequestMeta) error {
	members, err := s.slots.FindBySpan(ctx, spanID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load span group")
	}
	if len(members) == 0 {
		return appErrors.Clone(appErrors.ErrNotFound, "span group not found")
	}

	head := members[0]
	err = s.slots.WithDayLock(ctx, head.AcademicYearID, head.DayIndex, func(tx *sqlx.Tx) error {
		_, err := s.slots.DeactivateBySpan(ctx, tx, spanID)
		return err
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear span group")
	}

	s.invalidateRoutineCaches(ctx, head.AcademicYearID)
	s.recordRoutineAudit(actorID, models.AuditActionSpanClear, &spanID, members, nil, meta)
	return nil
}

// SectionRoutine returns the active schedule for one program/semester/section.
func (s *RoutineService) SectionRoutine(ctx context.Context, academicYearID, programID string, semester int, section string) ([]models.RoutineSlot, error) {
	key := fmt.Sprintf("routine:%s:section:%s:%d:%s", academicYearID, programID, semester, section)
	filter := models.RoutineSlotFilter{
		AcademicYearID: academicYearID,
		ProgramID:      programID,
		Semester:       semester,
		Section:        section,
		ActiveOnly:     true,
	}
	return s.cachedList(ctx, key, filter)
}

// TeacherRoutine returns every active slot a teacher appears on.
func (s *RoutineService) TeacherRoutine(ctx context.Context, academicYearID, teacherID string) ([]models.RoutineSlot, error) {
	key := fmt.Sprintf("routine:%s:teacher:%s", academicYearID, teacherID)
	filter := models.RoutineSlotFilter{
		AcademicYearID: academicYearID,
		TeacherID:      teacherID,
		ActiveOnly:     true,
	}
	return s.cachedList(ctx, key, filter)
}

// RoomRoutine returns the active booking schedule of one room.
func (s *RoutineService) RoomRoutine(ctx context.Context, academicYearID, roomID string) ([]models.RoutineSlot, error) {
	key := fmt.Sprintf("routine:%s:room:%s", academicYearID, roomID)
	filter := models.RoutineSlotFilter{
		AcademicYearID: academicYearID,
		RoomID:         roomID,
		ActiveOnly:     true,
	}
	return s.cachedList(ctx, key, filter)
}

// Get loads one routine slot.
func (s *RoutineService) Get(ctx context.Context, id string) (*models.RoutineSlot, error) {
	slot, err := s.slots.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "routine slot not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load routine slot")
	}
	return slot, nil
}

// Integrity scans all active span groups of an academic year and reports
// groups whose stored members violate the span invariants. Issues are
// reported, never auto-repaired.
func (s *RoutineService) Integrity(ctx context.Context, academicYearID string) ([]models.SpanIntegrityIssue, error) {
	members, err := s.slots.ListActiveSpanned(ctx, academicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load span members")
	}
	issues := routine.CheckSpanIntegrity(members)
	if len(issues) > 0 {
		s.logger.Warn("span integrity issues detected",
			zap.String("academic_year_id", academicYearID),
			zap.Int("issues", len(issues)))
	}
	return issues, nil
}

func (s *RoutineService) prepare(ctx context.Context, req AssignSlotRequest) (*routine.Proposal, *routine.Checker, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid routine payload")
	}

	catalog, err := s.timeSlots.ListOrdered(ctx)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load time slot catalog")
	}
	if len(catalog) == 0 {
		return nil, nil, appErrors.Clone(appErrors.ErrValidation, "time slot catalog is empty")
	}

	spanLength := req.SpanLength
	if spanLength == 0 {
		spanLength = 1
	}
	recurrenceType := req.RecurrenceType
	if recurrenceType == "" {
		recurrenceType = models.RecurrenceWeekly
	}

	proposal := &routine.Proposal{
		AcademicYearID: req.AcademicYearID,
		ProgramID:      req.ProgramID,
		Semester:       req.Semester,
		Section:        req.Section,
		DayIndex:       req.DayIndex,
		SlotIndex:      req.SlotIndex,
		SpanLength:     spanLength,
		SubjectID:      req.SubjectID,
		TeacherIDs:     req.TeacherIDs,
		RoomID:         req.RoomID,
		ClassType:      req.ClassType,
		LabGroupID:     req.LabGroupID,
		Recurrence:     models.Recurrence{Type: recurrenceType, Pattern: req.RecurrencePattern},
	}

	return proposal, routine.NewChecker(s.cfg.TeachingDays, catalog), nil
}

func (s *RoutineService) cachedList(ctx context.Context, key string, filter models.RoutineSlotFilter) ([]models.RoutineSlot, error) {
	var cached []models.RoutineSlot
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	slots, err := s.slots.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list routine slots")
	}
	if err := s.cache.Set(ctx, key, slots, s.cfg.CacheTTL); err != nil {
		s.logger.Debug("routine cache set failed", zap.String("key", key), zap.Error(err))
	}
	return slots, nil
}

func (s *RoutineService) invalidateRoutineCaches(ctx context.Context, academicYearID string) {
	pattern := fmt.Sprintf("routine:%s:*", academicYearID)
	if err := s.cache.Invalidate(ctx, pattern); err != nil {
		s.logger.Warn("routine cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}

func (s *RoutineService) recordRoutineAudit(actorID, action string, resourceID *string, before, after []models.RoutineSlot, meta models.RequestMeta) {
	entry := &models.AuditLog{
		Action:     action,
		Resource:   "routine_slots",
		ResourceID: resourceID,
		IPAddress:  meta.IP,
		UserAgent:  meta.UserAgent,
	}
	if actorID != "" {
		entry.UserID = &actorID
	}
	if len(before) > 0 {
		if payload, err := json.Marshal(before); err == nil {
			entry.OldValues = payload
		}
	}
	if len(after) > 0 {
		if payload, err := json.Marshal(after); err == nil {
			entry.NewValues = payload
		}
	}
	s.audit.Record(entry)
}

// mapEngineError translates engine failures into transport-level errors while
// keeping the domain error reachable through errors.As.
func mapEngineError(err error) error {
	var vErr *routine.ValidationError
	if errors.As(err, &vErr) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, vErr.Error())
	}
	var sErr *routine.SpanError
	if errors.As(err, &sErr) {
		if sErr.Code == routine.SpanPeriodBlocked {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, sErr.Message)
		}
		return appErrors.Wrap(err, appErrors.ErrSpanInvalid.Code, appErrors.ErrSpanInvalid.Status, sErr.Message)
	}
	var cErr *models.ConflictResultError
	if errors.As(err, &cErr) {
		return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "routine conflict detected")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "conflict evaluation failed")
}
