package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sundar404/be-routine-api/internal/middleware"
	"github.com/sundar404/be-routine-api/internal/models"
	"github.com/sundar404/be-routine-api/internal/routine"
	"github.com/sundar404/be-routine-api/internal/service"
	appErrors "github.com/sundar404/be-routine-api/pkg/errors"
	"github.com/sundar404/be-routine-api/pkg/response"
)

// RoutineHandler wires the routine engine to HTTP routes.
type RoutineHandler struct {
	service *service.RoutineService
}

// NewRoutineHandler constructs a RoutineHandler.
func NewRoutineHandler(svc *service.RoutineService) *RoutineHandler {
	return &RoutineHandler{service: svc}
}

// Assign godoc
// @Summary Assign a class to routine slots
// @Description Books one period, or a contiguous span of periods, after conflict validation. The whole request commits atomically or not at all.
// @Tags Routine
// @Accept json
// @Produce json
// @Param payload body service.AssignSlotRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /routine/slots [post]
func (h *RoutineHandler) Assign(c *gin.Context) {
	var req service.AssignSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	slots, err := h.service.Assign(c.Request.Context(), req, actorID(c), requestMeta(c))
	if err != nil {
		renderRoutineError(c, err)
		return
	}
	response.Created(c, slots)
}

// Check godoc
// @Summary Dry-run conflict check
// @Description Evaluates an assignment against the stored schedule without committing. The result enumerates every collision found.
// @Tags Routine
// @Accept json
// @Produce json
// @Param payload body service.AssignSlotRequest true "Assignment payload"
// @Success 200 {object} response.Envelope
// @Router /routine/check [post]
func (h *RoutineHandler) Check(c *gin.Context) {
	var req service.AssignSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid assignment payload"))
		return
	}

	result, err := h.service.Check(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Get godoc
// @Summary Get one routine slot
// @Tags Routine
// @Produce json
// @Param id path string true "Slot ID"
// @Success 200 {object} response.Envelope
// @Router /routine/slots/{id} [get]
func (h *RoutineHandler) Get(c *gin.Context) {
	slot, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slot, nil)
}

// Clear godoc
// @Summary Clear a routine slot
// @Description Deactivates the slot. A slot belonging to a span clears the whole span group. Repeating the clear is a no-op.
// @Tags Routine
// @Param id path string true "Slot ID"
// @Success 204
// @Router /routine/slots/{id} [delete]
func (h *RoutineHandler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), c.Param("id"), actorID(c), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ClearSpan godoc
// @Summary Clear a span group
// @Tags Routine
// @Param spanId path string true "Span ID"
// @Success 204
// @Router /routine/spans/{spanId} [delete]
func (h *RoutineHandler) ClearSpan(c *gin.Context) {
	if err := h.service.ClearSpan(c.Request.Context(), c.Param("spanId"), actorID(c), requestMeta(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// SectionRoutine godoc
// @Summary Weekly routine of one section
// @Tags Routine
// @Produce json
// @Param academicYearId query string true "Academic year"
// @Param programId query string true "Program"
// @Param semester query int true "Semester"
// @Param section query string true "Section"
// @Success 200 {object} response.Envelope
// @Router /routine/section [get]
func (h *RoutineHandler) SectionRoutine(c *gin.Context) {
	semester, err := strconv.Atoi(c.Query("semester"))
	if err != nil || semester < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester must be a positive number"))
		return
	}

	slots, err := h.service.SectionRoutine(c.Request.Context(), c.Query("academicYearId"), c.Query("programId"), semester, c.Query("section"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil, middleware.ResponseMeta(c))
}

// TeacherRoutine godoc
// @Summary Weekly routine of one teacher
// @Tags Routine
// @Produce json
// @Param id path string true "Teacher ID"
// @Param academicYearId query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/routine [get]
func (h *RoutineHandler) TeacherRoutine(c *gin.Context) {
	slots, err := h.service.TeacherRoutine(c.Request.Context(), c.Query("academicYearId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil, middleware.ResponseMeta(c))
}

// RoomRoutine godoc
// @Summary Weekly booking grid of one room
// @Tags Routine
// @Produce json
// @Param id path string true "Room ID"
// @Param academicYearId query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /rooms/{id}/routine [get]
func (h *RoutineHandler) RoomRoutine(c *gin.Context) {
	slots, err := h.service.RoomRoutine(c.Request.Context(), c.Query("academicYearId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, slots, nil, middleware.ResponseMeta(c))
}

// Integrity godoc
// @Summary Span integrity report
// @Description Lists span groups whose stored members violate the span invariants. Issues are reported for manual review, never auto-repaired.
// @Tags Routine
// @Produce json
// @Param academicYearId query string true "Academic year"
// @Success 200 {object} response.Envelope
// @Router /routine/integrity [get]
func (h *RoutineHandler) Integrity(c *gin.Context) {
	issues, err := h.service.Integrity(c.Request.Context(), c.Query("academicYearId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, issues, nil)
}

// renderRoutineError keeps the standard error envelope but attaches the full
// conflict list when the engine rejected the assignment over collisions.
func renderRoutineError(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)

	var conflicts []models.Conflict
	var sErr *routine.SpanError
	if errors.As(err, &sErr) {
		conflicts = sErr.Conflicts
	}
	var cErr *models.ConflictResultError
	if errors.As(err, &cErr) {
		conflicts = cErr.Result.Conflicts
	}

	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := response.Envelope{Error: appErr}
	if len(conflicts) > 0 {
		envelope.Meta = map[string]interface{}{"conflicts": conflicts}
	}
	c.JSON(appErr.Status, envelope)
}

func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.Request.UserAgent()}
}
