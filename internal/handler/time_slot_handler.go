package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sundar404/be-routine-api/internal/service"
	appErrors "github.com/sundar404/be-routine-api/pkg/errors"
	"github.com/sundar404/be-routine-api/pkg/response"
)

// TimeSlotHandler wires the period catalog to HTTP routes.
type TimeSlotHandler struct {
	timeSlots *service.TimeSlotService
}

// NewTimeSlotHandler constructs a TimeSlotHandler.
func NewTimeSlotHandler(timeSlots *service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{timeSlots: timeSlots}
}

// reorderRequest carries the new catalog ordering, first id first.
type reorderRequest struct {
	OrderedIDs []string `json:"ordered_ids" binding:"required,min=1"`
}

// Catalog godoc
// @Summary List period definitions in display order
// @Tags Time Slots
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /time-slots [get]
func (h *TimeSlotHandler) Catalog(c *gin.Context) {
	catalog, err := h.timeSlots.Catalog(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, catalog, nil)
}

// Get godoc
// @Summary Get period definition detail
// @Tags Time Slots
// @Produce json
// @Param id path string true "Time Slot ID"
// @Success 200 {object} response.Envelope
// @Router /time-slots/{id} [get]
func (h *TimeSlotHandler) Get(c *gin.Context) {
	def, err := h.timeSlots.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, def, nil)
}

// Create godoc
// @Summary Create period definition
// @Description Adds a period to the catalog. Existing routine caches are dropped because the canonical period order shifts.
// @Tags Time Slots
// @Accept json
// @Produce json
// @Param payload body service.TimeSlotRequest true "Time slot payload"
// @Success 201 {object} response.Envelope
// @Router /time-slots [post]
func (h *TimeSlotHandler) Create(c *gin.Context) {
	var req service.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time slot payload"))
		return
	}
	def, err := h.timeSlots.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, def)
}

// Update godoc
// @Summary Update period definition
// @Tags Time Slots
// @Accept json
// @Produce json
// @Param id path string true "Time Slot ID"
// @Param payload body service.TimeSlotRequest true "Time slot payload"
// @Success 200 {object} response.Envelope
// @Router /time-slots/{id} [put]
func (h *TimeSlotHandler) Update(c *gin.Context) {
	var req service.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid time slot payload"))
		return
	}
	def, err := h.timeSlots.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, def, nil)
}

// Delete godoc
// @Summary Delete period definition
// @Tags Time Slots
// @Param id path string true "Time Slot ID"
// @Success 204
// @Router /time-slots/{id} [delete]
func (h *TimeSlotHandler) Delete(c *gin.Context) {
	if err := h.timeSlots.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reorder godoc
// @Summary Reorder the period catalog
// @Tags Time Slots
// @Accept json
// @Produce json
// @Param payload body reorderRequest true "Ordered time slot ids"
// @Success 200 {object} response.Envelope
// @Router /time-slots/reorder [put]
func (h *TimeSlotHandler) Reorder(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid reorder payload"))
		return
	}
	catalog, err := h.timeSlots.Reorder(c.Request.Context(), req.OrderedIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, catalog, nil)
}
