package handler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sundar404/be-routine-api/internal/service"
	appErrors "github.com/sundar404/be-routine-api/pkg/errors"
	"github.com/sundar404/be-routine-api/pkg/response"
)

// ExportHandler streams rendered routine documents.
type ExportHandler struct {
	service *service.ExportService
}

// NewExportHandler constructs an ExportHandler.
func NewExportHandler(svc *service.ExportService) *ExportHandler {
	return &ExportHandler{service: svc}
}

// SectionRoutine godoc
// @Summary Download a section routine
// @Tags Export
// @Produce text/csv
// @Produce application/pdf
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param academicYearId query string true "Academic year"
// @Param programId query string true "Program"
// @Param semester query int true "Semester"
// @Param section query string true "Section"
// @Success 200 {file} binary
// @Router /export/routine/section [get]
func (h *ExportHandler) SectionRoutine(c *gin.Context) {
	semester, err := strconv.Atoi(c.Query("semester"))
	if err != nil || semester < 1 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "semester must be a positive number"))
		return
	}

	file, err := h.service.SectionRoutine(c.Request.Context(), exportFormat(c), c.Query("academicYearId"), c.Query("programId"), semester, c.Query("section"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamExport(c, file)
}

// TeacherRoutine godoc
// @Summary Download a teacher routine
// @Tags Export
// @Param id path string true "Teacher ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param academicYearId query string true "Academic year"
// @Success 200 {file} binary
// @Router /export/routine/teacher/{id} [get]
func (h *ExportHandler) TeacherRoutine(c *gin.Context) {
	file, err := h.service.TeacherRoutine(c.Request.Context(), exportFormat(c), c.Query("academicYearId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamExport(c, file)
}

// RoomRoutine godoc
// @Summary Download a room routine
// @Tags Export
// @Param id path string true "Room ID"
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param academicYearId query string true "Academic year"
// @Success 200 {file} binary
// @Router /export/routine/room/{id} [get]
func (h *ExportHandler) RoomRoutine(c *gin.Context) {
	file, err := h.service.RoomRoutine(c.Request.Context(), exportFormat(c), c.Query("academicYearId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	streamExport(c, file)
}

func exportFormat(c *gin.Context) service.ExportFormat {
	return service.ExportFormat(strings.ToLower(c.DefaultQuery("format", "csv")))
}

func streamExport(c *gin.Context, file *service.ExportFile) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Data(200, file.ContentType, file.Data)
}
