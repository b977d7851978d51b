package report

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/speechcare/clinic-api/internal/handler"
	"github.com/speechcare/clinic-api/internal/middleware"
	"github.com/speechcare/clinic-api/internal/model"
	reportService "github.com/speechcare/clinic-api/internal/service/report"
)

type Handler struct {
	service reportService.Service
}

func NewHandler(service reportService.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	upload := r.Group("/upload")
	{
		upload.POST("/audio", h.UploadAudio)
	}

	reports := r.Group("/reports")
	{
		reports.GET("/user", h.ListOwnReports)
		reports.GET("/doctor", h.ListDoctorReports)
		reports.GET("/:id", h.GetReport)
		reports.GET("/:id/pdf", h.FetchPDF)
		reports.PUT("/:id/notes", h.UpdateNotes)
	}
}

// UploadAudio ingests a multipart audio file, runs the analysis pipeline
// and returns the created report. PDF generation is best-effort: a 201 may
// carry a report without pdf_path.
func (h *Handler) UploadAudio(c *gin.Context) {
	file, header, err := c.Request.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("no audio file uploaded"))
		return
	}
	defer file.Close()

	patientIDRaw := c.PostForm("patientId")
	if patientIDRaw == "" {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("patient ID is required"))
		return
	}
	patientID, err := uuid.Parse(patientIDRaw)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid patient ID"))
		return
	}

	report, err := h.service.ProcessUpload(c.Request.Context(), reportService.UploadInput{
		Audio:        file,
		Filename:     header.Filename,
		PatientID:    patientID,
		UploaderID:   middleware.CallerID(c),
		UploaderRole: middleware.CallerRole(c),
	})
	if err != nil {
		handler.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListOwnReports returns the caller's reports, newest first.
func (h *Handler) ListOwnReports(c *gin.Context) {
	reports, err := h.service.ListForPatient(c.Request.Context(), middleware.CallerID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// ListDoctorReports returns reports associated with the calling doctor,
// joined with current patient details, optionally filtered by patient age.
func (h *Handler) ListDoctorReports(c *gin.Context) {
	if middleware.CallerRole(c) != model.UserRoleDoctor {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not authorized"))
		return
	}

	var filters model.ReportFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid age filter"))
		return
	}

	reports, err := h.service.ListForDoctor(c.Request.Context(), middleware.CallerID(c), &filters)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

func (h *Handler) GetReport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	report, err := h.service.GetReport(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// FetchPDF streams the report's PDF artifact as a download, regenerating
// it first when the stored artifact is missing or unreadable.
func (h *Handler) FetchPDF(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	stream, err := h.service.FetchPDF(c.Request.Context(), id, middleware.CallerID(c))
	if err != nil {
		handler.Error(c, err)
		return
	}
	defer stream.Content.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", stream.Filename),
		"Cache-Control":       "no-cache, no-store, must-revalidate",
	}
	c.DataFromReader(http.StatusOK, stream.Size, "application/pdf", stream.Content, extraHeaders)
}

// UpdateNotes attaches clinician notes to a report. Restricted to the
// report's associated doctor.
func (h *Handler) UpdateNotes(c *gin.Context) {
	if middleware.CallerRole(c) != model.UserRoleDoctor {
		c.JSON(http.StatusForbidden, handler.NewErrorResponse("not authorized"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid report ID"))
		return
	}

	var req model.UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("notes are required"))
		return
	}

	report, err := h.service.UpdateNotes(c.Request.Context(), id, middleware.CallerID(c), req.Notes)
	if err != nil {
		handler.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
