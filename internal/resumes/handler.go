package resumes

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-review-backend/internal/ratelimit"
	"resume-review-backend/internal/shared/server/middleware"
	"resume-review-backend/internal/shared/server/respond"
	"resume-review-backend/internal/shared/telemetry"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.upload)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id/extraction", h.extraction)
	rg.POST("/resumes/extractions", h.batchExtractions)
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxUploadBytes+1<<20)

	candidateID := strings.TrimSpace(c.PostForm("candidateId"))
	if candidateID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "candidateId is required", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}

	ctx := telemetry.WithRequestID(c.Request.Context(), c.GetString("requestId"))
	resume, err := h.Svc.Upload(ctx, userID, UploadInput{
		CandidateID: candidateID,
		FileName:    fileHeader.Filename,
		MimeType:    fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respond.JSON(c, http.StatusCreated, UploadResponse{
		ResumeID:      resume.ID,
		Status:        resume.Status,
		VersionNumber: resume.VersionNumber,
	})
}

func (h *Handler) list(c *gin.Context) {
	candidateID := strings.TrimSpace(c.Query("candidateId"))
	limit := parseIntDefault(c.Query("limit"), 20)
	offset := parseIntDefault(c.Query("offset"), 0)

	items, err := h.Svc.List(c.Request.Context(), candidateID, limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	out := make([]ResumeResponse, 0, len(items))
	for _, resume := range items {
		out = append(out, toResumeResponse(resume))
	}
	respond.JSON(c, http.StatusOK, gin.H{"resumes": out})
}

func (h *Handler) extraction(c *gin.Context) {
	resume, secs, err := h.Svc.Extraction(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toExtractionResponse(resume, secs))
}

type batchRequest struct {
	ResumeIDs []string `json:"resumeIds"`
}

func (h *Handler) batchExtractions(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	results, err := h.Svc.BatchExtractions(c.Request.Context(), req.ResumeIDs)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	type batchItem struct {
		ResumeID string              `json:"resumeId"`
		Error    *string             `json:"error,omitempty"`
		Result   *ExtractionResponse `json:"result,omitempty"`
	}
	out := make([]batchItem, 0, len(results))
	for _, r := range results {
		item := batchItem{ResumeID: r.ResumeID}
		if r.Err != nil {
			msg := r.Err.Error()
			if errors.Is(r.Err, ErrNotFound) {
				msg = "resume not found"
			}
			item.Error = &msg
		} else {
			resp := toExtractionResponse(r.Resume, r.Sections)
			item.Result = &resp
		}
		out = append(out, item)
	}
	respond.JSON(c, http.StatusOK, gin.H{"results": out})
}

func writeServiceError(c *gin.Context, err error) {
	if ve, ok := AsValidationError(err); ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", ve.Message, gin.H{"code": ve.Code})
		return
	}
	if le, ok := ratelimit.AsLimitError(err); ok {
		retryAfter := int(le.RetryAfter.Seconds()) + 1
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		respond.Error(c, http.StatusTooManyRequests, "rate_limit_exceeded", le.Error(), gin.H{"retryAfter": retryAfter})
		return
	}
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		return
	}
	respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected error", nil)
}

func parseIntDefault(raw string, def int) int {
	if strings.TrimSpace(raw) == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	return v
}
