package reviews

import (
	"errors"
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

// RegisterRoutes attaches review routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:id/reviews", h.create)
	rg.GET("/reviews/:id", h.get)
	rg.GET("/reviews", h.list)
}

type createRequest struct {
	TargetRole      string `json:"targetRole"`
	TargetIndustry  string `json:"targetIndustry"`
	ExperienceLevel string `json:"experienceLevel"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.TargetRole) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "targetRole is required", nil)
		return
	}

	ctx := telemetry.WithRequestID(c.Request.Context(), c.GetString("requestId"))
	created, err := h.Svc.Create(ctx, userID, CreateInput{
		ResumeID:        c.Param("id"),
		TargetRole:      req.TargetRole,
		TargetIndustry:  req.TargetIndustry,
		ExperienceLevel: req.ExperienceLevel,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}

	respond.JSON(c, http.StatusAccepted, CreateResponse{
		ReviewRequestID: created.ID,
		Status:          created.Status,
	})
}

func (h *Handler) get(c *gin.Context) {
	req, result, items, err := h.Svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	respond.JSON(c, http.StatusOK, toStatusResponse(req, result, items))
}

func (h *Handler) list(c *gin.Context) {
	resumeID := strings.TrimSpace(c.Query("resumeId"))
	if resumeID == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resumeId is required", nil)
		return
	}
	limit := parseIntDefault(c.Query("limit"), 20)
	offset := parseIntDefault(c.Query("offset"), 0)

	items, err := h.Svc.List(c.Request.Context(), resumeID, limit, offset)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	out := make([]StatusResponse, 0, len(items))
	for _, req := range items {
		out = append(out, toStatusResponse(req, nil, nil))
	}
	respond.JSON(c, http.StatusOK, gin.H{"reviews": out})
}

func writeServiceError(c *gin.Context, err error) {
	if le, ok := ratelimit.AsLimitError(err); ok {
		retryAfter := int(le.RetryAfter.Seconds()) + 1
		c.Header("Retry-After", strconv.Itoa(retryAfter))
		respond.Error(c, http.StatusTooManyRequests, "rate_limit_exceeded", le.Error(), gin.H{"retryAfter": retryAfter})
		return
	}
	if errors.Is(err, ErrResumeNotReady) {
		respond.Error(c, http.StatusConflict, "precondition_failed", err.Error(), nil)
		return
	}
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "review request not found", nil)
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
