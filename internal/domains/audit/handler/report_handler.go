package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	auditmodel "library-backend/internal/domains/audit/model"
	"library-backend/internal/domains/audit/service"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
	"library-backend/pkg/logger"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new report handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ListLogs handles GET /api/v1/admin/audit-logs?action=borrow&user_id=...&page=1&limit=50
func (h *Handler) ListLogs(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	action := c.Query("action")

	var userID *uuid.UUID
	if raw := c.Query("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid user ID")
			return
		}
		userID = &id
	}

	logs, total, err := h.service.ListLogs(c.Request.Context(), action, userID, page, limit)
	if err != nil {
		logger.Error("failed to list audit logs", err)
		response.InternalServerError(c, "Internal server error")
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, logs, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// ActivityReport handles GET /api/v1/admin/reports/activity?from=2026-01-01&to=2026-02-01
func (h *Handler) ActivityReport(c *gin.Context) {
	from, to, ok := parseReportRange(c)
	if !ok {
		return
	}

	report, err := h.service.ActivityReport(c.Request.Context(), from, to)
	if err != nil {
		logger.Error("failed to build activity report", err)
		response.InternalServerError(c, "Internal server error")
		return
	}

	h.recordReportView(c, "activity")
	response.Success(c, http.StatusOK, report)
}

// TopBooksReport handles GET /api/v1/admin/reports/top-books?from=...&to=...&limit=10
func (h *Handler) TopBooksReport(c *gin.Context) {
	from, to, ok := parseReportRange(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	report, err := h.service.TopBooksReport(c.Request.Context(), from, to, limit)
	if err != nil {
		logger.Error("failed to build top books report", err)
		response.InternalServerError(c, "Internal server error")
		return
	}

	h.recordReportView(c, "top-books")
	response.Success(c, http.StatusOK, report)
}

// OverdueReport handles GET /api/v1/admin/reports/overdue
func (h *Handler) OverdueReport(c *gin.Context) {
	report, err := h.service.OverdueReport(c.Request.Context())
	if err != nil {
		logger.Error("failed to build overdue report", err)
		response.InternalServerError(c, "Internal server error")
		return
	}

	h.recordReportView(c, "overdue")
	response.Success(c, http.StatusOK, report)
}

func (h *Handler) recordReportView(c *gin.Context, name string) {
	if actorID, ok := middleware.GetUserID(c); ok {
		h.service.Record(c.Request.Context(), actorID, auditmodel.ActionViewReport, "viewed "+name+" report")
	}
}

// parseReportRange reads from/to query dates; defaults to the last 30 days
func parseReportRange(c *gin.Context) (time.Time, time.Time, bool) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30)
	to := now

	if raw := c.Query("from"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "invalid from date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if raw := c.Query("to"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "invalid to date, expected YYYY-MM-DD")
			return time.Time{}, time.Time{}, false
		}
		// End of day so the named day is included
		to = parsed.AddDate(0, 0, 1)
	}
	if !from.Before(to) {
		response.BadRequest(c, "from must be before to")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}
