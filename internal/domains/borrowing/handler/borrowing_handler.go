package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/borrowing/model"
	"library-backend/internal/domains/borrowing/service"
	usermodel "library-backend/internal/domains/user/model"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new borrowing handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// RequestBook handles POST /api/v1/requests
func (h *Handler) RequestBook(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.RequestBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		model.HandleBorrowingError(c, err)
		return
	}

	created, err := h.service.RequestBook(c.Request.Context(), userID, req.BookID)
	if err != nil {
		model.HandleBorrowingError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, created)
}

// MyRequests handles GET /api/v1/requests/my
func (h *Handler) MyRequests(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	requests, err := h.service.MyRequests(c.Request.Context(), userID)
	if err != nil {
		model.HandleBorrowingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, requests)
}

// ListRequests handles GET /api/v1/requests?status=pending&page=1&limit=20
func (h *Handler) ListRequests(c *gin.Context) {
	q := model.ListRequestsQuery{
		Status: c.Query("status"),
		Page:   queryInt(c, "page", 1),
		Limit:  queryInt(c, "limit", 20),
	}

	requests, total, err := h.service.ListRequests(c.Request.Context(), q)
	if err != nil {
		model.HandleBorrowingError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, requests, &response.Meta{
		Page:  q.Page,
		Limit: q.Limit,
		Total: total,
	})
}

// ApproveRequest handles POST /api/v1/requests/:id/approve
func (h *Handler) ApproveRequest(c *gin.Context) {
	h.decideRequest(c, true)
}

// RejectRequest handles POST /api/v1/requests/:id/reject
func (h *Handler) RejectRequest(c *gin.Context) {
	h.decideRequest(c, false)
}

func (h *Handler) decideRequest(c *gin.Context, approve bool) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request ID")
		return
	}

	// Body is optional; an empty decision carries no notes
	var body model.DecideRequestRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			response.BadRequest(c, "invalid request payload")
			return
		}
		if err := body.Validate(); err != nil {
			model.HandleBorrowingError(c, err)
			return
		}
	}

	var decided *model.BookRequest
	if approve {
		decided, err = h.service.ApproveRequest(c.Request.Context(), actorID, requestID, body.Notes)
	} else {
		decided, err = h.service.RejectRequest(c.Request.Context(), actorID, requestID, body.Notes)
	}
	if err != nil {
		model.HandleBorrowingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, decided)
}

// BorrowApproved handles POST /api/v1/requests/:id/borrow
func (h *Handler) BorrowApproved(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid request ID")
		return
	}

	loan, err := h.service.BorrowApproved(c.Request.Context(), userID, requestID)
	if err != nil {
		model.HandleBorrowingError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, loan)
}

// BorrowDirect handles POST /api/v1/loans
func (h *Handler) BorrowDirect(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.BorrowDirectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		model.HandleBorrowingError(c, err)
		return
	}

	loan, err := h.service.BorrowDirect(c.Request.Context(), actorID, req.UserID, req.BookID)
	if err != nil {
		model.HandleBorrowingError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, loan)
}

// ReturnLoan handles POST /api/v1/loans/:id/return
func (h *Handler) ReturnLoan(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid loan ID")
		return
	}

	role, _ := middleware.GetUserRole(c)
	returnAny := role.Can(usermodel.PermReturnAny)

	loan, err := h.service.ReturnLoan(c.Request.Context(), actorID, loanID, returnAny)
	if err != nil {
		model.HandleBorrowingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, loan)
}

// RenewLoan handles POST /api/v1/loans/:id/renew
func (h *Handler) RenewLoan(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid loan ID")
		return
	}

	loan, err := h.service.RenewLoan(c.Request.Context(), actorID, loanID)
	if err != nil {
		model.HandleBorrowingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, loan)
}

// MyLoans handles GET /api/v1/loans/my
func (h *Handler) MyLoans(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	loans, err := h.service.MyLoans(c.Request.Context(), userID)
	if err != nil {
		model.HandleBorrowingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, loans)
}

// ActiveLoans handles GET /api/v1/loans/active
func (h *Handler) ActiveLoans(c *gin.Context) {
	loans, err := h.service.ActiveLoans(c.Request.Context())
	if err != nil {
		model.HandleBorrowingError(c, err)
		return
	}
	response.Success(c, http.StatusOK, loans)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
