package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/user/model"
	"library-backend/internal/domains/user/service"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new user handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// Register handles POST /api/v1/auth/register
func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	result, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, result)
}

// Login handles POST /api/v1/auth/login
func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Refresh handles POST /api/v1/auth/refresh
func (h *Handler) Refresh(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		model.HandleUserError(c, err)
		return
	}

	result, err := h.service.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// Profile handles GET /api/v1/users/me
func (h *Handler) Profile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	user, err := h.service.Profile(c.Request.Context(), userID)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// UpdateProfile handles PUT /api/v1/users/me
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	user, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}

// ChangePassword handles PUT /api/v1/users/me/password
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), userID, req); err != nil {
		model.HandleUserError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListUsers handles GET /api/v1/admin/users?page=1&limit=20
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, total, err := h.service.ListUsers(c.Request.Context(), page, limit)
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, users, &response.Meta{
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// ChangeRole handles PUT /api/v1/admin/users/:id/role
func (h *Handler) ChangeRole(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user ID")
		return
	}

	var req model.ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}
	if err := req.Validate(); err != nil {
		model.HandleUserError(c, err)
		return
	}

	user, err := h.service.ChangeRole(c.Request.Context(), actorID, userID, model.Role(req.Role))
	if err != nil {
		model.HandleUserError(c, err)
		return
	}
	response.Success(c, http.StatusOK, user)
}
