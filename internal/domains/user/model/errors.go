package model

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"library-backend/internal/shared/response"
	"library-backend/pkg/logger"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is deactivated")
	ErrInvalidRole        = errors.New("invalid role")
)

var userErrorMap = map[error]struct {
	Status  int
	Code    string
	Message string
}{
	ErrUserNotFound: {
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "The specified user does not exist",
	},
	ErrEmailAlreadyExists: {
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "This email is already registered",
	},
	ErrInvalidCredentials: {
		Status:  http.StatusUnauthorized,
		Code:    "AUTHENTICATION_REQUIRED",
		Message: "Invalid email or password",
	},
	ErrUserInactive: {
		Status:  http.StatusForbidden,
		Code:    "PERMISSION_DENIED",
		Message: "This account has been deactivated",
	},
	ErrInvalidRole: {
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: "Role must be reader, librarian or admin",
	},
}

// HandleUserError writes the mapped HTTP response for a domain error.
// Returns true when err was non-nil and a response has been written.
func HandleUserError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", verrs)
		return true
	}

	for sentinel, config := range userErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, config.Status, config.Code, config.Message)
			return true
		}
	}

	logger.Error("unhandled user error", err)
	response.InternalServerError(c, "Internal server error")
	return true
}
