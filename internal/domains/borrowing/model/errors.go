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
	ErrRequestNotFound     = errors.New("book request not found")
	ErrLoanNotFound        = errors.New("loan not found")
	ErrDuplicateRequest    = errors.New("an active request for this book already exists")
	ErrDuplicateLoan       = errors.New("an open loan for this book already exists")
	ErrRequestNotPending   = errors.New("request is not pending")
	ErrNoApprovedRequest   = errors.New("no approved unfulfilled request for this book")
	ErrNoCopiesAvailable   = errors.New("no copies available")
	ErrLoanAlreadyReturned = errors.New("loan is already returned")
	ErrLoanOverdue         = errors.New("loan is overdue and cannot be renewed")
	ErrRenewLimitReached   = errors.New("renewal limit reached")
	ErrNotLoanOwner        = errors.New("loan belongs to another user")
)

var borrowingErrorMap = map[error]struct {
	Status  int
	Code    string
	Message string
}{
	ErrRequestNotFound: {
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "The specified request does not exist",
	},
	ErrLoanNotFound: {
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "The specified loan does not exist",
	},
	ErrDuplicateRequest: {
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "You already have an active request for this book",
	},
	ErrDuplicateLoan: {
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "You already have this book on loan",
	},
	ErrRequestNotPending: {
		Status:  http.StatusUnprocessableEntity,
		Code:    "INVALID_STATE",
		Message: "The request has already been decided",
	},
	ErrNoApprovedRequest: {
		Status:  http.StatusUnprocessableEntity,
		Code:    "INVALID_STATE",
		Message: "No approved request to borrow against",
	},
	ErrNoCopiesAvailable: {
		Status:  http.StatusConflict,
		Code:    "NO_COPIES_AVAILABLE",
		Message: "All copies of this book are currently on loan",
	},
	ErrLoanAlreadyReturned: {
		Status:  http.StatusUnprocessableEntity,
		Code:    "INVALID_STATE",
		Message: "The loan has already been returned",
	},
	ErrLoanOverdue: {
		Status:  http.StatusUnprocessableEntity,
		Code:    "INVALID_STATE",
		Message: "An overdue loan cannot be renewed",
	},
	ErrRenewLimitReached: {
		Status:  http.StatusUnprocessableEntity,
		Code:    "INVALID_STATE",
		Message: "The loan has reached its renewal limit",
	},
	ErrNotLoanOwner: {
		Status:  http.StatusForbidden,
		Code:    "PERMISSION_DENIED",
		Message: "You can only manage your own loans",
	},
}

// HandleBorrowingError writes the mapped HTTP response for a domain error
func HandleBorrowingError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", verrs)
		return true
	}

	for sentinel, config := range borrowingErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, config.Status, config.Code, config.Message)
			return true
		}
	}

	logger.Error("unhandled borrowing error", err)
	response.InternalServerError(c, "Internal server error")
	return true
}
