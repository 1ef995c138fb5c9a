package model

import (
	"errors"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/gin-gonic/gin"

	"library-backend/internal/shared/response"
	"library-backend/pkg/logger"
)

var (
	ErrBookNotFound       = errors.New("book not found")
	ErrAuthorNotFound     = errors.New("author not found")
	ErrGenreNotFound      = errors.New("genre not found")
	ErrISBNAlreadyExists  = errors.New("ISBN already exists")
	ErrNegativeCopies     = errors.New("total_copies must not be negative")
	ErrBookHasActiveLoans = errors.New("book has active loans and cannot be deleted")
	ErrAuthorHasBooks     = errors.New("author still has books in the catalog")
)

var catalogErrorMap = map[error]struct {
	Status  int
	Code    string
	Message string
}{
	ErrBookNotFound: {
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: "The specified book does not exist",
	},
	ErrAuthorNotFound: {
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: "The specified author does not exist",
	},
	ErrGenreNotFound: {
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: "The specified genre does not exist",
	},
	ErrISBNAlreadyExists: {
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "This ISBN is already registered in the catalog",
	},
	ErrNegativeCopies: {
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: "Total copies must not be negative",
	},
	ErrBookHasActiveLoans: {
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "The book has active loans and cannot be deleted",
	},
	ErrAuthorHasBooks: {
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: "The author still has books in the catalog",
	},
}

// HandleCatalogError writes the mapped HTTP response for a domain error.
// Validation errors from ozzo surface field details with a 400.
func HandleCatalogError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request", verrs)
		return true
	}

	for sentinel, config := range catalogErrorMap {
		if errors.Is(err, sentinel) {
			response.ErrorResponse(c, config.Status, config.Code, config.Message)
			return true
		}
	}

	logger.Error("unhandled catalog error", err)
	response.InternalServerError(c, "Internal server error")
	return true
}
