package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type RequestBookRequest struct {
	BookID uuid.UUID `json:"book_id"`
}

func (r RequestBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.BookID, validation.Required, validation.By(validateUUIDNotNil)),
	)
}

// DecideRequestRequest carries the librarian's optional note on an
// approve or reject decision.
type DecideRequestRequest struct {
	Notes *string `json:"notes"`
}

func (r DecideRequestRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Notes, validation.Length(0, 500)),
	)
}

// BorrowDirectRequest is a librarian handing a copy to a reader at the
// desk, skipping the request step.
type BorrowDirectRequest struct {
	UserID uuid.UUID `json:"user_id"`
	BookID uuid.UUID `json:"book_id"`
}

func (r BorrowDirectRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, validation.By(validateUUIDNotNil)),
		validation.Field(&r.BookID, validation.Required, validation.By(validateUUIDNotNil)),
	)
}

// ListRequestsQuery filters the librarian request queue
type ListRequestsQuery struct {
	Status string
	Page   int
	Limit  int
}

func (q ListRequestsQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Status, validation.In("", RequestStatusPending, RequestStatusApproved, RequestStatusRejected)),
		validation.Field(&q.Page, validation.Min(0)),
		validation.Field(&q.Limit, validation.Min(0), validation.Max(100)),
	)
}

func validateUUIDNotNil(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}
