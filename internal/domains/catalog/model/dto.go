package model

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

type CreateAuthorRequest struct {
	Name      string  `json:"name"`
	Bio       *string `json:"bio"`
	BirthDate *string `json:"birth_date"` // YYYY-MM-DD
	DeathDate *string `json:"death_date"`
}

func (r CreateAuthorRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
	)
}

type CreateGenreRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (r CreateGenreRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 100)),
	)
}

// CreateBookRequest intentionally has no available_copies field: new books
// always start with every copy available, whatever the caller sends.
type CreateBookRequest struct {
	Title         string     `json:"title"`
	AuthorID      uuid.UUID  `json:"author_id"`
	GenreID       *uuid.UUID `json:"genre_id"`
	ISBN          string     `json:"isbn"`
	Description   *string    `json:"description"`
	TotalCopies   int        `json:"total_copies"`
	PublishedYear *int       `json:"published_year"`
	Publisher     *string    `json:"publisher"`
}

func (r CreateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.AuthorID, validation.Required, validation.By(validateUUIDNotNil)),
		validation.Field(&r.ISBN, validation.Length(10, 13)),
		validation.Field(&r.TotalCopies, validation.Min(0)),
		validation.Field(&r.PublishedYear, validation.Min(1000), validation.Max(3000)),
	)
}

type UpdateBookRequest struct {
	Title         string     `json:"title"`
	AuthorID      uuid.UUID  `json:"author_id"`
	GenreID       *uuid.UUID `json:"genre_id"`
	ISBN          string     `json:"isbn"`
	Description   *string    `json:"description"`
	TotalCopies   int        `json:"total_copies"`
	PublishedYear *int       `json:"published_year"`
	Publisher     *string    `json:"publisher"`
}

func (r UpdateBookRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.AuthorID, validation.Required, validation.By(validateUUIDNotNil)),
		validation.Field(&r.ISBN, validation.Length(10, 13)),
		validation.Field(&r.TotalCopies, validation.Min(0)),
		validation.Field(&r.PublishedYear, validation.Min(1000), validation.Max(3000)),
	)
}

func validateUUIDNotNil(value interface{}) error {
	id, _ := value.(uuid.UUID)
	if id == uuid.Nil {
		return validation.NewError("validation_required", "cannot be blank")
	}
	return nil
}

// SearchBooksQuery holds the catalog search filters
type SearchBooksQuery struct {
	Query        string
	GenreID      *uuid.UUID
	Availability string // "", "available", "unavailable"
	Page         int
	Limit        int
}

func (q SearchBooksQuery) Validate() error {
	return validation.ValidateStruct(&q,
		validation.Field(&q.Availability, validation.In("", AvailabilityAvailable, AvailabilityUnavailable)),
		validation.Field(&q.Page, validation.Min(0)),
		validation.Field(&q.Limit, validation.Min(0), validation.Max(100)),
	)
}
