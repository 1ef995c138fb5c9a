package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Author represents a book author
type Author struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Bio       *string    `json:"bio" db:"bio"`
	BirthDate *time.Time `json:"birth_date" db:"birth_date"`
	DeathDate *time.Time `json:"death_date" db:"death_date"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// Genre represents a book genre
type Genre struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Description *string   `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Book represents a title in the catalog together with its copy counts.
// Invariant: 0 <= AvailableCopies <= TotalCopies. Only the borrowing
// lifecycle mutates AvailableCopies, always inside the same transaction
// as the loan write that justifies it.
type Book struct {
	ID       uuid.UUID  `json:"id" db:"id"`
	Title    string     `json:"title" db:"title"`
	AuthorID uuid.UUID  `json:"author_id" db:"author_id"`
	GenreID  *uuid.UUID `json:"genre_id" db:"genre_id"`
	ISBN     *string    `json:"isbn" db:"isbn"`

	Description     *string `json:"description" db:"description"`
	TotalCopies     int     `json:"total_copies" db:"total_copies"`
	AvailableCopies int     `json:"available_copies" db:"available_copies"`
	PublishedYear   *int    `json:"published_year" db:"published_year"`
	Publisher       *string `json:"publisher" db:"publisher"`

	// Denormalized for list/search responses
	AuthorName string  `json:"author_name,omitempty" db:"author_name"`
	GenreName  *string `json:"genre_name,omitempty" db:"genre_name"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsAvailable reports whether at least one copy can be borrowed
func (b *Book) IsAvailable() bool {
	return b.AvailableCopies > 0
}

// Availability filter values for book search
const (
	AvailabilityAvailable   = "available"
	AvailabilityUnavailable = "unavailable"
)

// NormalizeISBN maps blank/whitespace ISBNs to nil so they never
// participate in uniqueness checks.
func NormalizeISBN(isbn string) *string {
	trimmed := strings.TrimSpace(isbn)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
