package repository

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
)

// RepositoryInterface is the catalog data access contract
type RepositoryInterface interface {
	// Authors
	CreateAuthor(ctx context.Context, author *model.Author) error
	UpdateAuthor(ctx context.Context, author *model.Author) error
	DeleteAuthor(ctx context.Context, id uuid.UUID) error
	GetAuthorByID(ctx context.Context, id uuid.UUID) (*model.Author, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)

	// Genres
	CreateGenre(ctx context.Context, genre *model.Genre) error
	UpdateGenre(ctx context.Context, genre *model.Genre) error
	DeleteGenre(ctx context.Context, id uuid.UUID) error
	GetGenreByID(ctx context.Context, id uuid.UUID) (*model.Genre, error)
	ListGenres(ctx context.Context) ([]model.Genre, error)

	// Books
	CreateBook(ctx context.Context, book *model.Book) error
	UpdateBook(ctx context.Context, book *model.Book) error
	DeleteBook(ctx context.Context, id uuid.UUID) error
	GetBookByID(ctx context.Context, id uuid.UUID) (*model.Book, error)
	SearchBooks(ctx context.Context, q model.SearchBooksQuery) ([]model.Book, int, error)
}
