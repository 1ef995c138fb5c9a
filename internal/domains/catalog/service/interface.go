package service

import (
	"context"

	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
)

// ServiceInterface is the catalog business-logic contract
type ServiceInterface interface {
	CreateAuthor(ctx context.Context, actorID uuid.UUID, req model.CreateAuthorRequest) (*model.Author, error)
	UpdateAuthor(ctx context.Context, actorID, id uuid.UUID, req model.CreateAuthorRequest) (*model.Author, error)
	DeleteAuthor(ctx context.Context, actorID, id uuid.UUID) error
	GetAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error)
	ListAuthors(ctx context.Context) ([]model.Author, error)

	CreateGenre(ctx context.Context, actorID uuid.UUID, req model.CreateGenreRequest) (*model.Genre, error)
	UpdateGenre(ctx context.Context, actorID, id uuid.UUID, req model.CreateGenreRequest) (*model.Genre, error)
	DeleteGenre(ctx context.Context, actorID, id uuid.UUID) error
	GetGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error)
	ListGenres(ctx context.Context) ([]model.Genre, error)

	CreateBook(ctx context.Context, actorID uuid.UUID, req model.CreateBookRequest) (*model.Book, error)
	UpdateBook(ctx context.Context, actorID, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error)
	DeleteBook(ctx context.Context, actorID, id uuid.UUID) error
	GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error)
	SearchBooks(ctx context.Context, q model.SearchBooksQuery) ([]model.Book, int, error)
}
