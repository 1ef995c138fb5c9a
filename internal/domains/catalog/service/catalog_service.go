package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	auditmodel "library-backend/internal/domains/audit/model"
	audit "library-backend/internal/domains/audit/service"
	"library-backend/internal/domains/catalog/model"
	"library-backend/internal/domains/catalog/repository"
)

type catalogService struct {
	repo  repository.RepositoryInterface
	audit audit.ServiceInterface
}

// NewCatalogService creates the catalog business-logic layer
func NewCatalogService(repo repository.RepositoryInterface, audit audit.ServiceInterface) ServiceInterface {
	return &catalogService{
		repo:  repo,
		audit: audit,
	}
}

// ========================= AUTHORS =========================

func (s *catalogService) CreateAuthor(ctx context.Context, actorID uuid.UUID, req model.CreateAuthorRequest) (*model.Author, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	author := &model.Author{
		ID:        uuid.New(),
		Name:      req.Name,
		Bio:       req.Bio,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var err error
	if author.BirthDate, err = parseDate(req.BirthDate); err != nil {
		return nil, err
	}
	if author.DeathDate, err = parseDate(req.DeathDate); err != nil {
		return nil, err
	}

	if err := s.repo.CreateAuthor(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *catalogService) UpdateAuthor(ctx context.Context, actorID, id uuid.UUID, req model.CreateAuthorRequest) (*model.Author, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	author, err := s.repo.GetAuthorByID(ctx, id)
	if err != nil {
		return nil, err
	}

	author.Name = req.Name
	author.Bio = req.Bio
	if author.BirthDate, err = parseDate(req.BirthDate); err != nil {
		return nil, err
	}
	if author.DeathDate, err = parseDate(req.DeathDate); err != nil {
		return nil, err
	}
	author.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateAuthor(ctx, author); err != nil {
		return nil, err
	}
	return author, nil
}

func (s *catalogService) DeleteAuthor(ctx context.Context, actorID, id uuid.UUID) error {
	return s.repo.DeleteAuthor(ctx, id)
}

func (s *catalogService) GetAuthor(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	return s.repo.GetAuthorByID(ctx, id)
}

func (s *catalogService) ListAuthors(ctx context.Context) ([]model.Author, error) {
	return s.repo.ListAuthors(ctx)
}

// ========================= GENRES =========================

func (s *catalogService) CreateGenre(ctx context.Context, actorID uuid.UUID, req model.CreateGenreRequest) (*model.Genre, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	genre := &model.Genre{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.CreateGenre(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *catalogService) UpdateGenre(ctx context.Context, actorID, id uuid.UUID, req model.CreateGenreRequest) (*model.Genre, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	genre, err := s.repo.GetGenreByID(ctx, id)
	if err != nil {
		return nil, err
	}

	genre.Name = req.Name
	genre.Description = req.Description
	genre.UpdatedAt = time.Now().UTC()

	if err := s.repo.UpdateGenre(ctx, genre); err != nil {
		return nil, err
	}
	return genre, nil
}

func (s *catalogService) DeleteGenre(ctx context.Context, actorID, id uuid.UUID) error {
	return s.repo.DeleteGenre(ctx, id)
}

func (s *catalogService) GetGenre(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	return s.repo.GetGenreByID(ctx, id)
}

func (s *catalogService) ListGenres(ctx context.Context) ([]model.Genre, error) {
	return s.repo.ListGenres(ctx)
}

// ========================= BOOKS =========================

func (s *catalogService) CreateBook(ctx context.Context, actorID uuid.UUID, req model.CreateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.TotalCopies < 0 {
		return nil, model.ErrNegativeCopies
	}

	now := time.Now().UTC()
	book := &model.Book{
		ID:       uuid.New(),
		Title:    req.Title,
		AuthorID: req.AuthorID,
		GenreID:  req.GenreID,
		ISBN:     model.NormalizeISBN(req.ISBN),

		Description: req.Description,
		TotalCopies: req.TotalCopies,
		// New books always start fully available; any caller-supplied
		// available count is ignored.
		AvailableCopies: req.TotalCopies,
		PublishedYear:   req.PublishedYear,
		Publisher:       req.Publisher,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.CreateBook(ctx, book); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, auditmodel.ActionAddBook,
		fmt.Sprintf("added book %q (%s)", book.Title, book.ID))

	return book, nil
}

func (s *catalogService) UpdateBook(ctx context.Context, actorID, id uuid.UUID, req model.UpdateBookRequest) (*model.Book, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.TotalCopies < 0 {
		return nil, model.ErrNegativeCopies
	}

	book, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		return nil, err
	}

	book.Title = req.Title
	book.AuthorID = req.AuthorID
	book.GenreID = req.GenreID
	book.ISBN = model.NormalizeISBN(req.ISBN)
	book.Description = req.Description
	book.TotalCopies = req.TotalCopies
	book.PublishedYear = req.PublishedYear
	book.Publisher = req.Publisher
	book.UpdatedAt = time.Now().UTC()

	// The repository recomputes available_copies from open loans while
	// holding the row lock, so a shrinking total cannot go negative.
	if err := s.repo.UpdateBook(ctx, book); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, actorID, auditmodel.ActionEditBook,
		fmt.Sprintf("edited book %q (%s)", book.Title, book.ID))

	return book, nil
}

func (s *catalogService) DeleteBook(ctx context.Context, actorID, id uuid.UUID) error {
	book, err := s.repo.GetBookByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteBook(ctx, id); err != nil {
		return err
	}

	s.audit.Record(ctx, actorID, auditmodel.ActionDeleteBook,
		fmt.Sprintf("deleted book %q (%s)", book.Title, book.ID))

	return nil
}

func (s *catalogService) GetBook(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return s.repo.GetBookByID(ctx, id)
}

func (s *catalogService) SearchBooks(ctx context.Context, q model.SearchBooksQuery) ([]model.Book, int, error) {
	if err := q.Validate(); err != nil {
		return nil, 0, err
	}
	return s.repo.SearchBooks(ctx, q)
}

func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *value)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", *value, err)
	}
	return &t, nil
}
