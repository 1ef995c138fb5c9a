package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmodel "library-backend/internal/domains/audit/model"
	"library-backend/internal/domains/catalog/model"
)

// ========================= MOCKS =========================

type mockCatalogRepo struct {
	createBookFn  func(ctx context.Context, book *model.Book) error
	updateBookFn  func(ctx context.Context, book *model.Book) error
	deleteBookFn  func(ctx context.Context, id uuid.UUID) error
	getBookByIDFn func(ctx context.Context, id uuid.UUID) (*model.Book, error)
	searchBooksFn func(ctx context.Context, q model.SearchBooksQuery) ([]model.Book, int, error)
}

func (m *mockCatalogRepo) CreateAuthor(ctx context.Context, author *model.Author) error { return nil }
func (m *mockCatalogRepo) UpdateAuthor(ctx context.Context, author *model.Author) error { return nil }
func (m *mockCatalogRepo) DeleteAuthor(ctx context.Context, id uuid.UUID) error         { return nil }
func (m *mockCatalogRepo) GetAuthorByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	return &model.Author{ID: id, Name: "Existing Author"}, nil
}
func (m *mockCatalogRepo) ListAuthors(ctx context.Context) ([]model.Author, error) { return nil, nil }
func (m *mockCatalogRepo) CreateGenre(ctx context.Context, genre *model.Genre) error {
	return nil
}
func (m *mockCatalogRepo) UpdateGenre(ctx context.Context, genre *model.Genre) error { return nil }
func (m *mockCatalogRepo) DeleteGenre(ctx context.Context, id uuid.UUID) error       { return nil }
func (m *mockCatalogRepo) GetGenreByID(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	return &model.Genre{ID: id, Name: "Existing Genre"}, nil
}
func (m *mockCatalogRepo) ListGenres(ctx context.Context) ([]model.Genre, error) { return nil, nil }
func (m *mockCatalogRepo) CreateBook(ctx context.Context, book *model.Book) error {
	return m.createBookFn(ctx, book)
}
func (m *mockCatalogRepo) UpdateBook(ctx context.Context, book *model.Book) error {
	return m.updateBookFn(ctx, book)
}
func (m *mockCatalogRepo) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return m.deleteBookFn(ctx, id)
}
func (m *mockCatalogRepo) GetBookByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	return m.getBookByIDFn(ctx, id)
}
func (m *mockCatalogRepo) SearchBooks(ctx context.Context, q model.SearchBooksQuery) ([]model.Book, int, error) {
	return m.searchBooksFn(ctx, q)
}

type recordingAudit struct {
	actions []string
}

func (m *recordingAudit) Record(ctx context.Context, userID uuid.UUID, action, description string) {
	m.actions = append(m.actions, action)
}
func (m *recordingAudit) ListLogs(ctx context.Context, action string, userID *uuid.UUID, page, limit int) ([]auditmodel.AuditLog, int, error) {
	return nil, 0, nil
}
func (m *recordingAudit) ActivityReport(ctx context.Context, from, to time.Time) ([]auditmodel.ActivityCount, error) {
	return nil, nil
}
func (m *recordingAudit) TopBooksReport(ctx context.Context, from, to time.Time, limit int) ([]auditmodel.TopBook, error) {
	return nil, nil
}
func (m *recordingAudit) OverdueReport(ctx context.Context) ([]auditmodel.OverdueLoanReport, error) {
	return nil, nil
}

// ========================= BOOK TESTS =========================

func TestCreateBookStartsFullyAvailable(t *testing.T) {
	var created *model.Book
	repo := &mockCatalogRepo{
		createBookFn: func(ctx context.Context, book *model.Book) error {
			created = book
			return nil
		},
	}
	audit := &recordingAudit{}
	svc := NewCatalogService(repo, audit)

	book, err := svc.CreateBook(context.Background(), uuid.New(), model.CreateBookRequest{
		Title:       "Dead Souls",
		AuthorID:    uuid.New(),
		TotalCopies: 5,
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, 5, book.TotalCopies)
	assert.Equal(t, 5, book.AvailableCopies)
	assert.Contains(t, audit.actions, auditmodel.ActionAddBook)
}

func TestCreateBookNormalizesBlankISBN(t *testing.T) {
	repo := &mockCatalogRepo{
		createBookFn: func(ctx context.Context, book *model.Book) error { return nil },
	}
	svc := NewCatalogService(repo, &recordingAudit{})

	book, err := svc.CreateBook(context.Background(), uuid.New(), model.CreateBookRequest{
		Title:    "Untracked Pamphlet",
		AuthorID: uuid.New(),
	})
	require.NoError(t, err)
	assert.Nil(t, book.ISBN)

	book, err = svc.CreateBook(context.Background(), uuid.New(), model.CreateBookRequest{
		Title:    "Catalogued Novel",
		AuthorID: uuid.New(),
		ISBN:     "9780140449075",
	})
	require.NoError(t, err)
	require.NotNil(t, book.ISBN)
	assert.Equal(t, "9780140449075", *book.ISBN)
}

func TestCreateBookRejectsMissingAuthor(t *testing.T) {
	svc := NewCatalogService(&mockCatalogRepo{}, &recordingAudit{})

	_, err := svc.CreateBook(context.Background(), uuid.New(), model.CreateBookRequest{
		Title: "Orphan Manuscript",
	})
	assert.Error(t, err)
}

func TestUpdateBookKeepsAvailabilityToRepository(t *testing.T) {
	bookID := uuid.New()

	var updated *model.Book
	repo := &mockCatalogRepo{
		getBookByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Book, error) {
			return &model.Book{
				ID:              bookID,
				Title:           "Old Title",
				AuthorID:        uuid.New(),
				TotalCopies:     4,
				AvailableCopies: 1,
			}, nil
		},
		updateBookFn: func(ctx context.Context, book *model.Book) error {
			updated = book
			return nil
		},
	}
	audit := &recordingAudit{}
	svc := NewCatalogService(repo, audit)

	book, err := svc.UpdateBook(context.Background(), uuid.New(), bookID, model.UpdateBookRequest{
		Title:       "New Title",
		AuthorID:    uuid.New(),
		TotalCopies: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "New Title", book.Title)
	assert.Equal(t, 2, book.TotalCopies)
	assert.Contains(t, audit.actions, auditmodel.ActionEditBook)
}

func TestUpdateBookUnknownID(t *testing.T) {
	repo := &mockCatalogRepo{
		getBookByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Book, error) {
			return nil, model.ErrBookNotFound
		},
	}
	svc := NewCatalogService(repo, &recordingAudit{})

	_, err := svc.UpdateBook(context.Background(), uuid.New(), uuid.New(), model.UpdateBookRequest{
		Title:    "Whatever",
		AuthorID: uuid.New(),
	})
	assert.ErrorIs(t, err, model.ErrBookNotFound)
}

func TestDeleteBookRecordsAudit(t *testing.T) {
	bookID := uuid.New()

	repo := &mockCatalogRepo{
		getBookByIDFn: func(ctx context.Context, id uuid.UUID) (*model.Book, error) {
			return &model.Book{ID: bookID, Title: "Doomed Volume"}, nil
		},
		deleteBookFn: func(ctx context.Context, id uuid.UUID) error { return nil },
	}
	audit := &recordingAudit{}
	svc := NewCatalogService(repo, audit)

	err := svc.DeleteBook(context.Background(), uuid.New(), bookID)
	require.NoError(t, err)
	assert.Contains(t, audit.actions, auditmodel.ActionDeleteBook)
}

func TestSearchBooksValidatesAvailabilityFilter(t *testing.T) {
	repo := &mockCatalogRepo{
		searchBooksFn: func(ctx context.Context, q model.SearchBooksQuery) ([]model.Book, int, error) {
			return []model.Book{{Title: "Found"}}, 1, nil
		},
	}
	svc := NewCatalogService(repo, &recordingAudit{})

	books, total, err := svc.SearchBooks(context.Background(), model.SearchBooksQuery{
		Availability: model.AvailabilityAvailable,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Len(t, books, 1)

	_, _, err = svc.SearchBooks(context.Background(), model.SearchBooksQuery{
		Availability: "sometimes",
	})
	assert.Error(t, err)
}

// ========================= AUTHOR TESTS =========================

func TestCreateAuthorParsesDates(t *testing.T) {
	svc := NewCatalogService(&mockCatalogRepo{}, &recordingAudit{})

	birth := "1809-03-31"
	death := "1852-03-04"
	author, err := svc.CreateAuthor(context.Background(), uuid.New(), model.CreateAuthorRequest{
		Name:      "Nikolai Gogol",
		BirthDate: &birth,
		DeathDate: &death,
	})
	require.NoError(t, err)
	require.NotNil(t, author.BirthDate)
	require.NotNil(t, author.DeathDate)
	assert.Equal(t, 1809, author.BirthDate.Year())
	assert.Equal(t, time.March, author.DeathDate.Month())
}

func TestCreateAuthorRejectsBadDate(t *testing.T) {
	svc := NewCatalogService(&mockCatalogRepo{}, &recordingAudit{})

	bad := "31-03-1809"
	_, err := svc.CreateAuthor(context.Background(), uuid.New(), model.CreateAuthorRequest{
		Name:      "Nikolai Gogol",
		BirthDate: &bad,
	})
	assert.Error(t, err)
}
