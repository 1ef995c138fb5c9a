package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"library-backend/internal/domains/catalog/model"
	"library-backend/pkg/cache"
	"library-backend/pkg/database"
	"library-backend/pkg/logger"
)

const (
	searchCacheTTL     = 5 * time.Minute
	searchCachePattern = "catalog:books:*"
)

// postgresRepository - raw SQL with pgxpool, search results cached in Redis
type postgresRepository struct {
	pool  *pgxpool.Pool
	cache cache.Cache
}

// NewPostgresRepository - Constructor
func NewPostgresRepository(pool *pgxpool.Pool, cache cache.Cache) RepositoryInterface {
	return &postgresRepository{
		pool:  pool,
		cache: cache,
	}
}

// ========================= AUTHORS =========================

func (r *postgresRepository) CreateAuthor(ctx context.Context, author *model.Author) error {
	query := `
		INSERT INTO authors (id, name, bio, birth_date, death_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.pool.Exec(ctx, query,
		author.ID, author.Name, author.Bio, author.BirthDate, author.DeathDate,
		author.CreatedAt, author.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert author: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateAuthor(ctx context.Context, author *model.Author) error {
	query := `
		UPDATE authors
		SET name = $2, bio = $3, birth_date = $4, death_date = $5, updated_at = $6
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query,
		author.ID, author.Name, author.Bio, author.BirthDate, author.DeathDate,
		author.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAuthorNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteAuthor(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // foreign_key_violation
			return model.ErrAuthorHasBooks
		}
		return fmt.Errorf("failed to delete author: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrAuthorNotFound
	}
	r.invalidateSearchCache(ctx)
	return nil
}

func (r *postgresRepository) GetAuthorByID(ctx context.Context, id uuid.UUID) (*model.Author, error) {
	query := `
		SELECT id, name, bio, birth_date, death_date, created_at, updated_at
		FROM authors WHERE id = $1
	`
	var author model.Author
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&author.ID, &author.Name, &author.Bio, &author.BirthDate, &author.DeathDate,
		&author.CreatedAt, &author.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrAuthorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get author: %w", err)
	}
	return &author, nil
}

func (r *postgresRepository) ListAuthors(ctx context.Context) ([]model.Author, error) {
	query := `
		SELECT id, name, bio, birth_date, death_date, created_at, updated_at
		FROM authors ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list authors: %w", err)
	}
	defer rows.Close()

	var authors []model.Author
	for rows.Next() {
		var author model.Author
		if err := rows.Scan(
			&author.ID, &author.Name, &author.Bio, &author.BirthDate, &author.DeathDate,
			&author.CreatedAt, &author.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan author: %w", err)
		}
		authors = append(authors, author)
	}
	return authors, rows.Err()
}

// ========================= GENRES =========================

func (r *postgresRepository) CreateGenre(ctx context.Context, genre *model.Genre) error {
	query := `
		INSERT INTO genres (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.pool.Exec(ctx, query,
		genre.ID, genre.Name, genre.Description, genre.CreatedAt, genre.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert genre: %w", err)
	}
	return nil
}

func (r *postgresRepository) UpdateGenre(ctx context.Context, genre *model.Genre) error {
	query := `
		UPDATE genres SET name = $2, description = $3, updated_at = $4 WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, genre.ID, genre.Name, genre.Description, genre.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update genre: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrGenreNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteGenre(ctx context.Context, id uuid.UUID) error {
	// Books keep a nullable genre ref (ON DELETE SET NULL), so this never cascades
	tag, err := r.pool.Exec(ctx, `DELETE FROM genres WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete genre: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrGenreNotFound
	}
	r.invalidateSearchCache(ctx)
	return nil
}

func (r *postgresRepository) GetGenreByID(ctx context.Context, id uuid.UUID) (*model.Genre, error) {
	query := `SELECT id, name, description, created_at, updated_at FROM genres WHERE id = $1`
	var genre model.Genre
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&genre.ID, &genre.Name, &genre.Description, &genre.CreatedAt, &genre.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrGenreNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}
	return &genre, nil
}

func (r *postgresRepository) ListGenres(ctx context.Context) ([]model.Genre, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, description, created_at, updated_at FROM genres ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	defer rows.Close()

	var genres []model.Genre
	for rows.Next() {
		var genre model.Genre
		if err := rows.Scan(
			&genre.ID, &genre.Name, &genre.Description, &genre.CreatedAt, &genre.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, genre)
	}
	return genres, rows.Err()
}

// ========================= BOOKS =========================

func (r *postgresRepository) CreateBook(ctx context.Context, book *model.Book) error {
	query := `
		INSERT INTO books (
			id, title, author_id, genre_id, isbn, description,
			total_copies, available_copies, published_year, publisher,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.pool.Exec(ctx, query,
		book.ID, book.Title, book.AuthorID, book.GenreID, book.ISBN, book.Description,
		book.TotalCopies, book.AvailableCopies, book.PublishedYear, book.Publisher,
		book.CreatedAt, book.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation on isbn
				return model.ErrISBNAlreadyExists
			}
			if pgErr.Code == "23503" { // foreign_key_violation
				if pgErr.ConstraintName == "books_genre_id_fkey" {
					return model.ErrGenreNotFound
				}
				return model.ErrAuthorNotFound
			}
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}

	r.invalidateSearchCache(ctx)
	return nil
}

// UpdateBook rewrites the book's descriptive fields and total_copies.
// available_copies is recomputed as total minus open loans inside the
// same transaction, with the book row locked so a concurrent borrow
// cannot interleave.
func (r *postgresRepository) UpdateBook(ctx context.Context, book *model.Book) error {
	err := database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var currentTotal int
		err := tx.QueryRow(ctx,
			`SELECT total_copies FROM books WHERE id = $1 FOR UPDATE`,
			book.ID,
		).Scan(&currentTotal)
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrBookNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to lock book: %w", err)
		}

		var openLoans int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM loans WHERE book_id = $1 AND status IN ('active', 'overdue')`,
			book.ID,
		).Scan(&openLoans)
		if err != nil {
			return fmt.Errorf("failed to count open loans: %w", err)
		}

		available := book.TotalCopies - openLoans
		if available < 0 {
			available = 0
		}
		book.AvailableCopies = available

		tag, err := tx.Exec(ctx, `
			UPDATE books
			SET title = $2, author_id = $3, genre_id = $4, isbn = $5, description = $6,
			    total_copies = $7, available_copies = $8, published_year = $9,
			    publisher = $10, updated_at = $11
			WHERE id = $1
		`,
			book.ID, book.Title, book.AuthorID, book.GenreID, book.ISBN, book.Description,
			book.TotalCopies, book.AvailableCopies, book.PublishedYear, book.Publisher,
			book.UpdatedAt,
		)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) {
				if pgErr.Code == "23505" {
					return model.ErrISBNAlreadyExists
				}
				if pgErr.Code == "23503" {
					if pgErr.ConstraintName == "books_genre_id_fkey" {
						return model.ErrGenreNotFound
					}
					return model.ErrAuthorNotFound
				}
			}
			return fmt.Errorf("failed to update book: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrBookNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.invalidateSearchCache(ctx)
	return nil
}

func (r *postgresRepository) DeleteBook(ctx context.Context, id uuid.UUID) error {
	return database.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		var openLoans int
		err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM loans WHERE book_id = $1 AND status IN ('active', 'overdue')`,
			id,
		).Scan(&openLoans)
		if err != nil {
			return fmt.Errorf("failed to count open loans: %w", err)
		}
		if openLoans > 0 {
			return model.ErrBookHasActiveLoans
		}

		tag, err := tx.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
		if err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return model.ErrBookNotFound
		}

		r.invalidateSearchCache(ctx)
		return nil
	})
}

func (r *postgresRepository) GetBookByID(ctx context.Context, id uuid.UUID) (*model.Book, error) {
	query := `
		SELECT b.id, b.title, b.author_id, b.genre_id, b.isbn, b.description,
		       b.total_copies, b.available_copies, b.published_year, b.publisher,
		       a.name, g.name, b.created_at, b.updated_at
		FROM books b
		JOIN authors a ON b.author_id = a.id
		LEFT JOIN genres g ON b.genre_id = g.id
		WHERE b.id = $1
	`
	var book model.Book
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&book.ID, &book.Title, &book.AuthorID, &book.GenreID, &book.ISBN, &book.Description,
		&book.TotalCopies, &book.AvailableCopies, &book.PublishedYear, &book.Publisher,
		&book.AuthorName, &book.GenreName, &book.CreatedAt, &book.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrBookNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return &book, nil
}

// SearchBooks - case-insensitive substring match across title/author/genre,
// optional genre and availability filters, ordered by title. Results are
// cached briefly; every catalog write invalidates the whole pattern.
func (r *postgresRepository) SearchBooks(ctx context.Context, q model.SearchBooksQuery) ([]model.Book, int, error) {
	type cachedSearch struct {
		Books []model.Book `json:"books"`
		Total int          `json:"total"`
	}

	cacheKey := fmt.Sprintf("catalog:books:q=%s:g=%v:a=%s:p=%d:l=%d",
		q.Query, q.GenreID, q.Availability, q.Page, q.Limit)

	var cached cachedSearch
	if found, err := r.cache.Get(ctx, cacheKey, &cached); err == nil && found {
		return cached.Books, cached.Total, nil
	}

	whereClause, args := buildSearchWhere(q)

	var total int
	countQuery := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM books b
		JOIN authors a ON b.author_id = a.id
		LEFT JOIN genres g ON b.genre_id = g.id
		%s
	`, whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("search count failed: %w", err)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if q.Page > 1 {
		offset = (q.Page - 1) * limit
	}

	query := fmt.Sprintf(`
		SELECT b.id, b.title, b.author_id, b.genre_id, b.isbn, b.description,
		       b.total_copies, b.available_copies, b.published_year, b.publisher,
		       a.name, g.name, b.created_at, b.updated_at
		FROM books b
		JOIN authors a ON b.author_id = a.id
		LEFT JOIN genres g ON b.genre_id = g.id
		%s
		ORDER BY b.title
		LIMIT $%d OFFSET $%d
	`, whereClause, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search query failed: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0, limit)
	for rows.Next() {
		var book model.Book
		if err := rows.Scan(
			&book.ID, &book.Title, &book.AuthorID, &book.GenreID, &book.ISBN, &book.Description,
			&book.TotalCopies, &book.AvailableCopies, &book.PublishedYear, &book.Publisher,
			&book.AuthorName, &book.GenreName, &book.CreatedAt, &book.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("rows error: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, cachedSearch{Books: books, Total: total}, searchCacheTTL); err != nil {
		logger.Error("failed to cache book search", err)
	}

	return books, total, nil
}

func buildSearchWhere(q model.SearchBooksQuery) (string, []interface{}) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argIndex := 1

	if q.Query != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(b.title ILIKE $%d OR a.name ILIKE $%d OR g.name ILIKE $%d)",
			argIndex, argIndex, argIndex))
		args = append(args, "%"+q.Query+"%")
		argIndex++
	}

	if q.GenreID != nil {
		conditions = append(conditions, fmt.Sprintf("b.genre_id = $%d", argIndex))
		args = append(args, *q.GenreID)
		argIndex++
	}

	switch q.Availability {
	case model.AvailabilityAvailable:
		conditions = append(conditions, "b.available_copies > 0")
	case model.AvailabilityUnavailable:
		conditions = append(conditions, "b.available_copies = 0")
	}

	whereClause := "WHERE " + conditions[0]
	for _, cond := range conditions[1:] {
		whereClause += " AND " + cond
	}
	return whereClause, args
}

func (r *postgresRepository) invalidateSearchCache(ctx context.Context) {
	if err := r.cache.DeletePattern(ctx, searchCachePattern); err != nil {
		logger.Error("failed to invalidate book search cache", err)
	}
}
