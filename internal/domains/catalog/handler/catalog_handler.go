package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"library-backend/internal/domains/catalog/model"
	"library-backend/internal/domains/catalog/service"
	"library-backend/internal/shared/middleware"
	"library-backend/internal/shared/response"
)

type Handler struct {
	service service.ServiceInterface
}

// NewHandler creates a new catalog handler
func NewHandler(service service.ServiceInterface) *Handler {
	return &Handler{service: service}
}

// ========================= AUTHORS =========================

// CreateAuthor handles POST /api/v1/authors
func (h *Handler) CreateAuthor(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	author, err := h.service.CreateAuthor(c.Request.Context(), actorID, req)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, author)
}

// UpdateAuthor handles PUT /api/v1/authors/:id
func (h *Handler) UpdateAuthor(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid author ID")
		return
	}

	var req model.CreateAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	author, err := h.service.UpdateAuthor(c.Request.Context(), actorID, id, req)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, author)
}

// DeleteAuthor handles DELETE /api/v1/authors/:id
func (h *Handler) DeleteAuthor(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid author ID")
		return
	}

	if err := h.service.DeleteAuthor(c.Request.Context(), actorID, id); err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAuthor handles GET /api/v1/authors/:id
func (h *Handler) GetAuthor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid author ID")
		return
	}

	author, err := h.service.GetAuthor(c.Request.Context(), id)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, author)
}

// ListAuthors handles GET /api/v1/authors
func (h *Handler) ListAuthors(c *gin.Context) {
	authors, err := h.service.ListAuthors(c.Request.Context())
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, authors)
}

// ========================= GENRES =========================

// CreateGenre handles POST /api/v1/genres
func (h *Handler) CreateGenre(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	genre, err := h.service.CreateGenre(c.Request.Context(), actorID, req)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, genre)
}

// UpdateGenre handles PUT /api/v1/genres/:id
func (h *Handler) UpdateGenre(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid genre ID")
		return
	}

	var req model.CreateGenreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	genre, err := h.service.UpdateGenre(c.Request.Context(), actorID, id, req)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, genre)
}

// DeleteGenre handles DELETE /api/v1/genres/:id
func (h *Handler) DeleteGenre(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid genre ID")
		return
	}

	if err := h.service.DeleteGenre(c.Request.Context(), actorID, id); err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetGenre handles GET /api/v1/genres/:id
func (h *Handler) GetGenre(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid genre ID")
		return
	}

	genre, err := h.service.GetGenre(c.Request.Context(), id)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, genre)
}

// ListGenres handles GET /api/v1/genres
func (h *Handler) ListGenres(c *gin.Context) {
	genres, err := h.service.ListGenres(c.Request.Context())
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, genres)
}

// ========================= BOOKS =========================

// CreateBook handles POST /api/v1/books
func (h *Handler) CreateBook(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	var req model.CreateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	book, err := h.service.CreateBook(c.Request.Context(), actorID, req)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, book)
}

// UpdateBook handles PUT /api/v1/books/:id
func (h *Handler) UpdateBook(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	var req model.UpdateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request payload")
		return
	}

	book, err := h.service.UpdateBook(c.Request.Context(), actorID, id, req)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// DeleteBook handles DELETE /api/v1/books/:id
func (h *Handler) DeleteBook(c *gin.Context) {
	actorID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	if err := h.service.DeleteBook(c.Request.Context(), actorID, id); err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetBook handles GET /api/v1/books/:id
func (h *Handler) GetBook(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid book ID")
		return
	}

	book, err := h.service.GetBook(c.Request.Context(), id)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.Success(c, http.StatusOK, book)
}

// SearchBooks handles GET /api/v1/books?q=...&genre_id=...&availability=...&page=1&limit=20
func (h *Handler) SearchBooks(c *gin.Context) {
	q := model.SearchBooksQuery{
		Query:        c.Query("q"),
		Availability: c.Query("availability"),
	}
	q.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	q.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))

	if raw := c.Query("genre_id"); raw != "" {
		genreID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid genre ID")
			return
		}
		q.GenreID = &genreID
	}

	books, total, err := h.service.SearchBooks(c.Request.Context(), q)
	if err != nil {
		model.HandleCatalogError(c, err)
		return
	}
	response.SuccessWithMeta(c, http.StatusOK, books, &response.Meta{
		Page:  q.Page,
		Limit: q.Limit,
		Total: total,
	})
}
