// Copyright (c) 2026 GenrA. All rights reserved.

package book

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/genra-app/genra/internal/platform/middleware"
	requestutil "github.com/genra-app/genra/internal/platform/request"
	"github.com/genra-app/genra/internal/platform/respond"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/validate"
	"github.com/genra-app/genra/pkg/pagination"
)

// # Handler Implementation

// Handler implements the HTTP layer for book discovery and authoring.
type Handler struct {
	service *Service
}

// NewHandler constructs a new book [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the book endpoints.
//
//   - Discovery (public): list, detail and view counting.
//   - Feed: requires a signed-in reader.
//   - Authoring: requires [sec.RoleAuthor]; review requires [sec.RoleAdmin].
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/books", handler.listBooks)
	api.Get("/books/{id}", handler.getBook)
	api.Post("/books/{id}/views", handler.recordView)

	api.With(middleware.RequireAuth).Get("/books/feed", handler.feed)

	api.Group(func(author chi.Router) {
		author.Use(middleware.RequireRole(sec.RoleAuthor))
		author.Post("/books", handler.createBook)
		author.Patch("/books/{id}", handler.updateBook)
		author.Post("/books/{id}/submit", handler.submitBook)
		author.Get("/me/books", handler.listMyBooks)
	})

	api.With(middleware.RequireRole(sec.RoleAdmin)).Post("/admin/books/{id}/review", handler.reviewBook)
}

// # Discovery

/*
GET /api/v1/books.

Request:
  - q: string (full-text search with title fallback)
  - genre: string (genre slug)
  - sort: string (rating, views, newest)
  - page, limit: int

Response:
  - 200: []Book: Paginated approved books
  - 400: Unknown sort
*/
func (handler *Handler) listBooks(writer http.ResponseWriter, request *http.Request) {
	paginationParams := pagination.FromRequest(request)
	queryParams := request.URL.Query()

	filter := Filter{
		Query: queryParams.Get("q"),
		Genre: queryParams.Get("genre"),
		Sort:  queryParams.Get("sort"),
	}

	books, total, err := handler.service.List(request.Context(), filter, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

/*
GET /api/v1/books/feed.

Description: Books in the reader's genres, or the top-rated books when the
reader has not picked any.
*/
func (handler *Handler) feed(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	books, total, err := handler.service.Feed(request.Context(), userID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// GET /api/v1/books/{id}
func (handler *Handler) getBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Get(request.Context(), bookID, requestutil.Claims(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

/*
POST /api/v1/books/{id}/views.

Response:
  - 202: {"views_count": n}
  - 404: Book not found or not approved
*/
func (handler *Handler) recordView(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	views, err := handler.service.RecordView(request.Context(), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Accepted(writer, map[string]int64{"views_count": views})
}

// # Authoring

type createBookRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url"`
	Price       int    `json:"price"`
	Genres      []int  `json:"genres"`
}

/*
POST /api/v1/books.

Response:
  - 201: Book: The new draft
  - 400: Validation failure
  - 422: Unknown genre
*/
func (handler *Handler) createBook(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createBookRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	book, err := handler.service.Create(request.Context(), userID, Draft{
		Title:       input.Title,
		Description: input.Description,
		CoverURL:    input.CoverURL,
		Price:       input.Price,
		GenreIDs:    input.Genres,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, book)
}

type updateBookRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	CoverURL    *string `json:"cover_url"`
	Price       *int    `json:"price"`
	Genres      []int   `json:"genres"`
}

// PATCH /api/v1/books/{id}
func (handler *Handler) updateBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateBookRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	book, err := handler.service.Update(request.Context(), requestutil.Claims(request), bookID, Changes{
		Title:       input.Title,
		Description: input.Description,
		CoverURL:    input.CoverURL,
		Price:       input.Price,
		GenreIDs:    input.Genres,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

// POST /api/v1/books/{id}/submit
func (handler *Handler) submitBook(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	book, err := handler.service.Submit(request.Context(), requestutil.Claims(request), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}

// GET /api/v1/me/books
func (handler *Handler) listMyBooks(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	books, total, err := handler.service.ListByAuthor(request.Context(), userID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, books, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

type reviewRequest struct {
	Approve *bool `json:"approve"`
}

/*
POST /api/v1/admin/books/{id}/review.

Request:
  - body: {"approve": true}

Response:
  - 200: Book with its new status
  - 409: Book is not pending review
*/
func (handler *Handler) reviewBook(writer http.ResponseWriter, request *http.Request) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookID, err := requestutil.ID(request, "id", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input reviewRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	if input.Approve == nil {
		respond.Error(writer, request, validate.RequiredError(FieldApprove, "approve is required"))
		return
	}

	book, err := handler.service.Review(request.Context(), adminID, bookID, *input.Approve)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, book)
}
