// Copyright (c) 2026 GenrA. All rights reserved.

package library

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/genra-app/genra/internal/platform/middleware"
	requestutil "github.com/genra-app/genra/internal/platform/request"
	"github.com/genra-app/genra/internal/platform/respond"
	"github.com/genra-app/genra/internal/platform/validate"
	"github.com/genra-app/genra/pkg/pagination"
)

// Handler implements the HTTP layer for the reader's library.
type Handler struct {
	service *Service
}

// NewHandler constructs a new library [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches /me/library and /me/progress. All routes require a session.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(user chi.Router) {
		user.Use(middleware.RequireAuth)

		user.Get("/me/library", handler.listBookmarks)
		user.Get("/me/library/{bookID}", handler.getBookmark)
		user.Put("/me/library/{bookID}", handler.addBookmark)
		user.Delete("/me/library/{bookID}", handler.removeBookmark)

		user.Get("/me/progress", handler.recentProgress)
		user.Get("/me/progress/{bookID}", handler.getProgress)
		user.Put("/me/progress/{bookID}", handler.saveProgress)
	})
}

type bookmarkResponse struct {
	Bookmarked bool `json:"bookmarked"`
}

// # Bookmarks

// GET /api/v1/me/library
func (handler *Handler) listBookmarks(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	paginationParams := pagination.FromRequest(request)
	bookmarks, total, err := handler.service.ListBookmarks(request.Context(), userID, paginationParams.Limit, paginationParams.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Paginated(writer, bookmarks, pagination.NewMeta(paginationParams.Page, paginationParams.Limit, total))
}

// GET /api/v1/me/library/{bookID}
func (handler *Handler) getBookmark(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	bookID, err := requestutil.ID(request, "bookID", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	bookmarked, err := handler.service.IsBookmarked(request.Context(), userID, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, bookmarkResponse{Bookmarked: bookmarked})
}

// PUT /api/v1/me/library/{bookID}
func (handler *Handler) addBookmark(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	bookID, err := requestutil.ID(request, "bookID", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.AddBookmark(request.Context(), claims, bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, bookmarkResponse{Bookmarked: true})
}

// DELETE /api/v1/me/library/{bookID}
func (handler *Handler) removeBookmark(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	bookID, err := requestutil.ID(request, "bookID", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.RemoveBookmark(request.Context(), userID, bookID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, bookmarkResponse{Bookmarked: false})
}

// # Progress

type saveProgressRequest struct {
	ChapterID string    `json:"chapter_id"`
	VisitedAt time.Time `json:"visited_at"`
}

/*
PUT /api/v1/me/progress/{bookID}.

Request:
  - body: {"chapter_id": "...", "visited_at": "2026-01-02T15:04:05.123Z"}

Response:
  - 200: SaveResult: applied=false when a newer visit is already stored
  - 404: Chapter does not belong to the book
*/
func (handler *Handler) saveProgress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	bookID, err := requestutil.ID(request, "bookID", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input saveProgressRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	result, err := handler.service.SaveProgress(request.Context(), userID, bookID, input.ChapterID, input.VisitedAt)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, result)
}

// GET /api/v1/me/progress/{bookID}
func (handler *Handler) getProgress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	bookID, err := requestutil.ID(request, "bookID", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	progress, err := handler.service.GetProgress(request.Context(), userID, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, progress)
}

// GET /api/v1/me/progress?limit=
func (handler *Handler) recentProgress(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	progress, err := handler.service.RecentProgress(request.Context(), userID, requestutil.QueryInt(request, "limit", DefaultRecentLimit))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, progress)
}
