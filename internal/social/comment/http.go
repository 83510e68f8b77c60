// Copyright (c) 2026 GenrA. All rights reserved.

package comment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/genra-app/genra/internal/platform/middleware"
	requestutil "github.com/genra-app/genra/internal/platform/request"
	"github.com/genra-app/genra/internal/platform/respond"
	"github.com/genra-app/genra/internal/platform/validate"
)

// Handler implements the HTTP layer for comments.
type Handler struct {
	service *Service
}

// NewHandler constructs a new comment [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches the discussion endpoints. Reading is public.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/books/{id}/comments", handler.listComments)

	api.Group(func(user chi.Router) {
		user.Use(middleware.RequireAuth)
		user.Post("/books/{id}/comments", handler.postComment)
		user.Delete("/comments/{id}", handler.deleteComment)
		user.Put("/comments/{id}/vote", handler.voteComment)
	})
}

// GET /api/v1/books/{id}/comments
func (handler *Handler) listComments(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comments, err := handler.service.List(request.Context(), requestutil.Claims(request), bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, comments)
}

type postCommentRequest struct {
	Text     string  `json:"text"`
	ParentID *string `json:"parent_id"`
}

/*
POST /api/v1/books/{id}/comments.

Response:
  - 201: Comment
  - 400: Empty or oversized text, or a parent from another book
*/
func (handler *Handler) postComment(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	bookID, err := requestutil.ID(request, "id", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input postCommentRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	comment, err := handler.service.Post(request.Context(), claims, bookID, input.Text, input.ParentID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, comment)
}

// DELETE /api/v1/comments/{id}
func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	commentID, err := requestutil.ID(request, "id", "Comment")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.Delete(request.Context(), claims, commentID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

type voteRequest struct {
	Vote string `json:"vote"`
}

/*
PUT /api/v1/comments/{id}/vote.

Request:
  - body: {"vote": "like" | "dislike" | "none"}

Response:
  - 200: []Vote: The comment's votes after the change
*/
func (handler *Handler) voteComment(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	commentID, err := requestutil.ID(request, "id", "Comment")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input voteRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	votes, err := handler.service.Vote(request.Context(), claims, commentID, input.Vote)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, votes)
}
