// Copyright (c) 2026 GenrA. All rights reserved.

package chapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/genra-app/genra/internal/platform/middleware"
	requestutil "github.com/genra-app/genra/internal/platform/request"
	"github.com/genra-app/genra/internal/platform/respond"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/validate"
)

// Handler implements the HTTP layer for chapters.
type Handler struct {
	service *Service
}

// NewHandler constructs a new chapter [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes attaches chapter endpoints. Writes require [sec.RoleAuthor].
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/books/{id}/chapters", handler.listChapters)
	api.Get("/chapters/{id}", handler.getChapter)

	api.Group(func(author chi.Router) {
		author.Use(middleware.RequireRole(sec.RoleAuthor))
		author.Post("/books/{id}/chapters", handler.createChapter)
		author.Patch("/chapters/{id}", handler.updateChapter)
		author.Delete("/chapters/{id}", handler.deleteChapter)
	})
}

// GET /api/v1/books/{id}/chapters
func (handler *Handler) listChapters(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapters, err := handler.service.ListChapters(request.Context(), bookID, requestutil.Claims(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapters)
}

/*
GET /api/v1/chapters/{id}.

Response:
  - 200: Chapter: Content is omitted for locked chapters the caller does not own
  - 404: Chapter or its book not visible
*/
func (handler *Handler) getChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID, err := requestutil.ID(request, "id", "Chapter")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	chapter, err := handler.service.GetChapter(request.Context(), chapterID, requestutil.Claims(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

type createChapterRequest struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	SequenceNumber int    `json:"sequence_number"`
	Locked         bool   `json:"locked"`
}

/*
POST /api/v1/books/{id}/chapters.

Response:
  - 201: Chapter
  - 403: Caller does not own the book
  - 409: Sequence number already used
*/
func (handler *Handler) createChapter(writer http.ResponseWriter, request *http.Request) {
	bookID, err := requestutil.ID(request, "id", "Book")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input createChapterRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	chapter, err := handler.service.CreateChapter(request.Context(), requestutil.Claims(request), bookID, Draft{
		Title:          input.Title,
		Content:        input.Content,
		SequenceNumber: input.SequenceNumber,
		IsLocked:       input.Locked,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.Created(writer, chapter)
}

type updateChapterRequest struct {
	Title          *string `json:"title"`
	Content        *string `json:"content"`
	SequenceNumber *int    `json:"sequence_number"`
	Locked         *bool   `json:"locked"`
}

// PATCH /api/v1/chapters/{id}
func (handler *Handler) updateChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID, err := requestutil.ID(request, "id", "Chapter")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateChapterRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	chapter, err := handler.service.UpdateChapter(request.Context(), requestutil.Claims(request), chapterID, Changes{
		Title:          input.Title,
		Content:        input.Content,
		SequenceNumber: input.SequenceNumber,
		IsLocked:       input.Locked,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, chapter)
}

// DELETE /api/v1/chapters/{id}
func (handler *Handler) deleteChapter(writer http.ResponseWriter, request *http.Request) {
	chapterID, err := requestutil.ID(request, "id", "Chapter")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.service.DeleteChapter(request.Context(), requestutil.Claims(request), chapterID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
