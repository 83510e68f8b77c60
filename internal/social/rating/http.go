// Copyright (c) 2026 GenrA. All rights reserved.

package rating

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/genra-app/genra/internal/platform/middleware"
	requestutil "github.com/genra-app/genra/internal/platform/request"
	"github.com/genra-app/genra/internal/platform/respond"
	"github.com/genra-app/genra/internal/platform/validate"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Group(func(user chi.Router) {
		user.Use(middleware.RequireAuth)
		user.Get("/books/{id}/rating", handler.getRating)
		user.Put("/books/{id}/rating", handler.putRating)
		user.Delete("/books/{id}/rating", handler.deleteRating)
	})
}

func (handler *Handler) getRating(writer http.ResponseWriter, request *http.Request) {
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

	state, err := handler.service.Get(request.Context(), claims, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}

type rateRequest struct {
	Stars int `json:"stars"`
}

func (handler *Handler) putRating(writer http.ResponseWriter, request *http.Request) {
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

	var input rateRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	state, err := handler.service.Rate(request.Context(), claims, bookID, input.Stars)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}

func (handler *Handler) deleteRating(writer http.ResponseWriter, request *http.Request) {
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

	state, err := handler.service.Clear(request.Context(), claims, bookID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, state)
}
