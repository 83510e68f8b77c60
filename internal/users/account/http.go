// Copyright (c) 2026 GenrA. All rights reserved.

package account

import (
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/constants"
	"github.com/genra-app/genra/internal/platform/middleware"
	requestutil "github.com/genra-app/genra/internal/platform/request"
	"github.com/genra-app/genra/internal/platform/respond"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/storage"
	"github.com/genra-app/genra/internal/platform/validate"
)

// Handler implements the HTTP layer for account management.
type Handler struct {
	accountService *Service
}

// NewHandler constructs a new account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// RegisterRoutes attaches account endpoints. They span /me, /users and /admin/users.
func (handler *Handler) RegisterRoutes(api chi.Router) {
	api.Get("/users/{id}", handler.getUserProfile)

	api.Group(func(user chi.Router) {
		user.Use(middleware.RequireAuth)

		user.Get("/me", handler.getMe)
		user.Patch("/me", handler.updateMe)
		user.Delete("/me", handler.deleteMe)
		user.Put("/me/avatar", handler.uploadAvatar)
		user.Get("/users/availability", handler.checkUsername)

		user.Get("/me/interests", handler.getInterests)
		user.Put("/me/interests", handler.setInterests)

		user.Get("/me/preferences", handler.getPreferences)
		user.Put("/me/preferences", handler.updatePreferences)

		user.Get("/me/sessions", handler.listSessions)
		user.Delete("/me/sessions", handler.revokeOtherSessions)
		user.Delete("/me/sessions/{id}", handler.revokeSession)
	})

	api.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireRole(sec.RoleAdmin))
		admin.Put("/admin/users/{id}/ban", handler.banUser)
		admin.Delete("/admin/users/{id}/ban", handler.unbanUser)
	})
}

// # Profile Endpoints

/*
GET /api/v1/me.

Response:
  - 200: Profile: Private profile with interests and needs_onboarding
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) getMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

type updateMeRequest struct {
	FullName *string `json:"full_name"`
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Website  *string `json:"website"`
}

/*
PATCH /api/v1/me.

Request:
  - body: updateMeRequest (partial)

Response:
  - 200: Profile
  - 400: Validation failure
  - 409: Username taken
*/
func (handler *Handler) updateMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input updateMeRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	profile, err := handler.accountService.UpdateProfile(request.Context(), userID, ProfileChanges{
		FullName: input.FullName,
		Username: input.Username,
		Bio:      input.Bio,
		Website:  input.Website,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

// DELETE /api/v1/me
func (handler *Handler) deleteMe(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.DeleteAccount(request.Context(), userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

/*
PUT /api/v1/me/avatar.

Description: Accepts a multipart form with an "avatar" file, or the raw image
as the request body.

Response:
  - 200: Profile with the new avatar_url
  - 400: Empty, oversized or non-image upload
*/
func (handler *Handler) uploadAvatar(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	request.Body = http.MaxBytesReader(writer, request.Body, constants.MaxAvatarBytes+1<<20)

	var data []byte
	mediaType, _, _ := mime.ParseMediaType(request.Header.Get("Content-Type"))
	if strings.HasPrefix(mediaType, "multipart/") {
		file, _, err := request.FormFile(FieldAvatar)
		if err != nil {
			respond.Error(writer, request, validate.RequiredError(FieldAvatar, "An image file is required"))
			return
		}
		defer file.Close()
		data, err = storage.ReadLimited(file)
		if err != nil {
			respond.Error(writer, request, apperr.ValidationError("Could not read the uploaded file"))
			return
		}
	} else {
		data, err = storage.ReadLimited(request.Body)
		if err != nil {
			respond.Error(writer, request, apperr.ValidationError("Could not read the uploaded file"))
			return
		}
	}

	profile, err := handler.accountService.UploadAvatar(request.Context(), userID, data)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

/*
GET /api/v1/users/availability?username=x.

Response:
  - 200: {"available": bool}
  - 400: Username does not follow the rule
*/
func (handler *Handler) checkUsername(writer http.ResponseWriter, request *http.Request) {
	available, err := handler.accountService.CheckUsername(
		request.Context(),
		request.URL.Query().Get(FieldUsername),
		requestutil.OptionalUserID(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, map[string]bool{"available": available})
}

// GET /api/v1/users/{id}
func (handler *Handler) getUserProfile(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.ID(request, "id", "User")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	profile, err := handler.accountService.GetPublicProfile(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, profile)
}

// # Interests

// GET /api/v1/me/interests
func (handler *Handler) getInterests(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	interests, err := handler.accountService.GetInterests(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, interests)
}

type interestsRequest struct {
	Genres     []int `json:"genres"`
	Onboarding bool  `json:"onboarding"`
}

/*
PUT /api/v1/me/interests.

Request:
  - body: {"genres": [1, 2, 3], "onboarding": true}

Response:
  - 200: []Interest
  - 400: Too few genres
  - 422: Unknown genre id
*/
func (handler *Handler) setInterests(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input interestsRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	interests, err := handler.accountService.SetInterests(request.Context(), userID, input.Genres, input.Onboarding)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, interests)
}

// # Preferences

// GET /api/v1/me/preferences
func (handler *Handler) getPreferences(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	prefs, err := handler.accountService.GetPreferences(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, prefs)
}

type preferencesRequest struct {
	FontSize    int     `json:"font_size"`
	Theme       string  `json:"theme"`
	LineSpacing float64 `json:"line_spacing"`
	FontFamily  string  `json:"font_family"`
}

// PUT /api/v1/me/preferences
func (handler *Handler) updatePreferences(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input preferencesRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	prefs, err := handler.accountService.UpdatePreferences(request.Context(), &Preferences{
		UserID:      userID,
		FontSize:    input.FontSize,
		Theme:       input.Theme,
		LineSpacing: input.LineSpacing,
		FontFamily:  input.FontFamily,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, prefs)
}

// # Sessions

// GET /api/v1/me/sessions
func (handler *Handler) listSessions(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessions, err := handler.accountService.ListSessions(request.Context(), claims.UserID, claims.SessionID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, sessions)
}

// DELETE /api/v1/me/sessions/{id}
func (handler *Handler) revokeSession(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID, err := requestutil.ID(request, "id", "Session")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.RevokeSession(request.Context(), userID, sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// DELETE /api/v1/me/sessions
func (handler *Handler) revokeOtherSessions(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.RevokeOtherSessions(request.Context(), claims.UserID, claims.SessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// # Moderation

type banRequest struct {
	Reason string `json:"reason"`
}

/*
PUT /api/v1/admin/users/{id}/ban.

Response:
  - 204: Suspended
  - 403: Not an admin, or self-ban
*/
func (handler *Handler) banUser(writer http.ResponseWriter, request *http.Request) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.ID(request, "id", "User")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input banRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldReason, input.Reason).MaxLen(FieldReason, input.Reason, 500)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Ban(request.Context(), adminID, userID, input.Reason); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}

// DELETE /api/v1/admin/users/{id}/ban
func (handler *Handler) unbanUser(writer http.ResponseWriter, request *http.Request) {
	adminID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	userID, err := requestutil.ID(request, "id", "User")
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Unban(request.Context(), adminID, userID); err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.NoContent(writer)
}
