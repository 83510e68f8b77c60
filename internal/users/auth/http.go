// Copyright (c) 2026 GenrA. All rights reserved.

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/constants"
	"github.com/genra-app/genra/internal/platform/middleware"
	requestutil "github.com/genra-app/genra/internal/platform/request"
	"github.com/genra-app/genra/internal/platform/respond"
	"github.com/genra-app/genra/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] with the authentication endpoints.
//
// # Endpoints
//   - POST /register, /login, /refresh, /logout
//   - GET  /session (auth), PUT /password (auth)
//   - POST /password/otp, /password/reset
//   - GET  /oauth/{provider}/authorize, /oauth/{provider}/callback
//   - POST /oauth/exchange
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Post("/logout", handler.logout)
	router.Post("/password/otp", handler.requestOTP)
	router.Post("/password/reset", handler.resetPassword)

	router.Get("/oauth/{provider}/authorize", handler.oauthAuthorize)
	router.Get("/oauth/{provider}/callback", handler.oauthCallback)
	router.Post("/oauth/exchange", handler.oauthExchange)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/session", handler.session)
		r.Put("/password", handler.changePassword)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type otpRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	OTP         string `json:"otp"`
	NewPassword string `json:"new_password"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

type exchangeRequest struct {
	Code string `json:"code"`
}

/*
Register handles the creation of a new account.

POST /api/v1/auth/register

Request:
  - Body: registerRequest (Email, Password, FullName)

Response:
  - 201: LoginSession: Tokens plus the created user
  - 400: ErrInvalidJSON or validation failure
  - 409: ErrConflict: Email already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldFullName, input.FullName).
		MaxLen(FieldFullName, input.FullName, 100).
		Password(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Register(request.Context(), RegisterInput{
		Email:    input.Email,
		Password: input.Password,
		FullName: input.FullName,
		Client:   clientInfo(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session)
	respond.Created(writer, session)
}

/*
Login authenticates by email or username.

POST /api/v1/auth/login

Response:
  - 200: LoginSession
  - 401: ErrUnauthorized: Invalid credentials
  - 403: ACCOUNT_SUSPENDED
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldLogin, input.Login).Required(FieldPassword, input.Password)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	session, err := handler.authService.Login(request.Context(), LoginInput{
		Login:    input.Login,
		Password: input.Password,
		Client:   clientInfo(request),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session)
	respond.OK(writer, session)
}

/*
Refresh rotates a refresh token taken from the body or the cookie.

POST /api/v1/auth/refresh

Response:
  - 200: LoginSession
  - 401: ErrUnauthorized: Missing or invalid refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	token := refreshTokenFrom(writer, request)
	if token == "" {
		respond.Error(writer, request, apperr.Unauthorized("Missing refresh token"))
		return
	}

	session, err := handler.authService.RefreshSession(request.Context(), token, clientInfo(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session)
	respond.OK(writer, session)
}

/*
Logout revokes the presented refresh token and clears the cookie.

POST /api/v1/auth/logout

Response:
  - 204: No Content
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	if token := refreshTokenFrom(writer, request); token != "" {
		_ = handler.authService.Logout(request.Context(), token)
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    "",
		Path:     constants.RefreshTokenCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

// GET /api/v1/auth/session
func (handler *Handler) session(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.CurrentUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	respond.OK(writer, user)
}

/*
ChangePassword updates the authenticated user's password.

PUT /api/v1/auth/password

Response:
  - 200: Success message
  - 401: Current password mismatch
*/
func (handler *Handler) changePassword(writer http.ResponseWriter, request *http.Request) {
	claims, err := requestutil.RequiredClaims(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	var input changePasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldCurrentPassword, input.CurrentPassword).
		Password(FieldNewPassword, input.NewPassword)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err = handler.authService.ChangePassword(request.Context(), claims.UserID, claims.SessionID, input.CurrentPassword, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Password changed successfully"})
}

/*
RequestOTP emails a password reset code.

POST /api/v1/auth/password/otp

Response:
  - 202: Always, whether or not the address is registered
*/
func (handler *Handler) requestOTP(writer http.ResponseWriter, request *http.Request) {
	var input otpRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.RequestPasswordOTP(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Accepted(writer, map[string]string{
		FieldMessage: "If this email is registered, a code has been sent.",
	})
}

// POST /api/v1/auth/password/reset
func (handler *Handler) resetPassword(writer http.ResponseWriter, request *http.Request) {
	var input resetPasswordRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldOTP, input.OTP).
		Password(FieldNewPassword, input.NewPassword)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.authService.ResetPassword(request.Context(), input.Email, input.OTP, input.NewPassword); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{FieldMessage: "Password updated successfully"})
}

// # OAuth

/*
OAuthAuthorize redirects the browser to the provider consent page.

GET /api/v1/auth/oauth/{provider}/authorize?redirect_to=<app url>&flow=code|implicit

Response:
  - 302: Provider consent page
  - 400: Untrusted redirect target or unknown flow
  - 404: Unknown provider
*/
func (handler *Handler) oauthAuthorize(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	target, err := handler.authService.BeginOAuth(
		request.Context(),
		chi.URLParam(request, "provider"),
		query.Get(FieldRedirectTo),
		query.Get(FieldFlow),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	http.Redirect(writer, request, target, http.StatusFound)
}

// GET /api/v1/auth/oauth/{provider}/callback?code&state
func (handler *Handler) oauthCallback(writer http.ResponseWriter, request *http.Request) {
	query := request.URL.Query()
	target, err := handler.authService.CompleteOAuth(
		request.Context(),
		chi.URLParam(request, "provider"),
		query.Get("code"),
		query.Get("state"),
		clientInfo(request),
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	http.Redirect(writer, request, target, http.StatusFound)
}

// POST /api/v1/auth/oauth/exchange
func (handler *Handler) oauthExchange(writer http.ResponseWriter, request *http.Request) {
	var input exchangeRequest
	if err := requestutil.DecodeJSON(writer, request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}
	if input.Code == "" {
		respond.Error(writer, request, validate.RequiredError(FieldCode, "is required"))
		return
	}

	session, err := handler.authService.ExchangeCode(request.Context(), input.Code, clientInfo(request))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setRefreshCookie(writer, session)
	respond.OK(writer, session)
}

// # Helpers

func setRefreshCookie(writer http.ResponseWriter, session *LoginSession) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.RefreshTokenCookieName,
		Value:    session.RefreshToken,
		Path:     constants.RefreshTokenCookiePath,
		Expires:  session.RefreshTokenExpiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// refreshTokenFrom prefers a JSON body token and falls back to the cookie.
func refreshTokenFrom(writer http.ResponseWriter, request *http.Request) string {
	if request.ContentLength != 0 {
		var input refreshRequest
		if err := requestutil.DecodeJSON(writer, request, &input); err == nil && input.RefreshToken != "" {
			return input.RefreshToken
		}
	}
	if cookie, err := request.Cookie(constants.RefreshTokenCookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func clientInfo(request *http.Request) ClientInfo {
	return ClientInfo{UserAgent: request.UserAgent(), IPAddress: middleware.RealIP(request)}
}
