// Copyright (c) 2026 GenrA. All rights reserved.

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/oauth2"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/constants"
	"github.com/genra-app/genra/internal/platform/metrics"
	"github.com/genra-app/genra/internal/platform/sec"
)

// # Providers

// ExternalProfile is what a provider tells us about the signed-in person.
type ExternalProfile struct {
	Subject       string
	Email         string
	EmailVerified bool
	Name          string
	AvatarURL     string
}

// Provider is a third-party identity provider speaking OAuth2.
type Provider interface {
	Name() string
	AuthCodeURL(state string) string
	Identify(context context.Context, code string) (*ExternalProfile, error)
}

// OAuth2Provider is a generic authorization-code provider with an OpenID-style userinfo endpoint.
type OAuth2Provider struct {
	name        string
	config      *oauth2.Config
	userInfoURL string
}

// NewOAuth2Provider builds a provider from explicit endpoints.
func NewOAuth2Provider(name string, config *oauth2.Config, userInfoURL string) *OAuth2Provider {
	return &OAuth2Provider{name: name, config: config, userInfoURL: userInfoURL}
}

// NewGoogleProvider builds the Google provider.
func NewGoogleProvider(clientID, clientSecret, authURL, tokenURL, userInfoURL, redirectURL string) *OAuth2Provider {
	return NewOAuth2Provider("google", &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     oauth2.Endpoint{AuthURL: authURL, TokenURL: tokenURL},
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "email", "profile"},
	}, userInfoURL)
}

// Name returns the provider key used in routes.
func (provider *OAuth2Provider) Name() string { return provider.name }

// AuthCodeURL returns the consent page URL carrying state.
func (provider *OAuth2Provider) AuthCodeURL(state string) string {
	return provider.config.AuthCodeURL(state)
}

type userInfo struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

/*
Identify exchanges the provider code and fetches the userinfo document.

Returns:
  - *ExternalProfile: Provider subject and profile fields
  - error: Unauthorized when the exchange is rejected, or transport failures
*/
func (provider *OAuth2Provider) Identify(context context.Context, code string) (*ExternalProfile, error) {
	token, err := provider.config.Exchange(context, code)
	if err != nil {
		return nil, apperr.Unauthorized("Provider rejected the authorization code")
	}

	request, err := http.NewRequestWithContext(context, http.MethodGet, provider.userInfoURL, nil)
	if err != nil {
		return nil, fmt.Errorf("oauth_userinfo_request_failed: %w", err)
	}

	response, err := provider.config.Client(context, token).Do(request)
	if err != nil {
		return nil, fmt.Errorf("oauth_userinfo_fetch_failed: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("oauth_userinfo_fetch_failed: status %d", response.StatusCode)
	}

	var info userInfo
	if err := json.NewDecoder(response.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("oauth_userinfo_decode_failed: %w", err)
	}
	if info.Subject == "" {
		return nil, fmt.Errorf("oauth_userinfo_decode_failed: missing subject")
	}

	return &ExternalProfile{
		Subject:       info.Subject,
		Email:         info.Email,
		EmailVerified: info.EmailVerified,
		Name:          info.Name,
		AvatarURL:     info.Picture,
	}, nil
}

// # Authorization Flow

// Redirect flows understood by the callback.
const (
	FlowCode     = "code"
	FlowImplicit = "implicit"
)

type oauthState struct {
	RedirectTo string `json:"redirect_to"`
	Flow       string `json:"flow"`
}

/*
BeginOAuth starts a provider sign-in and returns the consent URL.

Parameters:
  - context: context.Context
  - providerName: string
  - redirectTo: string (app URL receiving the result)
  - flow: string (code or implicit, default code)

Returns:
  - string: Provider consent URL
  - error: NotFound provider, ValidationError for untrusted redirects
*/
func (service *Service) BeginOAuth(context context.Context, providerName, redirectTo, flow string) (string, error) {
	provider, ok := service.providers[providerName]
	if !ok {
		return "", apperr.NotFound("OAuth provider")
	}

	if flow == "" {
		flow = FlowCode
	}
	if flow != FlowCode && flow != FlowImplicit {
		return "", apperr.ValidationError("Unsupported flow", apperr.FieldError{Field: FieldFlow, Message: "must be code or implicit"})
	}
	if !service.redirectAllowed(redirectTo) {
		return "", apperr.ValidationError("Redirect target is not allowed", apperr.FieldError{Field: FieldRedirectTo, Message: "is not an allowed app URL"})
	}

	state, err := sec.GenerateSecureToken(16)
	if err != nil {
		return "", fmt.Errorf("auth_service_oauth_state_failed: %w", err)
	}

	payload, _ := json.Marshal(oauthState{RedirectTo: redirectTo, Flow: flow})
	if err := service.codeStore.Put(context, constants.RedisPrefixOAuthState+state, string(payload), constants.OAuthStateTTL); err != nil {
		return "", fmt.Errorf("auth_service_oauth_state_save_failed: %w", err)
	}

	return provider.AuthCodeURL(state), nil
}

/*
CompleteOAuth handles the provider callback and returns where to send the browser.

Description: The state is consumed first so it cannot be replayed. After that
every failure is reported to the app as "?error=<code>" on its redirect target.
With the code flow the app receives a one-time code to exchange; with the
implicit flow the tokens travel in the URL fragment.

Returns:
  - string: Redirect URL for the app
  - error: Unauthorized when the state is unknown or expired
*/
func (service *Service) CompleteOAuth(context context.Context, providerName, code, state string, client ClientInfo) (string, error) {
	raw, err := service.codeStore.Take(context, constants.RedisPrefixOAuthState+state)
	if err != nil {
		if apperr.IsNotFound(err) {
			return "", apperr.Unauthorized("OAuth state is invalid or expired")
		}
		return "", err
	}

	var saved oauthState
	if err := json.Unmarshal([]byte(raw), &saved); err != nil {
		return "", fmt.Errorf("auth_service_oauth_state_decode_failed: %w", err)
	}

	provider, ok := service.providers[providerName]
	if !ok {
		return withQuery(saved.RedirectTo, url.Values{"error": {"unknown_provider"}}), nil
	}

	profile, err := provider.Identify(context, code)
	if err != nil {
		service.logger.WarnContext(context, "oauth_identify_failed", slog.String("provider", providerName), slog.Any("error", err))
		return withQuery(saved.RedirectTo, url.Values{"error": {"access_denied"}}), nil
	}

	user, err := service.resolveExternalUser(context, providerName, profile)
	if err != nil {
		return "", err
	}

	if user.IsBanned() {
		metrics.AuthEventsTotal.WithLabelValues(metrics.EventSuspended).Inc()
		return withQuery(saved.RedirectTo, url.Values{"error": {"account_suspended"}}), nil
	}
	metrics.AuthEventsTotal.WithLabelValues(metrics.EventOAuth).Inc()

	if saved.Flow == FlowImplicit {
		session, err := service.openSession(context, user, client)
		if err != nil {
			return "", err
		}
		fragment := url.Values{
			"access_token":  {session.AccessToken},
			"refresh_token": {session.RefreshToken},
			"expires_in":    {strconv.Itoa(session.ExpiresIn)},
			"token_type":    {session.TokenType},
		}
		return strings.SplitN(saved.RedirectTo, "#", 2)[0] + "#" + fragment.Encode(), nil
	}

	oneTimeCode, err := sec.GenerateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("auth_service_oauth_code_failed: %w", err)
	}
	if err := service.codeStore.Put(context, constants.RedisPrefixOAuthCode+sec.HashToken(oneTimeCode), user.ID, constants.OAuthCodeTTL); err != nil {
		return "", fmt.Errorf("auth_service_oauth_code_save_failed: %w", err)
	}
	return withQuery(saved.RedirectTo, url.Values{"code": {oneTimeCode}}), nil
}

/*
ExchangeCode trades a one-time code from the callback for a session.

Returns:
  - *LoginSession: Token pair
  - error: Unauthorized for unknown, used or expired codes
*/
func (service *Service) ExchangeCode(context context.Context, code string, client ClientInfo) (*LoginSession, error) {
	userID, err := service.codeStore.Take(context, constants.RedisPrefixOAuthCode+sec.HashToken(code))
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.Unauthorized("Code is invalid or expired")
		}
		return nil, err
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, apperr.Unauthorized("Code is invalid or expired")
	}
	if user.IsBanned() {
		return nil, apperr.Suspended("Your account has been suspended")
	}
	return service.openSession(context, user, client)
}

// resolveExternalUser finds the linked account, links by verified email, or creates one.
func (service *Service) resolveExternalUser(context context.Context, providerName string, profile *ExternalProfile) (*User, error) {
	identity, err := service.identityRepository.Find(context, providerName, profile.Subject)
	if err == nil {
		return service.userRepository.FindByID(context, identity.UserID)
	}
	if !apperr.IsNotFound(err) {
		return nil, err
	}

	var user *User
	if profile.Email != "" && profile.EmailVerified {
		user, err = service.userRepository.FindByEmail(context, profile.Email)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
	}

	if user == nil {
		if profile.Email == "" {
			return nil, apperr.Unprocessable("Provider did not share an email address")
		}
		user, err = service.createUser(context, &User{
			Email:      profile.Email,
			FullName:   profile.Name,
			Role:       sec.RoleReader,
			IsVerified: profile.EmailVerified,
		})
		if err != nil {
			return nil, err
		}
		metrics.AuthEventsTotal.WithLabelValues(metrics.EventSignUp).Inc()
		service.logger.InfoContext(context, "user_registered", slog.String("user_id", user.ID), slog.String("provider", providerName))
	}

	err = service.identityRepository.Create(context, &Identity{
		Provider: providerName,
		Subject:  profile.Subject,
		UserID:   user.ID,
		Email:    profile.Email,
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func withQuery(target string, values url.Values) string {
	base, fragment, _ := strings.Cut(target, "#")
	separator := "?"
	if strings.Contains(base, "?") {
		separator = "&"
	}
	result := base + separator + values.Encode()
	if fragment != "" {
		result += "#" + fragment
	}
	return result
}

/*
RedirectMatcher returns a RedirectAllowed func accepting the app's custom
scheme, hosts under originSuffix, and (in development) localhost.
*/
func RedirectMatcher(appScheme, originSuffix string, allowLocalhost bool) func(string) bool {
	return func(rawURL string) bool {
		parsed, err := url.Parse(rawURL)
		if err != nil || parsed.Scheme == "" {
			return false
		}
		if appScheme != "" && parsed.Scheme == appScheme {
			return true
		}
		if parsed.Scheme != "https" && parsed.Scheme != "http" {
			return false
		}
		host := parsed.Hostname()
		if allowLocalhost && (host == "localhost" || host == "127.0.0.1") {
			return true
		}
		if parsed.Scheme != "https" || originSuffix == "" {
			return false
		}
		return host == originSuffix || strings.HasSuffix(host, "."+originSuffix)
	}
}
