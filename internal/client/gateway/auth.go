// Copyright (c) 2026 GenrA. All rights reserved.

package gateway

import (
	"context"
	"net/http"
	"net/url"
)

// # Authentication

// Register creates an account and stores the returned session.
func (client *Client) Register(ctx context.Context, email, password, fullName string) (*Session, error) {
	return client.openSession(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/register",
		body:      map[string]string{"email": email, "password": password, "full_name": fullName},
		anonymous: true,
	})
}

// Login signs in by email or username and stores the returned session.
func (client *Client) Login(ctx context.Context, login, password string) (*Session, error) {
	return client.openSession(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/login",
		body:      map[string]string{"login": login, "password": password},
		anonymous: true,
	})
}

// Refresh rotates refreshToken and stores the new session.
func (client *Client) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	return client.openSession(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/refresh",
		body:      map[string]string{"refresh_token": refreshToken},
		anonymous: true,
	})
}

// ExchangeCode trades an OAuth one-time code for a session.
func (client *Client) ExchangeCode(ctx context.Context, code string) (*Session, error) {
	return client.openSession(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/oauth/exchange",
		body:      map[string]string{"code": code},
		anonymous: true,
	})
}

func (client *Client) openSession(ctx context.Context, request call) (*Session, error) {
	var session Session
	if _, err := client.do(ctx, request, &session); err != nil {
		return nil, err
	}
	client.SetSession(&session)
	return client.tokens.Session(), nil
}

// Logout revokes the refresh token server-side and clears the local session.
func (client *Client) Logout(ctx context.Context) error {
	session := client.tokens.Session()
	client.tokens.SetSession(nil)
	if session == nil || session.RefreshToken == "" {
		return nil
	}

	_, err := client.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/logout",
		body:      map[string]string{"refresh_token": session.RefreshToken},
		anonymous: true,
	}, nil)
	return err
}

// CurrentUser returns the account behind the access token.
func (client *Client) CurrentUser(ctx context.Context) (*User, error) {
	var user User
	if _, err := client.do(ctx, call{method: http.MethodGet, path: "/auth/session"}, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword verifies currentPassword and sets newPassword.
func (client *Client) ChangePassword(ctx context.Context, currentPassword, newPassword string) error {
	_, err := client.do(ctx, call{
		method: http.MethodPut,
		path:   "/auth/password",
		body:   map[string]string{"current_password": currentPassword, "new_password": newPassword},
	}, nil)
	return err
}

// RequestPasswordOTP asks the server to send a reset code to email.
func (client *Client) RequestPasswordOTP(ctx context.Context, email string) error {
	_, err := client.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/password/otp",
		body:      map[string]string{"email": email},
		anonymous: true,
	}, nil)
	return err
}

// ResetPassword sets a new password using an emailed code.
func (client *Client) ResetPassword(ctx context.Context, email, otp, newPassword string) error {
	_, err := client.do(ctx, call{
		method:    http.MethodPost,
		path:      "/auth/password/reset",
		body:      map[string]string{"email": email, "otp": otp, "new_password": newPassword},
		anonymous: true,
	}, nil)
	return err
}

// OAuth flows.
const (
	FlowCode     = "code"
	FlowImplicit = "implicit"
)

// AuthorizeURL is the browser URL that starts an OAuth sign-in.
func (client *Client) AuthorizeURL(provider, redirectTo, flow string) string {
	query := url.Values{"redirect_to": {redirectTo}}
	if flow != "" {
		query.Set("flow", flow)
	}
	return client.baseURL + apiPrefix + "/auth/oauth/" + escape(provider) + "/authorize?" + query.Encode()
}
