// Copyright (c) 2026 GenrA. All rights reserved.

package gateway

import (
	"context"
	"net/http"
	"net/url"
)

// # Profile

// Profile returns the signed-in reader's private profile.
func (client *Client) Profile(ctx context.Context) (*Profile, error) {
	var profile Profile
	if _, err := client.do(ctx, call{method: http.MethodGet, path: "/me"}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateProfile applies a partial update.
func (client *Client) UpdateProfile(ctx context.Context, changes ProfileChanges) (*Profile, error) {
	var profile Profile
	if _, err := client.do(ctx, call{method: http.MethodPatch, path: "/me", body: changes}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteAccount removes the signed-in account and clears the session.
func (client *Client) DeleteAccount(ctx context.Context) error {
	if _, err := client.do(ctx, call{method: http.MethodDelete, path: "/me"}, nil); err != nil {
		return err
	}
	client.tokens.SetSession(nil)
	return nil
}

// PublicProfile returns another reader's profile.
func (client *Client) PublicProfile(ctx context.Context, userID string) (*PublicProfile, error) {
	var profile PublicProfile
	if _, err := client.do(ctx, call{method: http.MethodGet, path: "/users/" + escape(userID)}, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UsernameAvailable reports whether username can be claimed.
func (client *Client) UsernameAvailable(ctx context.Context, username string) (bool, error) {
	var result struct {
		Available bool `json:"available"`
	}
	_, err := client.do(ctx, call{
		method: http.MethodGet,
		path:   "/users/availability",
		query:  url.Values{"username": {username}},
	}, &result)
	return result.Available, err
}

// UploadAvatar sends raw image bytes; the server detects the type.
func (client *Client) UploadAvatar(ctx context.Context, image []byte) (*Profile, error) {
	var profile Profile
	_, err := client.do(ctx, call{
		method:      http.MethodPut,
		path:        "/me/avatar",
		raw:         image,
		contentType: "application/octet-stream",
	}, &profile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// # Interests & Preferences

// Interests lists followed genres.
func (client *Client) Interests(ctx context.Context) ([]Interest, error) {
	var interests []Interest
	_, err := client.do(ctx, call{method: http.MethodGet, path: "/me/interests"}, &interests)
	return interests, err
}

// SetInterests replaces followed genres. onboarding enforces the minimum of three.
func (client *Client) SetInterests(ctx context.Context, genreIDs []int, onboarding bool) ([]Interest, error) {
	var interests []Interest
	_, err := client.do(ctx, call{
		method: http.MethodPut,
		path:   "/me/interests",
		body:   map[string]any{"genres": genreIDs, "onboarding": onboarding},
	}, &interests)
	return interests, err
}

// Preferences returns the reader display settings.
func (client *Client) Preferences(ctx context.Context) (*Preferences, error) {
	var prefs Preferences
	if _, err := client.do(ctx, call{method: http.MethodGet, path: "/me/preferences"}, &prefs); err != nil {
		return nil, err
	}
	return &prefs, nil
}

// UpdatePreferences replaces the reader display settings.
func (client *Client) UpdatePreferences(ctx context.Context, prefs Preferences) (*Preferences, error) {
	var saved Preferences
	if _, err := client.do(ctx, call{method: http.MethodPut, path: "/me/preferences", body: prefs}, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// # Sessions

// Sessions lists signed-in devices.
func (client *Client) Sessions(ctx context.Context) ([]DeviceSession, error) {
	var sessions []DeviceSession
	_, err := client.do(ctx, call{method: http.MethodGet, path: "/me/sessions"}, &sessions)
	return sessions, err
}

// RevokeSession signs out one device.
func (client *Client) RevokeSession(ctx context.Context, sessionID string) error {
	_, err := client.do(ctx, call{method: http.MethodDelete, path: "/me/sessions/" + escape(sessionID)}, nil)
	return err
}

// RevokeOtherSessions signs out every device but this one.
func (client *Client) RevokeOtherSessions(ctx context.Context) error {
	_, err := client.do(ctx, call{method: http.MethodDelete, path: "/me/sessions"}, nil)
	return err
}

// # Moderation

// BanUser suspends an account. Admin only.
func (client *Client) BanUser(ctx context.Context, userID, reason string) error {
	_, err := client.do(ctx, call{
		method: http.MethodPut,
		path:   "/admin/users/" + escape(userID) + "/ban",
		body:   map[string]string{"reason": reason},
	}, nil)
	return err
}

// UnbanUser lifts a suspension. Admin only.
func (client *Client) UnbanUser(ctx context.Context, userID string) error {
	_, err := client.do(ctx, call{method: http.MethodDelete, path: "/admin/users/" + escape(userID) + "/ban"}, nil)
	return err
}
