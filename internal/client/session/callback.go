// Copyright (c) 2026 GenrA. All rights reserved.

package session

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
)

// Callback is what the OAuth redirect carried back to the app.
type Callback struct {
	Code         string
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
	Error        string
}

// ErrEmptyCallback is returned when a redirect carries neither tokens, a code nor an error.
var ErrEmptyCallback = errors.New("session: callback carries no code, tokens or error")

/*
ParseCallbackURL reads an OAuth redirect such as genra://auth?code=... or
genra://auth#access_token=...&refresh_token=....

Query parameters win over the fragment for error and code. Tokens are only
read from the fragment.
*/
func ParseCallbackURL(raw string) (*Callback, error) {
	parsed, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("session_callback_parse_failed: %w", err)
	}

	query := parsed.Query()
	fragment, err := url.ParseQuery(parsed.Fragment)
	if err != nil {
		return nil, fmt.Errorf("session_callback_fragment_failed: %w", err)
	}

	callback := &Callback{
		Error:        first(query.Get("error"), fragment.Get("error")),
		Code:         first(query.Get("code"), fragment.Get("code")),
		AccessToken:  fragment.Get("access_token"),
		RefreshToken: fragment.Get("refresh_token"),
		TokenType:    fragment.Get("token_type"),
	}
	if expires := fragment.Get("expires_in"); expires != "" {
		callback.ExpiresIn, _ = strconv.Atoi(expires)
	}

	if callback.Error == "" && callback.Code == "" && callback.AccessToken == "" {
		return nil, ErrEmptyCallback
	}
	return callback, nil
}

func first(values ...string) string {
	for _, value := range values {
		if value != "" {
			return value
		}
	}
	return ""
}
