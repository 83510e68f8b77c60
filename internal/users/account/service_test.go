// Copyright (c) 2026 GenrA. All rights reserved.

package account_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/users/account"
)

// # Fakes

type memAccounts struct {
	mu       sync.Mutex
	profiles map[string]*account.Profile
}

func (repo *memAccounts) FindByID(_ context.Context, id string) (*account.Profile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	if profile, ok := repo.profiles[id]; ok {
		copied := *profile
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *memAccounts) FindPublic(_ context.Context, id string) (*account.PublicProfile, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	profile, ok := repo.profiles[id]
	if !ok {
		return nil, apperr.NotFound("User")
	}
	return &account.PublicProfile{ID: profile.ID, Username: profile.Username, FullName: profile.FullName}, nil
}

func (repo *memAccounts) Update(_ context.Context, id string, changes account.ProfileChanges) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	profile := repo.profiles[id]
	if changes.FullName != nil {
		profile.FullName = *changes.FullName
	}
	if changes.Username != nil {
		profile.Username = *changes.Username
	}
	if changes.Bio != nil {
		profile.Bio = *changes.Bio
	}
	if changes.Website != nil {
		profile.Website = *changes.Website
	}
	return nil
}

func (repo *memAccounts) UsernameTaken(_ context.Context, username, exceptUserID string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	for _, profile := range repo.profiles {
		if profile.Username == username && profile.ID != exceptUserID {
			return true, nil
		}
	}
	return false, nil
}

func (repo *memAccounts) SetAvatar(_ context.Context, id, url string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	repo.profiles[id].AvatarURL = url
	return nil
}

func (repo *memAccounts) SetBan(_ context.Context, id string, reason *string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	profile, ok := repo.profiles[id]
	if !ok {
		return apperr.NotFound("User")
	}
	profile.IsBanned = reason != nil
	profile.BanReason = ""
	if reason != nil {
		profile.BanReason = *reason
	}
	return nil
}

func (repo *memAccounts) IsBanned(_ context.Context, id string) (bool, error) {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	profile, ok := repo.profiles[id]
	if !ok {
		return false, apperr.NotFound("User")
	}
	return profile.IsBanned, nil
}

func (repo *memAccounts) SoftDelete(_ context.Context, id string) error {
	repo.mu.Lock()
	defer repo.mu.Unlock()
	delete(repo.profiles, id)
	return nil
}

type memInterests struct {
	byUser map[string][]int
}

func (repo *memInterests) List(_ context.Context, userID string) ([]account.Interest, error) {
	var interests []account.Interest
	for _, id := range repo.byUser[userID] {
		interests = append(interests, account.Interest{GenreID: id})
	}
	return interests, nil
}

func (repo *memInterests) Replace(_ context.Context, userID string, genreIDs []int) error {
	for _, id := range genreIDs {
		if id > 100 {
			return apperr.Unprocessable("Unknown genre")
		}
	}
	repo.byUser[userID] = genreIDs
	return nil
}

type memPreferences struct {
	byUser map[string]*account.Preferences
}

func (repo *memPreferences) FindByUserID(_ context.Context, userID string) (*account.Preferences, error) {
	if prefs, ok := repo.byUser[userID]; ok {
		copied := *prefs
		return &copied, nil
	}
	return nil, apperr.NotFound("Preferences")
}

func (repo *memPreferences) Upsert(_ context.Context, prefs *account.Preferences) error {
	copied := *prefs
	repo.byUser[prefs.UserID] = &copied
	return nil
}

type memSessions struct {
	active  map[string][]account.SessionInfo
	revoked []string
}

func (repo *memSessions) FindActiveByUserID(_ context.Context, userID string) ([]account.SessionInfo, error) {
	return append([]account.SessionInfo(nil), repo.active[userID]...), nil
}

func (repo *memSessions) Revoke(_ context.Context, userID, sessionID string) error {
	kept := repo.active[userID][:0]
	found := false
	for _, session := range repo.active[userID] {
		if session.ID == sessionID {
			found = true
			continue
		}
		kept = append(kept, session)
	}
	if !found {
		return apperr.NotFound("Session")
	}
	repo.active[userID] = kept
	repo.revoked = append(repo.revoked, sessionID)
	return nil
}

func (repo *memSessions) RevokeOthers(_ context.Context, userID, currentSessionID string) error {
	var kept []account.SessionInfo
	for _, session := range repo.active[userID] {
		if session.ID == currentSessionID {
			kept = append(kept, session)
			continue
		}
		repo.revoked = append(repo.revoked, session.ID)
	}
	repo.active[userID] = kept
	return nil
}

func (repo *memSessions) RevokeAll(_ context.Context, userID string) error {
	for _, session := range repo.active[userID] {
		repo.revoked = append(repo.revoked, session.ID)
	}
	delete(repo.active, userID)
	return nil
}

type memAvatars struct{}

func (memAvatars) Put(_ context.Context, userID string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", apperr.ValidationError("Avatar file is empty")
	}
	return "https://api.genra.app/avatars/" + userID + ".png", nil
}

type memBanCache struct {
	state map[string]bool
}

func (cache *memBanCache) Remember(_ context.Context, userID string, banned bool) error {
	cache.state[userID] = banned
	return nil
}

type fixture struct {
	service   *account.Service
	accounts  *memAccounts
	interests *memInterests
	sessions  *memSessions
	bans      *memBanCache
}

func newFixture() *fixture {
	accounts := &memAccounts{profiles: map[string]*account.Profile{
		"u1":    {ID: "u1", Username: "alice1234", FullName: "Alice"},
		"u2":    {ID: "u2", Username: "bob5678", FullName: "Bob"},
		"admin": {ID: "admin", Username: "root0001", FullName: "Root"},
	}}
	interests := &memInterests{byUser: map[string][]int{}}
	sessions := &memSessions{active: map[string][]account.SessionInfo{
		"u1": {{ID: "s1"}, {ID: "s2"}, {ID: "s3"}},
		"u2": {{ID: "s4"}},
	}}
	bans := &memBanCache{state: map[string]bool{}}

	service := account.NewService(
		accounts,
		interests,
		&memPreferences{byUser: map[string]*account.Preferences{}},
		sessions,
		memAvatars{},
		bans,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return &fixture{service: service, accounts: accounts, interests: interests, sessions: sessions, bans: bans}
}

func ptr(value string) *string { return &value }

// # Tests

/*
TestGetProfile_NeedsOnboarding verifies that fewer than three interests flag onboarding.
*/
func TestGetProfile_NeedsOnboarding(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	profile, err := f.service.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, profile.NeedsOnboarding)
	assert.NotNil(t, profile.Interests)

	_, err = f.service.SetInterests(ctx, "u1", []int{1, 2, 3}, true)
	require.NoError(t, err)

	profile, err = f.service.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, profile.NeedsOnboarding)
	assert.Len(t, profile.Interests, 3)
}

/*
TestSetInterests covers minimum counts, duplicates and unknown genres.
*/
func TestSetInterests(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	_, err := f.service.SetInterests(ctx, "u1", []int{1, 2}, true)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.SetInterests(ctx, "u1", []int{4, 4, 4}, true)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	interests, err := f.service.SetInterests(ctx, "u1", []int{7, 7}, false)
	require.NoError(t, err)
	assert.Equal(t, []account.Interest{{GenreID: 7}}, interests)

	_, err = f.service.SetInterests(ctx, "u1", []int{}, false)
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))

	_, err = f.service.SetInterests(ctx, "u1", []int{1, 2, 999}, true)
	assert.True(t, apperr.HasCode(err, apperr.CodeUnprocessable))
}

/*
TestUpdateProfile checks validation and username uniqueness.
*/
func TestUpdateProfile(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	profile, err := f.service.UpdateProfile(ctx, "u1", account.ProfileChanges{
		FullName: ptr("  Alice Liddell "),
		Username: ptr("Alice_Reads"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice Liddell", profile.FullName)
	assert.Equal(t, "alice_reads", profile.Username)

	_, err = f.service.UpdateProfile(ctx, "u1", account.ProfileChanges{Username: ptr("bob5678")})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))

	_, err = f.service.UpdateProfile(ctx, "u1", account.ProfileChanges{FullName: ptr("   ")})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestCheckUsername treats the caller's own name as available.
*/
func TestCheckUsername(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	available, err := f.service.CheckUsername(ctx, "alice1234", "u1")
	require.NoError(t, err)
	assert.True(t, available)

	available, err = f.service.CheckUsername(ctx, "alice1234", "u2")
	require.NoError(t, err)
	assert.False(t, available)

	_, err = f.service.CheckUsername(ctx, "a", "u2")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestUploadAvatar stores the returned URL on the profile.
*/
func TestUploadAvatar(t *testing.T) {
	f := newFixture()

	profile, err := f.service.UploadAvatar(context.Background(), "u1", []byte{0x89, 'P', 'N', 'G'})
	require.NoError(t, err)
	assert.Equal(t, "https://api.genra.app/avatars/u1.png", profile.AvatarURL)

	_, err = f.service.UploadAvatar(context.Background(), "u1", nil)
	assert.Error(t, err)
}

/*
TestPreferences covers defaults, rounding and range checks.
*/
func TestPreferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	prefs, err := f.service.GetPreferences(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, account.DefaultPreferences("u1").FontSize, prefs.FontSize)
	assert.Equal(t, account.ThemeLight, prefs.Theme)

	saved, err := f.service.UpdatePreferences(ctx, &account.Preferences{
		UserID:      "u1",
		FontSize:    18,
		Theme:       account.ThemeSepia,
		LineSpacing: 1.74,
		FontFamily:  account.FontSans,
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.7, saved.LineSpacing, 0.0001)
	assert.Equal(t, account.ThemeSepia, saved.Theme)

	tests := []struct {
		name  string
		prefs account.Preferences
	}{
		{"font_too_small", account.Preferences{FontSize: 8, Theme: account.ThemeDark, LineSpacing: 1.5, FontFamily: account.FontSerif}},
		{"unknown_theme", account.Preferences{FontSize: 16, Theme: "neon", LineSpacing: 1.5, FontFamily: account.FontSerif}},
		{"spacing_too_wide", account.Preferences{FontSize: 16, Theme: account.ThemeDark, LineSpacing: 3, FontFamily: account.FontSerif}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			prefs := tt.prefs
			prefs.UserID = "u1"
			_, err := f.service.UpdatePreferences(ctx, &prefs)
			assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
		})
	}
}

/*
TestSessions marks the current session and revokes the others.
*/
func TestSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	sessions, err := f.service.ListSessions(ctx, "u1", "s2")
	require.NoError(t, err)
	require.Len(t, sessions, 3)
	for _, session := range sessions {
		assert.Equal(t, session.ID == "s2", session.IsCurrent)
	}

	require.NoError(t, f.service.RevokeSession(ctx, "u1", "s1"))
	assert.True(t, apperr.IsNotFound(f.service.RevokeSession(ctx, "u1", "s4")))

	require.NoError(t, f.service.RevokeOtherSessions(ctx, "u1", "s2"))
	sessions, err = f.service.ListSessions(ctx, "u1", "s2")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "s2", sessions[0].ID)
}

/*
TestBan revokes every session and updates the ban cache immediately.
*/
func TestBan(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	assert.True(t, apperr.HasCode(f.service.Ban(ctx, "admin", "admin", "spam"), apperr.CodeForbidden))

	require.NoError(t, f.service.Ban(ctx, "admin", "u1", " spam "))
	assert.True(t, f.bans.state["u1"])
	assert.Empty(t, f.sessions.active["u1"])
	assert.ElementsMatch(t, []string{"s1", "s2", "s3"}, f.sessions.revoked)

	profile, err := f.service.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, profile.IsBanned)
	assert.Equal(t, "spam", profile.BanReason)

	require.NoError(t, f.service.Unban(ctx, "admin", "u1"))
	assert.False(t, f.bans.state["u1"])

	assert.True(t, apperr.IsNotFound(f.service.Ban(ctx, "admin", "ghost", "spam")))
}

/*
TestDeleteAccount removes the profile and signs out every device.
*/
func TestDeleteAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture()

	require.NoError(t, f.service.DeleteAccount(ctx, "u2"))
	assert.Contains(t, f.sessions.revoked, "s4")

	_, err := f.service.GetProfile(ctx, "u2")
	assert.True(t, apperr.IsNotFound(err))
}
