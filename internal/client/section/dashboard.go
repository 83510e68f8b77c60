// Copyright (c) 2026 GenrA. All rights reserved.

package section

import (
	"context"
	"log/slog"

	"github.com/genra-app/genra/internal/client/gateway"
)

// Home dashboard sections.
const (
	SectionProfile  = "profile"
	SectionFeed     = "feed"
	SectionProgress = "progress"
	SectionGenres   = "genres"
)

// DashboardAPI is the subset of the gateway the home screen reads.
type DashboardAPI interface {
	Profile(ctx context.Context) (*gateway.Profile, error)
	Feed(ctx context.Context, page gateway.PageRequest) (*gateway.Page[gateway.Book], error)
	RecentProgress(ctx context.Context, limit int) ([]gateway.Progress, error)
	Genres(ctx context.Context) ([]gateway.Genre, error)
}

// Dashboard is the home screen: profile, feed, continue reading and genres.
type Dashboard struct {
	*Loader
}

// NewDashboard registers the home sections.
func NewDashboard(api DashboardAPI, feedSize, recentLimit int, logger *slog.Logger) *Dashboard {
	loader := NewLoader(logger).
		Register(SectionProfile, func(ctx context.Context) (any, error) { return api.Profile(ctx) }).
		Register(SectionFeed, func(ctx context.Context) (any, error) {
			return api.Feed(ctx, gateway.PageRequest{Page: 1, Limit: feedSize})
		}).
		Register(SectionProgress, func(ctx context.Context) (any, error) { return api.RecentProgress(ctx, recentLimit) }).
		Register(SectionGenres, func(ctx context.Context) (any, error) { return api.Genres(ctx) })
	return &Dashboard{Loader: loader}
}

// Profile returns the loaded profile, if any.
func (dashboard *Dashboard) Profile() (*gateway.Profile, bool) {
	return Value[*gateway.Profile](dashboard.Loader, SectionProfile)
}

// Feed returns the loaded feed page, if any.
func (dashboard *Dashboard) Feed() (*gateway.Page[gateway.Book], bool) {
	return Value[*gateway.Page[gateway.Book]](dashboard.Loader, SectionFeed)
}

// ContinueReading returns the loaded progress rows, if any.
func (dashboard *Dashboard) ContinueReading() ([]gateway.Progress, bool) {
	return Value[[]gateway.Progress](dashboard.Loader, SectionProgress)
}

// Genres returns the loaded genres, if any.
func (dashboard *Dashboard) Genres() ([]gateway.Genre, bool) {
	return Value[[]gateway.Genre](dashboard.Loader, SectionGenres)
}
