// Copyright (c) 2026 GenrA. All rights reserved.

package main

import (
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/genra-app/genra/internal/api"
	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/catalog/chapter"
	"github.com/genra-app/genra/internal/catalog/genre"
	"github.com/genra-app/genra/internal/library"
	"github.com/genra-app/genra/internal/platform/config"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/storage"
	"github.com/genra-app/genra/internal/social/comment"
	"github.com/genra-app/genra/internal/social/rating"
	"github.com/genra-app/genra/internal/users/account"
	"github.com/genra-app/genra/internal/users/auth"
)

// services holds every constructed domain service.
type services struct {
	auth    *auth.Service
	account *account.Service
	bans    *account.BanChecker
	catalog catalogServices
	library *library.Service
	rating  *rating.Service
	comment *comment.Service
}

type catalogServices struct {
	genre   *genre.Service
	book    *book.Service
	chapter *chapter.Service
}

// wireCatalog builds the catalogue services. A nil cache disables genre caching.
func wireCatalog(pool *pgxpool.Pool, cache redis.Cmdable, log *slog.Logger) catalogServices {
	books := book.NewService(book.NewPostgresRepository(pool), log)
	return catalogServices{
		genre:   genre.NewService(genre.NewPostgresRepository(pool), cache, log),
		book:    books,
		chapter: chapter.NewService(chapter.NewPostgresRepository(pool), books, log),
	}
}

func wireServices(pool *pgxpool.Pool, rdb *redis.Client, cfg *config.Config, tokens *sec.TokenService, avatars storage.AvatarStore, log *slog.Logger) *services {
	var providers []auth.Provider
	if cfg.GoogleOAuthEnabled() {
		providers = append(providers, auth.NewGoogleProvider(
			cfg.GoogleClientID, cfg.GoogleClientSecret,
			cfg.GoogleAuthURL, cfg.GoogleTokenURL, cfg.GoogleUserInfoURL,
			cfg.OAuthRedirectURL,
		))
	}

	authService := auth.NewService(
		auth.NewUserRepository(pool),
		auth.NewSessionRepository(pool),
		auth.NewIdentityRepository(pool),
		auth.NewCodeStore(rdb),
		tokens,
		auth.Options{
			Providers:       providers,
			RedirectAllowed: auth.RedirectMatcher(cfg.AppScheme, cfg.OriginSuffix(), cfg.IsDevelopment()),
			Logger:          log,
		},
	)

	accounts := account.NewAccountRepository(pool)
	bans := account.NewBanChecker(rdb, accounts)

	catalog := wireCatalog(pool, rdb, log)

	return &services{
		auth: authService,
		account: account.NewService(
			accounts,
			account.NewInterestRepository(pool),
			account.NewPreferencesRepository(pool),
			account.NewSessionRepository(pool),
			avatars,
			bans,
			log,
		),
		bans:    bans,
		catalog: catalog,
		library: library.NewService(library.NewPostgresRepository(pool), catalog.book, log),
		rating:  rating.NewService(rating.NewPostgresRepository(pool), catalog.book, log),
		comment: comment.NewService(comment.NewPostgresRepository(pool), catalog.book, log),
	}
}

func (services *services) handlers() api.Handlers {
	return api.Handlers{
		Auth:    auth.NewHandler(services.auth),
		Account: account.NewHandler(services.account),
		Genre:   genre.NewHandler(services.catalog.genre),
		Book:    book.NewHandler(services.catalog.book),
		Chapter: chapter.NewHandler(services.catalog.chapter),
		Library: library.NewHandler(services.library),
		Rating:  rating.NewHandler(services.rating),
		Comment: comment.NewHandler(services.comment),
	}
}
