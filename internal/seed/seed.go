// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package seed fills a development database with demo authors, approved books
and chapters.

Content goes through the same services the API uses, so every seeded row
passes the normal validation and review workflow. A fixed seed produces the
same catalogue on every run.
*/
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/catalog/chapter"
	"github.com/genra-app/genra/internal/catalog/genre"
	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/users/auth"
	"github.com/genra-app/genra/pkg/slug"
	"github.com/genra-app/genra/pkg/uuid"
)

// # Contracts

// Accounts is the subset of the user store the seeder needs.
type Accounts interface {
	FindByEmail(context context.Context, email string) (*auth.User, error)
	Create(context context.Context, user *auth.User) error
}

// Books is implemented by [book.Service].
type Books interface {
	Create(context context.Context, authorID string, draft book.Draft) (*book.Book, error)
	Submit(context context.Context, viewer *sec.AuthClaims, id string) (*book.Book, error)
	Review(context context.Context, adminID, id string, approve bool) (*book.Book, error)
}

// Chapters is implemented by [chapter.Service].
type Chapters interface {
	CreateChapter(context context.Context, viewer *sec.AuthClaims, bookID string, draft chapter.Draft) (*chapter.Chapter, error)
}

// Genres is implemented by [genre.Service].
type Genres interface {
	List(context context.Context) ([]genre.Genre, error)
}

// Options controls how much content is generated.
type Options struct {
	Authors         int
	Books           int
	ChaptersPerBook int
	Seed            int64

	// Password is the sign-in password of every seeded author.
	Password string
}

// Result summarizes a seeding run.
type Result struct {
	Authors  int
	Books    int
	Chapters int
}

// Seeder generates demo content.
type Seeder struct {
	accounts Accounts
	books    Books
	chapters Chapters
	genres   Genres
	logger   *slog.Logger
}

// New constructs a [Seeder].
func New(accounts Accounts, books Books, chapters Chapters, genres Genres, logger *slog.Logger) *Seeder {
	return &Seeder{accounts: accounts, books: books, chapters: chapters, genres: genres, logger: logger}
}

/*
Run creates options.Authors authors and spreads options.Books approved books
across them, each with options.ChaptersPerBook chapters. Chapters after the
third of a paid book are locked.

Authors are matched by email, so re-running with the same seed reuses them.
*/
func (seeder *Seeder) Run(context context.Context, options Options) (Result, error) {
	var result Result
	if options.Authors < 1 {
		options.Authors = 1
	}

	faker := gofakeit.New(options.Seed)

	genres, err := seeder.genres.List(context)
	if err != nil {
		return result, fmt.Errorf("seed_genres_failed: %w", err)
	}
	if len(genres) == 0 {
		return result, fmt.Errorf("seed_genres_failed: no genres, run migrations first")
	}

	hash, err := sec.HashPassword(options.Password)
	if err != nil {
		return result, fmt.Errorf("seed_password_failed: %w", err)
	}

	authors := make([]*sec.AuthClaims, 0, options.Authors)
	for index := range options.Authors {
		author, err := seeder.author(context, faker, index, hash)
		if err != nil {
			return result, err
		}
		authors = append(authors, &sec.AuthClaims{UserID: author.ID, Username: author.Username, Role: string(sec.RoleAuthor)})
	}
	result.Authors = len(authors)

	for index := range options.Books {
		owner := authors[index%len(authors)]

		price := 0
		if faker.Bool() {
			price = faker.Number(1, 50) * 100
		}

		created, err := seeder.books.Create(context, owner.UserID, book.Draft{
			Title:       truncate(faker.BookTitle(), book.MaxTitleLength),
			Description: faker.Paragraph(1, 4, 14, " "),
			CoverURL:    fmt.Sprintf("https://picsum.photos/seed/%s/400/600", faker.UUID()),
			Price:       price,
			GenreIDs:    pickGenres(faker, genres),
		})
		if err != nil {
			return result, fmt.Errorf("seed_book_failed: %w", err)
		}

		for sequence := 1; sequence <= options.ChaptersPerBook; sequence++ {
			_, err := seeder.chapters.CreateChapter(context, owner, created.ID, chapter.Draft{
				Title:          fmt.Sprintf("Chapter %d: %s", sequence, strings.TrimSuffix(faker.Sentence(4), ".")),
				Content:        faker.Paragraph(6, 5, 16, "\n\n"),
				SequenceNumber: sequence,
				IsLocked:       price > 0 && sequence > 3,
			})
			if err != nil {
				return result, fmt.Errorf("seed_chapter_failed: %w", err)
			}
			result.Chapters++
		}

		if _, err := seeder.books.Submit(context, owner, created.ID); err != nil {
			return result, fmt.Errorf("seed_submit_failed: %w", err)
		}
		if _, err := seeder.books.Review(context, "seed", created.ID, true); err != nil {
			return result, fmt.Errorf("seed_review_failed: %w", err)
		}
		result.Books++
	}

	seeder.logger.InfoContext(context, "seed_completed",
		slog.Int("authors", result.Authors),
		slog.Int("books", result.Books),
		slog.Int("chapters", result.Chapters),
	)
	return result, nil
}

func (seeder *Seeder) author(context context.Context, faker *gofakeit.Faker, index int, passwordHash string) (*auth.User, error) {
	first, last := faker.FirstName(), faker.LastName()
	email := fmt.Sprintf("author%d.%s@seed.genra.app", index+1, handle(last))

	existing, err := seeder.accounts.FindByEmail(context, email)
	if err == nil {
		return existing, nil
	}
	if !apperr.IsNotFound(err) {
		return nil, fmt.Errorf("seed_author_failed: %w", err)
	}

	user := &auth.User{
		ID:           uuid.New(),
		Username:     truncate(fmt.Sprintf("%s_%d", handle(first), index+1), 30),
		Email:        email,
		PasswordHash: passwordHash,
		FullName:     first + " " + last,
		Role:         sec.RoleAuthor,
		IsVerified:   true,
	}
	if err := seeder.accounts.Create(context, user); err != nil {
		return nil, fmt.Errorf("seed_author_failed: %w", err)
	}
	return user, nil
}

func pickGenres(faker *gofakeit.Faker, genres []genre.Genre) []int {
	count := faker.Number(1, min(3, len(genres)))
	picked := make([]int, 0, count)
	for _, position := range faker.Rand.Perm(len(genres))[:count] {
		picked = append(picked, genres[position].ID)
	}
	return picked
}

func handle(name string) string {
	if compact := slug.Compact(name); compact != "" {
		return compact
	}
	return "reader"
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}
