// Copyright (c) 2026 GenrA. All rights reserved.

package chapter

import (
	"context"
	"log/slog"
	"strings"

	"github.com/genra-app/genra/internal/catalog/book"
	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/validate"
	"github.com/genra-app/genra/pkg/uuid"
)

const (
	FieldTitle          = "title"
	FieldContent        = "content"
	FieldSequenceNumber = "sequence_number"

	MaxTitleLength   = 200
	MaxContentLength = 200000
)

// # Service Layer

// Service orchestrates the business logic for chapters.
type Service struct {
	chapterRepo Repository
	books       BookLookup
	logger      *slog.Logger
}

// NewService constructs a new [Service] with its required dependencies.
func NewService(chapterRepo Repository, books BookLookup, logger *slog.Logger) *Service {
	return &Service{
		chapterRepo: chapterRepo,
		books:       books,
		logger:      logger,
	}
}

// # Reading

/*
ListChapters returns the table of contents of a book visible to viewer.

Parameters:
  - context: context.Context
  - bookID: string
  - viewer: *sec.AuthClaims (nil for anonymous)

Returns:
  - []*Chapter: Chapters ordered by sequence number, without content
  - error: NotFound when the book is not visible
*/
func (service *Service) ListChapters(context context.Context, bookID string, viewer *sec.AuthClaims) ([]*Chapter, error) {
	if _, err := service.books.Get(context, bookID, viewer); err != nil {
		return nil, err
	}

	chapters, err := service.chapterRepo.ListByBook(context, bookID)
	if err != nil {
		return nil, err
	}
	if chapters == nil {
		chapters = []*Chapter{}
	}
	return chapters, nil
}

/*
GetChapter returns a chapter with its content.

Description: Locked chapters keep their metadata but lose the content unless
the viewer is the book's author or an admin.
*/
func (service *Service) GetChapter(context context.Context, id string, viewer *sec.AuthClaims) (*Chapter, error) {
	chapter, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return nil, err
	}

	parent, err := service.books.Get(context, chapter.BookID, viewer)
	if err != nil {
		if apperr.IsNotFound(err) {
			return nil, apperr.NotFound("Chapter")
		}
		return nil, err
	}

	if chapter.IsLocked && !canManage(parent, viewer) {
		chapter.Content = ""
	}
	return chapter, nil
}

// # Authoring

// CreateChapter adds a chapter to a book the viewer manages.
func (service *Service) CreateChapter(context context.Context, viewer *sec.AuthClaims, bookID string, draft Draft) (*Chapter, error) {
	if _, err := service.managedBook(context, viewer, bookID); err != nil {
		return nil, err
	}

	draft.Title = strings.TrimSpace(draft.Title)
	validator := &validate.Validator{}
	validator.Required(FieldTitle, draft.Title).
		MaxLen(FieldTitle, draft.Title, MaxTitleLength).
		MaxLen(FieldContent, draft.Content, MaxContentLength).
		Custom(FieldSequenceNumber, draft.SequenceNumber < 1, "must be a positive number")
	if err := validator.Err(); err != nil {
		return nil, err
	}

	chapter := &Chapter{
		ID:             uuid.New(),
		BookID:         bookID,
		Title:          draft.Title,
		Content:        draft.Content,
		SequenceNumber: draft.SequenceNumber,
		IsLocked:       draft.IsLocked,
	}
	if err := service.chapterRepo.Create(context, chapter); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "chapter_created",
		slog.String("chapter_id", chapter.ID),
		slog.String("book_id", bookID),
		slog.Int("sequence_number", chapter.SequenceNumber),
	)
	return service.chapterRepo.FindByID(context, chapter.ID)
}

// UpdateChapter applies a partial update to a chapter the viewer manages.
func (service *Service) UpdateChapter(context context.Context, viewer *sec.AuthClaims, id string, changes Changes) (*Chapter, error) {
	chapter, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return nil, err
	}
	if _, err := service.managedBook(context, viewer, chapter.BookID); err != nil {
		return nil, err
	}

	validator := &validate.Validator{}
	if changes.Title != nil {
		trimmed := strings.TrimSpace(*changes.Title)
		changes.Title = &trimmed
		validator.Required(FieldTitle, trimmed).MaxLen(FieldTitle, trimmed, MaxTitleLength)
	}
	if changes.Content != nil {
		validator.MaxLen(FieldContent, *changes.Content, MaxContentLength)
	}
	if changes.SequenceNumber != nil {
		validator.Custom(FieldSequenceNumber, *changes.SequenceNumber < 1, "must be a positive number")
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if err := service.chapterRepo.Update(context, id, changes); err != nil {
		return nil, err
	}
	return service.chapterRepo.FindByID(context, id)
}

// DeleteChapter soft-deletes a chapter the viewer manages.
func (service *Service) DeleteChapter(context context.Context, viewer *sec.AuthClaims, id string) error {
	chapter, err := service.chapterRepo.FindByID(context, id)
	if err != nil {
		return err
	}
	if _, err := service.managedBook(context, viewer, chapter.BookID); err != nil {
		return err
	}

	if err := service.chapterRepo.SoftDelete(context, id); err != nil {
		return err
	}
	service.logger.InfoContext(context, "chapter_deleted", slog.String("chapter_id", id))
	return nil
}

func (service *Service) managedBook(context context.Context, viewer *sec.AuthClaims, bookID string) (*book.Book, error) {
	parent, err := service.books.Get(context, bookID, viewer)
	if err != nil {
		return nil, err
	}
	if !canManage(parent, viewer) {
		return nil, apperr.Forbidden("Only the author can manage chapters of this book")
	}
	return parent, nil
}

func canManage(parent *book.Book, viewer *sec.AuthClaims) bool {
	if viewer == nil {
		return false
	}
	return parent.AuthorID == viewer.UserID || viewer.UserRole().AtLeast(sec.RoleAdmin)
}
