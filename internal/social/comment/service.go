// Copyright (c) 2026 GenrA. All rights reserved.

package comment

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/sec"
	"github.com/genra-app/genra/internal/platform/validate"
	"github.com/genra-app/genra/pkg/uuid"
)

const (
	FieldText     = "text"
	FieldParentID = "parent_id"
	FieldVote     = "vote"
)

// Service implements discussion use cases.
type Service struct {
	repo   Repository
	books  BookLookup
	logger *slog.Logger
}

// NewService constructs a comment [Service].
func NewService(repo Repository, books BookLookup, logger *slog.Logger) *Service {
	return &Service{repo: repo, books: books, logger: logger}
}

// List returns every comment of a visible book, newest first.
func (service *Service) List(context context.Context, viewer *sec.AuthClaims, bookID string) ([]*Comment, error) {
	if _, err := service.books.Get(context, bookID, viewer); err != nil {
		return nil, err
	}

	comments, err := service.repo.ListByBook(context, bookID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*Comment{}
	}
	return comments, nil
}

/*
Post adds a comment or a reply.

Description: Replies must point at a comment of the same book. The text is
trimmed and must hold between 1 and 2000 characters.

Returns:
  - *Comment: The stored comment with author details
  - error: Validation or NotFound (book)
*/
func (service *Service) Post(context context.Context, viewer *sec.AuthClaims, bookID, text string, parentID *string) (*Comment, error) {
	text = strings.TrimSpace(text)
	validator := &validate.Validator{}
	validator.Required(FieldText, text).
		Custom(FieldText, utf8.RuneCountInString(text) > MaxTextLength, "must be at most 2000 characters")
	if parentID != nil {
		validator.UUID(FieldParentID, *parentID)
	}
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.books.Get(context, bookID, viewer); err != nil {
		return nil, err
	}

	if parentID != nil {
		parent, err := service.repo.FindByID(context, *parentID)
		if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
		if parent == nil || parent.BookID != bookID {
			return nil, apperr.ValidationError("Parent comment does not belong to this book",
				apperr.FieldError{Field: FieldParentID, Message: "must reference a comment on the same book"})
		}
	}

	comment := &Comment{
		ID:       uuid.New(),
		BookID:   bookID,
		ParentID: parentID,
		Text:     text,
		Author:   Author{ID: viewer.UserID},
	}
	if err := service.repo.Create(context, comment); err != nil {
		return nil, err
	}

	service.logger.InfoContext(context, "comment_posted",
		slog.String("comment_id", comment.ID),
		slog.String("book_id", bookID),
		slog.String("user_id", viewer.UserID),
	)
	return service.repo.FindByID(context, comment.ID)
}

// Delete removes a comment. Only its author or an admin may delete it.
func (service *Service) Delete(context context.Context, viewer *sec.AuthClaims, id string) error {
	comment, err := service.repo.FindByID(context, id)
	if err != nil {
		return err
	}

	if comment.Author.ID != viewer.UserID && !viewer.UserRole().AtLeast(sec.RoleAdmin) {
		return apperr.Forbidden("Only the author can delete this comment")
	}

	if err := service.repo.SoftDelete(context, id); err != nil {
		return err
	}
	service.logger.InfoContext(context, "comment_deleted", slog.String("comment_id", id), slog.String("by", viewer.UserID))
	return nil
}

/*
Vote sets, switches or removes the caller's vote.

Returns:
  - []Vote: The comment's votes after the change
  - error: Validation (unknown vote) or NotFound (comment)
*/
func (service *Service) Vote(context context.Context, viewer *sec.AuthClaims, id, vote string) ([]Vote, error) {
	validator := &validate.Validator{}
	validator.OneOf(FieldVote, vote, VoteLike, VoteDislike, VoteNone)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	if _, err := service.repo.FindByID(context, id); err != nil {
		return nil, err
	}

	if err := service.repo.SetVote(context, id, viewer.UserID, voteValue(vote)); err != nil {
		return nil, err
	}

	votes, err := service.repo.ListVotes(context, id)
	if err != nil {
		return nil, err
	}
	if votes == nil {
		votes = []Vote{}
	}
	return votes, nil
}
