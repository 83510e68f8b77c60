// Copyright (c) 2026 GenrA. All rights reserved.

package comment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/genra-app/genra/internal/platform/apperr"
	"github.com/genra-app/genra/internal/platform/database/schema"
	"github.com/genra-app/genra/internal/platform/dberr"
)

// PostgresRepository implements [Repository] using pgx.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgreSQL backed comment store.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// commentSelect hydrates author and votes in one round-trip.
var commentSelect = fmt.Sprintf(`
	SELECT c.%s, c.%s, c.%s::text, c.%s, c.%s,
	       a.%s, a.%s, a.%s, COALESCE(a.%s, ''),
	       COALESCE((
	           SELECT json_agg(json_build_object(
	               'user_id', v.%s,
	               'vote', CASE WHEN v.%s > 0 THEN '%s' ELSE '%s' END
	           ) ORDER BY v.%s)
	           FROM %s v WHERE v.%s = c.%s
	       ), '[]') AS votes
	FROM %s c
	JOIN %s a ON a.%s = c.%s
	WHERE c.%s IS NULL`,
	schema.SocialComment.ID, schema.SocialComment.BookID, schema.SocialComment.ParentID,
	schema.SocialComment.Body, schema.SocialComment.CreatedAt,
	schema.UserAccount.ID, schema.UserAccount.Username, schema.UserAccount.DisplayName, schema.UserAccount.AvatarURL,
	schema.SocialCommentVote.UserID, schema.SocialCommentVote.Vote, VoteLike, VoteDislike,
	schema.SocialCommentVote.CreatedAt,
	schema.SocialCommentVote.Table, schema.SocialCommentVote.CommentID, schema.SocialComment.ID,
	schema.SocialComment.Table,
	schema.UserAccount.Table, schema.UserAccount.ID, schema.SocialComment.UserID,
	schema.SocialComment.DeletedAt,
)

func scanComment(row pgx.Row) (*Comment, error) {
	comment := &Comment{}
	var votesJSON []byte
	err := row.Scan(
		&comment.ID, &comment.BookID, &comment.ParentID, &comment.Text, &comment.CreatedAt,
		&comment.Author.ID, &comment.Author.Username, &comment.Author.FullName, &comment.Author.AvatarURL,
		&votesJSON,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(votesJSON, &comment.Votes); err != nil {
		return nil, fmt.Errorf("postgres_comment_votes_decode_failed: %w", err)
	}
	if comment.Votes == nil {
		comment.Votes = []Vote{}
	}
	return comment, nil
}

// ListByBook returns the flat discussion of a book, newest first.
func (repository *PostgresRepository) ListByBook(context context.Context, bookID string) ([]*Comment, error) {
	query := commentSelect + fmt.Sprintf(` AND c.%s = $1 ORDER BY c.%s DESC, c.%s DESC`,
		schema.SocialComment.BookID, schema.SocialComment.CreatedAt, schema.SocialComment.ID)

	rows, err := repository.pool.Query(context, query, bookID)
	if err != nil {
		return nil, dberr.Wrap(err, "Comment")
	}
	comments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Comment, error) {
		return scanComment(row)
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Comment")
	}
	return comments, nil
}

func (repository *PostgresRepository) FindByID(context context.Context, id string) (*Comment, error) {
	query := commentSelect + fmt.Sprintf(` AND c.%s = $1`, schema.SocialComment.ID)

	comment, err := scanComment(repository.pool.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Comment")
	}
	return comment, nil
}

func (repository *PostgresRepository) Create(context context.Context, comment *Comment) error {
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s, %s) VALUES ($1, $2, $3, $4, $5)`,
		schema.SocialComment.Table,
		schema.SocialComment.ID, schema.SocialComment.BookID, schema.SocialComment.UserID,
		schema.SocialComment.ParentID, schema.SocialComment.Body,
	)

	if _, err := repository.pool.Exec(context, query,
		comment.ID, comment.BookID, comment.Author.ID, comment.ParentID, comment.Text,
	); err != nil {
		return dberr.Wrap(err, "Comment")
	}
	return nil
}

func (repository *PostgresRepository) SoftDelete(context context.Context, id string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = NOW() WHERE %s = $1 AND %s IS NULL`,
		schema.SocialComment.Table, schema.SocialComment.DeletedAt, schema.SocialComment.ID, schema.SocialComment.DeletedAt)

	tag, err := repository.pool.Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "Comment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}
	return nil
}

// SetVote upserts on the (comment, user) primary key; 0 deletes the row.
func (repository *PostgresRepository) SetVote(context context.Context, commentID, userID string, value int) error {
	if value == 0 {
		query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`,
			schema.SocialCommentVote.Table, schema.SocialCommentVote.CommentID, schema.SocialCommentVote.UserID)
		if _, err := repository.pool.Exec(context, query, commentID, userID); err != nil {
			return dberr.Wrap(err, "Vote")
		}
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %[1]s (%[2]s, %[3]s, %[4]s) VALUES ($1, $2, $3)
		ON CONFLICT (%[2]s, %[3]s) DO UPDATE SET %[4]s = EXCLUDED.%[4]s
	`,
		schema.SocialCommentVote.Table,
		schema.SocialCommentVote.CommentID,
		schema.SocialCommentVote.UserID,
		schema.SocialCommentVote.Vote,
	)
	if _, err := repository.pool.Exec(context, query, commentID, userID, value); err != nil {
		return dberr.Wrap(err, "Vote")
	}
	return nil
}

func (repository *PostgresRepository) ListVotes(context context.Context, commentID string) ([]Vote, error) {
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 ORDER BY %s`,
		schema.SocialCommentVote.UserID, schema.SocialCommentVote.Vote,
		schema.SocialCommentVote.Table, schema.SocialCommentVote.CommentID, schema.SocialCommentVote.CreatedAt)

	rows, err := repository.pool.Query(context, query, commentID)
	if err != nil {
		return nil, dberr.Wrap(err, "Vote")
	}
	votes, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Vote, error) {
		var vote Vote
		var value int
		err := row.Scan(&vote.UserID, &value)
		vote.Vote = voteName(value)
		return vote, err
	})
	if err != nil {
		return nil, dberr.Wrap(err, "Vote")
	}
	return votes, nil
}
