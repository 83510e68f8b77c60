// Copyright (c) 2026 GenrA. All rights reserved.

package schema

// SocialBookRatingTable represents the 'social.bookrating' table
type SocialBookRatingTable struct {
	Table     string
	UserID    string
	BookID    string
	Stars     string
	CreatedAt string
	UpdatedAt string
}

// SocialBookRating is the schema definition for social.bookrating
var SocialBookRating = SocialBookRatingTable{
	Table:     "social.bookrating",
	UserID:    "userid",
	BookID:    "bookid",
	Stars:     "stars",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

// SocialCommentTable represents the 'social.comment' table
type SocialCommentTable struct {
	Table     string
	ID        string
	BookID    string
	UserID    string
	ParentID  string
	Body      string
	CreatedAt string
	DeletedAt string
}

// SocialComment is the schema definition for social.comment
var SocialComment = SocialCommentTable{
	Table:     "social.comment",
	ID:        "id",
	BookID:    "bookid",
	UserID:    "userid",
	ParentID:  "parentid",
	Body:      "body",
	CreatedAt: "createdat",
	DeletedAt: "deletedat",
}

// SocialCommentVoteTable represents the 'social.commentvote' table
type SocialCommentVoteTable struct {
	Table     string
	CommentID string
	UserID    string
	Vote      string
	CreatedAt string
}

// SocialCommentVote is the schema definition for social.commentvote
var SocialCommentVote = SocialCommentVoteTable{
	Table:     "social.commentvote",
	CommentID: "commentid",
	UserID:    "userid",
	Vote:      "vote",
	CreatedAt: "createdat",
}
