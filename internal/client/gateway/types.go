// Copyright (c) 2026 GenrA. All rights reserved.

package gateway

import "time"

// # Identity

// User is the account returned with a session.
type User struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	FullName   string     `json:"full_name"`
	AvatarURL  string     `json:"avatar_url,omitempty"`
	Role       string     `json:"role"`
	IsVerified bool       `json:"is_verified"`
	Coins      int        `json:"coins"`
	BannedAt   *time.Time `json:"banned_at,omitempty"`
	BanReason  string     `json:"ban_reason,omitempty"`
}

// Session is the token pair held by a signed-in client.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *User     `json:"user,omitempty"`
}

// Interest is a followed genre.
type Interest struct {
	GenreID int    `json:"genre_id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
}

// Profile is the private view of the signed-in account.
type Profile struct {
	ID              string     `json:"id"`
	Email           string     `json:"email"`
	FullName        string     `json:"full_name"`
	Username        string     `json:"username"`
	AvatarURL       string     `json:"avatar_url,omitempty"`
	Bio             string     `json:"bio,omitempty"`
	Website         string     `json:"website,omitempty"`
	Role            string     `json:"role"`
	IsVerified      bool       `json:"is_verified"`
	Coins           int        `json:"coins"`
	Interests       []Interest `json:"interests"`
	IsBanned        bool       `json:"is_banned"`
	BanReason       string     `json:"ban_reason,omitempty"`
	NeedsOnboarding bool       `json:"needs_onboarding"`
	CreatedAt       time.Time  `json:"created_at"`
}

// PublicProfile is another reader's profile.
type PublicProfile struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Website   string    `json:"website,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// ProfileChanges is a partial profile update; nil fields are unchanged.
type ProfileChanges struct {
	FullName *string `json:"full_name,omitempty"`
	Username *string `json:"username,omitempty"`
	Bio      *string `json:"bio,omitempty"`
	Website  *string `json:"website,omitempty"`
}

// Preferences customizes the chapter reader.
type Preferences struct {
	FontSize    int       `json:"font_size"`
	Theme       string    `json:"theme"`
	LineSpacing float64   `json:"line_spacing"`
	FontFamily  string    `json:"font_family"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// DeviceSession is one signed-in device.
type DeviceSession struct {
	ID        string    `json:"id"`
	UserAgent string    `json:"user_agent"`
	IPAddress string    `json:"ip_address"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsCurrent bool      `json:"is_current"`
}

// # Catalogue

// Genre is a catalogue category.
type Genre struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	SortOrder int    `json:"sort_order"`
}

// Book is a catalogue entry.
type Book struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	CoverURL    string    `json:"cover_url,omitempty"`
	Description string    `json:"description"`
	Genres      []Genre   `json:"genres"`
	Status      string    `json:"status"`
	Price       int       `json:"price"`
	ViewsCount  int64     `json:"views_count"`
	Rating      float64   `json:"rating"`
	RatingCount int       `json:"rating_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// BookDraft is the body of a new book.
type BookDraft struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	CoverURL    string `json:"cover_url,omitempty"`
	Price       int    `json:"price"`
	Genres      []int  `json:"genres"`
}

// BookChanges is a partial book update.
type BookChanges struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	CoverURL    *string `json:"cover_url,omitempty"`
	Price       *int    `json:"price,omitempty"`
	Genres      []int   `json:"genres,omitempty"`
}

// Chapter is one installment of a book. Content is empty for locked chapters.
type Chapter struct {
	ID             string    `json:"id"`
	BookID         string    `json:"book_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content,omitempty"`
	SequenceNumber int       `json:"sequence_number"`
	IsLocked       bool      `json:"locked"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ChapterDraft is the body of a new chapter.
type ChapterDraft struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	SequenceNumber int    `json:"sequence_number"`
	IsLocked       bool   `json:"locked"`
}

// ChapterChanges is a partial chapter update.
type ChapterChanges struct {
	Title          *string `json:"title,omitempty"`
	Content        *string `json:"content,omitempty"`
	SequenceNumber *int    `json:"sequence_number,omitempty"`
	IsLocked       *bool   `json:"locked,omitempty"`
}

// # Library

// Bookmark is a saved book.
type Bookmark struct {
	BookID       string    `json:"book_id"`
	Title        string    `json:"title"`
	AuthorName   string    `json:"author_name"`
	CoverURL     string    `json:"cover_url,omitempty"`
	Rating       float64   `json:"rating"`
	BookmarkedAt time.Time `json:"bookmarked_at"`
}

// Progress is the last visited chapter of a book.
type Progress struct {
	BookID         string    `json:"book_id"`
	BookTitle      string    `json:"book_title"`
	CoverURL       string    `json:"cover_url,omitempty"`
	ChapterID      string    `json:"chapter_id"`
	ChapterTitle   string    `json:"chapter_title"`
	SequenceNumber int       `json:"sequence_number"`
	VisitedAt      time.Time `json:"visited_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SaveResult reports whether a progress write replaced the stored row.
type SaveResult struct {
	Progress *Progress `json:"progress"`
	Applied  bool      `json:"applied"`
}

// # Social

// Vote values.
const (
	VoteLike    = "like"
	VoteDislike = "dislike"
	VoteNone    = "none"
)

// RatingState is the caller's rating plus the book aggregate.
type RatingState struct {
	BookID      string  `json:"book_id"`
	Stars       int     `json:"stars"`
	Rating      float64 `json:"rating"`
	RatingCount int     `json:"rating_count"`
}

// CommentAuthor is the public identity on a comment.
type CommentAuthor struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}

// Vote is one reader's reaction to a comment.
type Vote struct {
	UserID string `json:"user_id"`
	Vote   string `json:"vote"`
}

// Comment is a flat comment row; ParentID is nil for top-level comments.
type Comment struct {
	ID        string        `json:"id"`
	BookID    string        `json:"book_id"`
	ParentID  *string       `json:"parent_id"`
	Text      string        `json:"text"`
	Author    CommentAuthor `json:"author"`
	Votes     []Vote        `json:"votes"`
	CreatedAt time.Time     `json:"created_at"`
}

// # Paging

// Meta is the pagination block of list responses.
type Meta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Page is one page of a paginated list.
type Page[T any] struct {
	Items []T
	Meta  Meta
}

// PageRequest selects a page; zero values use the server defaults.
type PageRequest struct {
	Page  int
	Limit int
}
