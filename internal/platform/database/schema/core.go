// Copyright (c) 2026 GenrA. All rights reserved.

package schema

// CoreGenreTable represents the 'core.genre' table
type CoreGenreTable struct {
	Table     string
	ID        string
	Name      string
	Slug      string
	SortOrder string
}

// CoreGenre is the schema definition for core.genre
var CoreGenre = CoreGenreTable{
	Table:     "core.genre",
	ID:        "id",
	Name:      "name",
	Slug:      "slug",
	SortOrder: "sortorder",
}

// CoreBookTable represents the 'core.book' table
type CoreBookTable struct {
	Table        string
	ID           string
	AuthorID     string
	Title        string
	Description  string
	CoverURL     string
	Status       string
	Price        string
	ViewCount    string
	Rating       string
	RatingCount  string
	SearchVector string
	CreatedAt    string
	UpdatedAt    string
	DeletedAt    string
}

// CoreBook is the schema definition for core.book
var CoreBook = CoreBookTable{
	Table:        "core.book",
	ID:           "id",
	AuthorID:     "authorid",
	Title:        "title",
	Description:  "description",
	CoverURL:     "coverurl",
	Status:       "status",
	Price:        "price",
	ViewCount:    "viewcount",
	Rating:       "rating",
	RatingCount:  "ratingcount",
	SearchVector: "searchvector",
	CreatedAt:    "createdat",
	UpdatedAt:    "updatedat",
	DeletedAt:    "deletedat",
}

// CoreBookGenreTable represents the 'core.bookgenre' join table
type CoreBookGenreTable struct {
	Table   string
	BookID  string
	GenreID string
}

// CoreBookGenre is the schema definition for core.bookgenre
var CoreBookGenre = CoreBookGenreTable{
	Table:   "core.bookgenre",
	BookID:  "bookid",
	GenreID: "genreid",
}

// CoreChapterTable represents the 'core.chapter' table
type CoreChapterTable struct {
	Table          string
	ID             string
	BookID         string
	Title          string
	Content        string
	SequenceNumber string
	IsLocked       string
	CreatedAt      string
	UpdatedAt      string
	DeletedAt      string
}

// CoreChapter is the schema definition for core.chapter
var CoreChapter = CoreChapterTable{
	Table:          "core.chapter",
	ID:             "id",
	BookID:         "bookid",
	Title:          "title",
	Content:        "content",
	SequenceNumber: "sequencenumber",
	IsLocked:       "islocked",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
	DeletedAt:      "deletedat",
}
