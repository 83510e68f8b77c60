// Copyright (c) 2026 GenrA. All rights reserved.

package schema

// LibraryEntryTable represents the 'library.entry' table (bookmarks)
type LibraryEntryTable struct {
	Table     string
	UserID    string
	BookID    string
	CreatedAt string
}

// LibraryEntry is the schema definition for library.entry
var LibraryEntry = LibraryEntryTable{
	Table:     "library.entry",
	UserID:    "userid",
	BookID:    "bookid",
	CreatedAt: "createdat",
}

// LibraryReadingProgressTable represents the 'library.readingprogress' table
type LibraryReadingProgressTable struct {
	Table     string
	UserID    string
	BookID    string
	ChapterID string
	VisitedAt string
	UpdatedAt string
}

// LibraryReadingProgress is the schema definition for library.readingprogress
var LibraryReadingProgress = LibraryReadingProgressTable{
	Table:     "library.readingprogress",
	UserID:    "userid",
	BookID:    "bookid",
	ChapterID: "chapterid",
	VisitedAt: "visitedat",
	UpdatedAt: "updatedat",
}
