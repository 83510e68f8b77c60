// Copyright (c) 2026 GenrA. All rights reserved.

/*
Package schema names every table and column used by the repositories.

Queries are assembled with fmt.Sprintf over these descriptors so a column
rename touches one file. Table layouts live in data/migrations.

Schemas:

  - users:   account, identity, session, readingpreference, interest
  - core:    genre, book, bookgenre, chapter
  - library: entry, readingprogress
  - social:  bookrating, comment, commentvote
*/
package schema
