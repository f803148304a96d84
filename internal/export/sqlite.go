package export

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/citegraph/gref/internal/document"
	_ "modernc.org/sqlite"
)

// Link kinds stored in the links table.
const (
	LinkReference = "references"
	LinkCitedIn   = "citedIn"
	LinkRelated   = "related"
)

// createSchema creates the export schema.
func createSchema(ctx context.Context, db *sql.DB) error {
	schema := `
		CREATE TABLE documents (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			journal TEXT,
			date TEXT,
			year TEXT,
			abstract TEXT
		);

		CREATE TABLE authors (
			document_id TEXT NOT NULL REFERENCES documents(id),
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			orcid TEXT,
			PRIMARY KEY (document_id, position)
		);

		CREATE TABLE links (
			document_id TEXT NOT NULL REFERENCES documents(id),
			kind TEXT NOT NULL,
			position INTEGER NOT NULL,
			target_id TEXT NOT NULL,
			PRIMARY KEY (document_id, kind, position)
		);

		CREATE INDEX idx_links_target ON links(target_id);

		-- Full-text search over titles, abstracts and author names
		CREATE VIRTUAL TABLE documents_fts USING fts5(
			id,
			title,
			abstract,
			authors_text
		);
	`
	_, err := db.ExecContext(ctx, schema)
	return err
}

// WriteSQLite writes corpus to a fresh SQLite database at path, replacing any
// existing file. It returns the number of documents written.
func WriteSQLite(ctx context.Context, path string, corpus document.Corpus) (int, error) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return 0, fmt.Errorf("removing old database: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return 0, fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(1)

	if err := createSchema(ctx, db); err != nil {
		return 0, fmt.Errorf("creating schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	docStmt, err := tx.PrepareContext(ctx, `INSERT INTO documents (id, title, journal, date, year, abstract) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing documents insert: %w", err)
	}
	defer docStmt.Close()

	authorStmt, err := tx.PrepareContext(ctx, `INSERT INTO authors (document_id, position, name, orcid) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing authors insert: %w", err)
	}
	defer authorStmt.Close()

	linkStmt, err := tx.PrepareContext(ctx, `INSERT INTO links (document_id, kind, position, target_id) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing links insert: %w", err)
	}
	defer linkStmt.Close()

	ftsStmt, err := tx.PrepareContext(ctx, `INSERT INTO documents_fts (id, title, abstract, authors_text) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, d := range corpus.Sorted() {
		if _, err := docStmt.ExecContext(ctx, d.ID, d.Title, d.Journal, d.Date, d.Year(), d.Abstract); err != nil {
			return 0, fmt.Errorf("inserting document %s: %w", d.ID, err)
		}

		for i, a := range d.Authors {
			if _, err := authorStmt.ExecContext(ctx, d.ID, i, a.Name, nullableString(a.ORCID)); err != nil {
				return 0, fmt.Errorf("inserting author of %s: %w", d.ID, err)
			}
		}

		for _, l := range []struct {
			kind string
			ids  []string
		}{
			{LinkReference, d.References},
			{LinkCitedIn, d.CitedIn},
			{LinkRelated, d.Related},
		} {
			for i, target := range l.ids {
				if _, err := linkStmt.ExecContext(ctx, d.ID, l.kind, i, target); err != nil {
					return 0, fmt.Errorf("inserting %s link of %s: %w", l.kind, d.ID, err)
				}
			}
		}

		names := make([]string, len(d.Authors))
		for i, a := range d.Authors {
			names[i] = a.Name
		}
		if _, err := ftsStmt.ExecContext(ctx, d.ID, d.Title, d.Abstract, strings.Join(names, "; ")); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", d.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing export: %w", err)
	}
	return len(corpus), nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
