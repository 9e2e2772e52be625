package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/cqlsolr/internal/document"
)

// Document is one row of the index.
type Document struct {
	ID  int64              `json:"id"`
	Ref document.Reference `json:"ref"`
}

// DocumentByID returns the document content id was migrated to.
// A missing id is reported with found == false and a nil error.
func (s *Store) DocumentByID(ctx context.Context, id int64) (document.Reference, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT content_id, wiki, spaces, name
		FROM documents
		WHERE content_id = ?
	`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return document.Reference{}, false, nil
	}
	if err != nil {
		return document.Reference{}, false, fmt.Errorf("read document %d: %w", id, err)
	}
	return doc.Ref, true, nil
}

// DocumentsByFullName returns the content ids mapped to the document with
// the given local name, ordered by id.
func (s *Store) DocumentsByFullName(ctx context.Context, fullname string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_id, wiki, spaces, name
		FROM documents
		WHERE fullname = ?
		ORDER BY content_id ASC
	`, fullname)
	if err != nil {
		return nil, fmt.Errorf("query documents by fullname: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// ListDocuments returns every document, most recently written last.
func (s *Store) ListDocuments(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT content_id, wiki, spaces, name
		FROM documents
		ORDER BY seq ASC, content_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// rowScanner is implemented by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var (
		doc        Document
		spacesJSON string
	)
	if err := row.Scan(&doc.ID, &doc.Ref.Wiki, &spacesJSON, &doc.Ref.Name); err != nil {
		return Document{}, err
	}

	spaces, err := unmarshalSpaces(spacesJSON)
	if err != nil {
		return Document{}, err
	}
	doc.Ref.Spaces = spaces
	return doc, nil
}

func scanDocuments(rows *sql.Rows) ([]Document, error) {
	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}
