package store

import (
	"context"
	"fmt"

	"github.com/roach88/cqlsolr/internal/document"
)

// PutDocument maps a content id to a document, replacing any previous
// mapping of that id.
func (s *Store) PutDocument(ctx context.Context, id int64, ref document.Reference) error {
	if err := ref.Validate(); err != nil {
		return fmt.Errorf("put document %d: %w", id, err)
	}

	spacesJSON, err := marshalSpaces(ref.Spaces)
	if err != nil {
		return fmt.Errorf("put document %d: %w", id, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (content_id, wiki, spaces, name, fullname, seq)
		VALUES (?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents))
		ON CONFLICT(content_id) DO UPDATE SET
			wiki = excluded.wiki,
			spaces = excluded.spaces,
			name = excluded.name,
			fullname = excluded.fullname,
			seq = excluded.seq
	`,
		id,
		ref.Wiki,
		spacesJSON,
		ref.Name,
		document.Local(ref),
	)
	if err != nil {
		return fmt.Errorf("put document %d: %w", id, err)
	}

	return nil
}

// DeleteDocument removes the mapping of id. It reports whether a row existed.
func (s *Store) DeleteDocument(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE content_id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete document %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete document %d: %w", id, err)
	}
	return n > 0, nil
}
