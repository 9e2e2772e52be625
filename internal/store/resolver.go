package store

import (
	"context"
	"fmt"

	"github.com/roach88/cqlsolr/internal/document"
)

// Resolver adapts the store to document.Resolver. Every lookup runs with ctx.
func (s *Store) Resolver(ctx context.Context) document.Resolver {
	return document.ResolverFunc(func(id int64) (document.Reference, bool, error) {
		return s.DocumentByID(ctx, id)
	})
}

// Current returns a document.CurrentFunc yielding the document of content
// id, looked up when called.
func (s *Store) Current(ctx context.Context, id int64) document.CurrentFunc {
	return func() (document.Reference, error) {
		ref, found, err := s.DocumentByID(ctx, id)
		if err != nil {
			return document.Reference{}, err
		}
		if !found {
			return document.Reference{}, &NotFoundError{ID: id}
		}
		return ref, nil
	}
}

// NotFoundError reports a content id missing from the store.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no document for content id %d", e.ID)
}
