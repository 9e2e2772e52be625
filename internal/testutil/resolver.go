package testutil

import (
	"sync"

	"github.com/roach88/cqlsolr/internal/document"
)

// StaticResolver resolves content ids from an in-memory table.
//
// Calls are counted so tests can check that a lookup is never retried.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StaticResolver struct {
	mu    sync.Mutex
	docs  map[int64]document.Reference
	err   error
	calls int
}

// NewStaticResolver creates a resolver knowing docs.
func NewStaticResolver(docs map[int64]document.Reference) *StaticResolver {
	r := &StaticResolver{docs: make(map[int64]document.Reference, len(docs))}
	for id, ref := range docs {
		r.docs[id] = ref
	}
	return r
}

// Put adds or replaces a document.
func (r *StaticResolver) Put(id int64, ref document.Reference) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs[id] = ref
}

// FailWith makes every following lookup fail with err, as a broken backing
// store would. A nil err restores normal lookups.
func (r *StaticResolver) FailWith(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *StaticResolver) DocumentByID(id int64) (document.Reference, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	if r.err != nil {
		return document.Reference{}, false, r.err
	}
	ref, ok := r.docs[id]
	return ref, ok, nil
}

// Calls returns the number of lookups performed so far.
func (r *StaticResolver) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// Ref builds a reference from its spaces and name.
func Ref(name string, spaces ...string) document.Reference {
	return document.Reference{Wiki: "xwiki", Spaces: spaces, Name: name}
}
