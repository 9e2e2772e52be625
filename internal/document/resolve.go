package document

// Resolver finds the document a numeric content id was migrated to.
//
// A missing document is reported with found == false and a nil error; the
// error is reserved for failures of the backing store.
type Resolver interface {
	DocumentByID(id int64) (ref Reference, found bool, err error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(id int64) (Reference, bool, error)

func (f ResolverFunc) DocumentByID(id int64) (Reference, bool, error) {
	return f(id)
}

// CurrentFunc returns the document the query is evaluated from.
type CurrentFunc func() (Reference, error)

// Serializer turns a reference into the string indexed by Solr.
type Serializer func(Reference) string

// Fixed returns a CurrentFunc always yielding ref.
func Fixed(ref Reference) CurrentFunc {
	return func() (Reference, error) {
		return ref, nil
	}
}
