package search

import "context"

// Indexer abstracts search indexing so the pipeline package does not depend
// on a specific search implementation.
type Indexer interface {
	IndexKeyword(ctx context.Context, doc Document) error
	Close() error
}

// Document represents one keyword to be indexed for search.
type Document struct {
	Library  string
	Keyword  string
	ShortDoc string
	Tags     string
	Path     string
	Content  string
}
