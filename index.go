// ═══════════════════════════════════════════════════════════════════════════════
// THE INDEX
// ═══════════════════════════════════════════════════════════════════════════════
// The index is an ordered sequence of (PostID, Filter) pairs — one entry per
// document, in input order. Input order is load-bearing: a document's
// position is its stable identity, the query engine breaks score ties by
// it, and serialization preserves it end to end.
//
// There is no term → document map here. A query probes every document's
// filter for every query token, which is O(documents × tokens); at the
// small-to-medium corpus sizes this engine targets, that whole scan costs
// well under a millisecond and the payload stays a few kilobytes instead of
// carrying an inverted index.
//
// The index is immutable after build. Rebuilding from scratch is the only
// mutation path, which is what makes concurrent readers safe without locks.
// ═══════════════════════════════════════════════════════════════════════════════

package tinysearch

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Entry pairs one document's display identity with its token filter.
type Entry struct {
	Post   PostID
	Filter Filter
}

// Index is the whole-corpus search structure: entries in document input
// order. Value-immutable after build; any number of concurrent readers may
// share one Index.
type Index struct {
	Entries []Entry
}

// DocumentError wraps a per-document build failure with the position of the
// offending document in the input sequence.
type DocumentError struct {
	Index int
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("document %d: %v", e.Index, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// Builder assembles an Index from documents. The zero value is not usable;
// NewBuilder returns the default configuration (default schema, default
// analyzer, XOR filters, permissive error handling).
type Builder struct {
	Schema   Schema
	Analyzer AnalyzerOptions

	// FilterKind selects the per-document filter implementation.
	FilterKind FilterKind

	// Strict aborts the build on the first per-document error instead of
	// collecting errors and continuing.
	Strict bool
}

// NewBuilder returns a Builder with the default configuration.
func NewBuilder() *Builder {
	return &Builder{
		Schema:     DefaultSchema(),
		Analyzer:   DefaultAnalyzerOptions(),
		FilterKind: FilterXor,
	}
}

// BuildIndex constructs filters for every document and assembles the Index
// in input order.
//
// Per-document failures (missing required field, filter build failure) are
// wrapped in DocumentError. By default they are collected: the returned
// Index holds every document that built cleanly, and the returned error —
// errors.Join of the collected DocumentErrors, nil when all documents
// succeeded — reports the rest. The caller decides whether a partial index
// is acceptable. With Strict set, the first failure aborts the build and
// returns a nil Index.
func (b *Builder) BuildIndex(docs []Document) (*Index, error) {
	idx := &Index{Entries: make([]Entry, 0, len(docs))}

	var errs []error
	for i, doc := range docs {
		entry, err := b.buildEntry(doc)
		if err != nil {
			docErr := &DocumentError{Index: i, Err: err}
			if b.Strict {
				return nil, docErr
			}
			slog.Warn("skipping document", slog.Int("document", i), slog.Any("error", err))
			errs = append(errs, docErr)
			continue
		}
		idx.Entries = append(idx.Entries, entry)
	}

	return idx, errors.Join(errs...)
}

// BuildAndEncode is the build-time convenience path: index the documents
// and serialize the result in one call. Collected per-document errors do
// not suppress the encoded partial index; both are returned.
func (b *Builder) BuildAndEncode(docs []Document) ([]byte, error) {
	idx, buildErr := b.BuildIndex(docs)
	if idx == nil {
		return nil, buildErr
	}

	data, err := idx.Encode()
	if err != nil {
		return nil, err
	}
	return data, buildErr
}

// buildEntry turns one document into an index entry:
//
//  1. Concatenate the schema's indexed fields, separated by single spaces,
//     and tokenize the combined text. Absent fields contribute nothing.
//  2. Build a filter over the token set.
//  3. Retain (title, url, joined metadata) as the entry's PostID.
func (b *Builder) buildEntry(doc Document) (Entry, error) {
	title, url, err := b.Schema.requiredFields(doc)
	if err != nil {
		return Entry{}, err
	}

	indexed := make([]string, 0, len(b.Schema.IndexedFields))
	for _, field := range b.Schema.IndexedFields {
		if value, ok := doc[field]; ok {
			indexed = append(indexed, value)
		}
	}
	tokens := TokenizeWithOptions(strings.Join(indexed, " "), b.Analyzer)

	filter, err := buildFilter(b.FilterKind, tokens)
	if err != nil {
		return Entry{}, err
	}

	meta := make([]string, len(b.Schema.MetadataFields))
	for i, field := range b.Schema.MetadataFields {
		meta[i] = doc[field]
	}

	slog.Info("indexing document",
		slog.String("url", url),
		slog.Int("tokens", len(tokens)))

	return Entry{
		Post:   PostID{Title: title, URL: url, Meta: strings.Join(meta, MetaSeparator)},
		Filter: filter,
	}, nil
}
