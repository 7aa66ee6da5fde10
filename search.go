// ═══════════════════════════════════════════════════════════════════════════════
// QUERY ENGINE
// ═══════════════════════════════════════════════════════════════════════════════
// Query evaluation is a straight scan: tokenize the query, probe every
// document's filter for every query token, rank by match count. With D
// documents, Q query tokens, and O(1) filter probes, a query costs
// O(D · Q) — sub-millisecond at the corpus sizes this engine targets.
//
// SCORING EXAMPLE:
// ----------------
// Query: "rust async"  →  tokens ["async", "rust"]
//
//	Doc 0 "Rust async"    → contains both       → score 2
//	Doc 1 "Rust basics"   → contains "rust"     → score 1
//	Doc 2 "Python async"  → contains "async"    → score 1
//
// Result order: Doc 0, Doc 1, Doc 2. Ties (docs 1 and 2) break by document
// input order, so repeated queries return byte-identical output.
//
// The query path is synchronous, never fails, allocates no PostIDs, and
// touches no clocks or files — it has to run unchanged inside a WASM-style
// sandbox with nothing but linear memory.
// ═══════════════════════════════════════════════════════════════════════════════

package tinysearch

import (
	"sort"

	"github.com/RoaringBitmap/roaring"
)

// Engine evaluates queries against one immutable Index. It carries the
// analyzer options the index was built with; querying with different
// options (a different stopword list, stemming toggled) silently degrades
// matching, so the builder and engine configurations must agree.
//
// An Engine is read-only and safe for any number of concurrent queries.
type Engine struct {
	idx  *Index
	opts AnalyzerOptions
}

// match pairs a document's position with its query score while ranking.
type match struct {
	docIndex int
	score    int
}

// NewEngine returns an engine over the index using the default analyzer
// options — correct for any index built with NewBuilder's defaults.
func NewEngine(idx *Index) *Engine {
	return NewEngineWithOptions(idx, DefaultAnalyzerOptions())
}

// NewEngineWithOptions returns an engine whose query tokenization uses the
// given analyzer options. Pass the same options the index was built with.
func NewEngineWithOptions(idx *Index, opts AnalyzerOptions) *Engine {
	return &Engine{idx: idx, opts: opts}
}

// Search tokenizes the query, scores every document by how many query
// tokens its filter contains, and returns at most numResults documents
// ordered by (score descending, input order ascending). Documents matching
// no token are dropped; an empty or stopword-only query returns an empty
// result.
//
// The returned pointers alias the Index's own PostIDs and are valid as long
// as the Index is.
func (e *Engine) Search(query string, numResults int) []*PostID {
	idx := e.idx

	tokens := TokenizeWithOptions(query, e.opts)
	if len(tokens) == 0 || numResults <= 0 || len(idx.Entries) == 0 {
		return nil
	}

	// One bitmap per query token: the set of document positions whose
	// filter claims the token. The same term → documents shape an inverted
	// index keeps precomputed, built here on the fly from filter probes.
	tokenDocs := make([]*roaring.Bitmap, len(tokens))
	for ti, token := range tokens {
		docs := roaring.NewBitmap()
		for di, entry := range idx.Entries {
			if entry.Filter.Contains(token) {
				docs.Add(uint32(di))
			}
		}
		tokenDocs[ti] = docs
	}

	// Score = number of token bitmaps a document appears in.
	matches := make([]match, 0, len(idx.Entries))
	for di := range idx.Entries {
		score := 0
		for _, docs := range tokenDocs {
			if docs.Contains(uint32(di)) {
				score++
			}
		}
		if score > 0 {
			matches = append(matches, match{docIndex: di, score: score})
		}
	}

	// Stable sort on descending score: equal-score documents keep the
	// input order they already have.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].score > matches[j].score
	})

	if len(matches) > numResults {
		matches = matches[:numResults]
	}

	results := make([]*PostID, len(matches))
	for i, m := range matches {
		results[i] = &idx.Entries[m.docIndex].Post
	}
	return results
}

// SearchJSON runs Search and encodes the results as a JSON array of
// {title, url, meta} objects — the encoding handed across a host boundary.
// An empty result encodes as "[]", never "null".
func (e *Engine) SearchJSON(query string, numResults int) ([]byte, error) {
	posts := e.Search(query, numResults)

	results := make([]PostID, len(posts))
	for i, post := range posts {
		results[i] = *post
	}
	return json.Marshal(results)
}

// Search is the package-level convenience for default-configuration
// indexes: Search(idx, q, n) == NewEngine(idx).Search(q, n).
func Search(idx *Index, query string, numResults int) []*PostID {
	return NewEngine(idx).Search(query, numResults)
}
