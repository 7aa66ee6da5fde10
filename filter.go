// ═══════════════════════════════════════════════════════════════════════════════
// APPROXIMATE SET-MEMBERSHIP FILTERS
// ═══════════════════════════════════════════════════════════════════════════════
// Each document in the index carries a filter: a probabilistic structure that
// answers "does this document probably contain token T?" in constant time,
// using a few kilobytes instead of the document's full token set.
//
// THE CONTRACT:
// -------------
//   - No false negatives: every token inserted at build time answers true.
//   - Bounded false positives: a token NOT in the set answers true with a
//     small probability ε (≈0.4% for the XOR filter, ≈3% for the cuckoo
//     filter at bucket size 4 with 8-bit fingerprints).
//   - Immutable after construction.
//
// A false positive only inflates one document's match count for one query
// token, so a small ε costs an occasional stray result, never a missed one.
//
// HASHING:
// --------
// Tokens are hashed to 64-bit keys with xxHash, which is stable across
// processes and platforms. The XOR filter's construction seed is stored in
// its serialized form, so a filter built here and reloaded inside a sandbox
// answers identically on both sides of the boundary.
// ═══════════════════════════════════════════════════════════════════════════════

package tinysearch

import (
	"errors"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// ErrFilterBuild reports that a filter could not accommodate a token set
// after exhausting its retry budget. The index builder wraps it with the
// offending document's position.
var ErrFilterBuild = errors.New("filter could not accommodate token set")

// FilterKind selects a filter implementation. The kind is written as a
// one-byte tag in the serialized index, so builders and readers configured
// with different defaults still interoperate within the same format version.
type FilterKind uint8

const (
	// FilterXor is the default: a 3-wise XOR filter, ~9.84 bits per token
	// at ε ≈ 2⁻⁸. Smaller than bloom and cuckoo filters at equivalent ε,
	// and construction cannot fail on a deduplicated key set.
	FilterXor FilterKind = 1

	// FilterCuckoo stores 8-bit fingerprints in 4-slot buckets. Larger ε
	// than the XOR filter, but insertion-based construction (no peeling
	// pass) and support for membership deletion if ever needed.
	FilterCuckoo FilterKind = 2
)

// String returns the kind's wire-format name.
func (k FilterKind) String() string {
	switch k {
	case FilterXor:
		return "xor"
	case FilterCuckoo:
		return "cuckoo"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Filter answers approximate membership queries over one document's token
// set. Implementations are immutable after construction and safe for
// concurrent readers.
type Filter interface {
	// Contains reports whether the filter probably holds the token.
	// True is returned for every token present at build time; for absent
	// tokens it is a false positive with probability ≤ ε.
	Contains(token string) bool

	// Kind identifies the implementation for the wire-format tag byte.
	Kind() FilterKind
}

// buildFilter constructs a filter of the requested kind over a deduplicated
// token set produced by the analyzer.
func buildFilter(kind FilterKind, tokens []string) (Filter, error) {
	switch kind {
	case FilterXor:
		return buildXorFilter(tokens)
	case FilterCuckoo:
		return buildCuckooFilter(tokens)
	default:
		return nil, fmt.Errorf("unknown filter kind %d", uint8(kind))
	}
}

// tokenKey hashes a token to the 64-bit key space the XOR filter operates
// on. xxHash is unkeyed and deterministic, which is what makes serialized
// filters answer identically after reloading.
func tokenKey(token string) uint64 {
	return xxhash.Sum64String(token)
}
