package tinysearch

import (
	"fmt"

	"github.com/FastFilter/xorfilter"
)

// ═══════════════════════════════════════════════════════════════════════════════
// XOR FILTER
// ═══════════════════════════════════════════════════════════════════════════════
// The XOR filter (Graf & Lemire, 2019) partitions the key space with three
// hash functions into three fingerprint arrays. For every key k:
//
//	fingerprint(k) == F[h0(k)] ⊕ F[h1(k)] ⊕ F[h2(k)]
//
// Construction solves this linear system by peeling a 3-hypergraph; when the
// graph has cycles the library re-seeds and peels again, so on a
// deduplicated key set construction effectively cannot fail. Lookup is three
// array reads and two XORs.
//
// At 8-bit fingerprints the false-positive rate is ε ≈ 2⁻⁸ ≈ 0.39% and the
// size is ~1.23 bytes per token — a few-hundred-token article costs well
// under a kilobyte.
// ═══════════════════════════════════════════════════════════════════════════════

// XorFilter wraps an 8-bit XOR filter over xxHash-derived token keys.
type XorFilter struct {
	inner xorfilter.Xor8
}

// buildXorFilter hashes the token set to 64-bit keys and peels the filter.
//
// The keys are deduplicated before Populate: the analyzer already dedupes
// tokens, but two distinct tokens colliding in the 64-bit hash space would
// otherwise make the peeling re-seed forever.
func buildXorFilter(tokens []string) (*XorFilter, error) {
	keys := make([]uint64, 0, len(tokens))
	seen := make(map[uint64]struct{}, len(tokens))
	for _, token := range tokens {
		k := tokenKey(token)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		// Populate rejects an empty key set. An empty token set gets a filter
		// with no fingerprint blocks, which answers false for every token.
		return &XorFilter{}, nil
	}

	inner, err := xorfilter.Populate(keys)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFilterBuild, err)
	}
	return &XorFilter{inner: *inner}, nil
}

// Contains reports whether the filter probably holds the token.
func (f *XorFilter) Contains(token string) bool {
	if f.inner.BlockLength == 0 {
		return false
	}
	return f.inner.Contains(tokenKey(token))
}

// Kind returns FilterXor.
func (f *XorFilter) Kind() FilterKind {
	return FilterXor
}

// seed returns the construction seed. It rides in the serialized filter so
// that a reloaded filter hashes keys exactly as the builder did.
func (f *XorFilter) seed() uint64 {
	return f.inner.Seed
}

// fingerprintBlocks returns the three fingerprint arrays of the linear
// system, each blockLength bytes long. They are serialized as three
// length-prefixed arrays; the decoder rejects unequal lengths.
func (f *XorFilter) fingerprintBlocks() [3][]uint8 {
	n := int(f.inner.BlockLength)
	return [3][]uint8{
		f.inner.Fingerprints[0:n],
		f.inner.Fingerprints[n : 2*n],
		f.inner.Fingerprints[2*n : 3*n],
	}
}

// restoreXorFilter reassembles a filter from its serialized parts.
func restoreXorFilter(seed uint64, blocks [3][]uint8) *XorFilter {
	blockLength := len(blocks[0])
	fingerprints := make([]uint8, 0, 3*blockLength)
	fingerprints = append(fingerprints, blocks[0]...)
	fingerprints = append(fingerprints, blocks[1]...)
	fingerprints = append(fingerprints, blocks[2]...)

	return &XorFilter{inner: xorfilter.Xor8{
		Seed:         seed,
		BlockLength:  uint32(blockLength),
		Fingerprints: fingerprints,
	}}
}
