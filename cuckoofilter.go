package tinysearch

import (
	cuckoo "github.com/seiflotfy/cuckoofilter"
)

// ═══════════════════════════════════════════════════════════════════════════════
// CUCKOO FILTER
// ═══════════════════════════════════════════════════════════════════════════════
// The cuckoo filter stores an 8-bit fingerprint of each token in one of two
// candidate buckets (4 slots each). When both candidate buckets are full,
// insertion displaces a resident fingerprint to its alternate bucket, chains
// of displacements included. A chain that exceeds the kick limit means the
// filter is too full — construction fails and must retry with more capacity.
//
// Compared to the XOR filter it is larger at the same ε and its build can
// fail, but insertion is incremental and fingerprints can be deleted.
// ═══════════════════════════════════════════════════════════════════════════════

const (
	// cuckooSlack is extra capacity above the token count. Filling a cuckoo
	// filter to the brim makes displacement chains blow past the kick limit;
	// tiny sets need the headroom most.
	cuckooSlack = 10

	// cuckooMaxAttempts bounds the resize-and-rebuild loop. Capacity doubles
	// per attempt, so the budget is generous long before it is exhausted.
	cuckooMaxAttempts = 5
)

// CuckooFilter wraps a bucketed fingerprint filter over raw token bytes.
// The library hashes tokens internally with an unkeyed, stable hash, so
// lookups agree across processes without a stored seed.
type CuckooFilter struct {
	inner *cuckoo.Filter
}

// buildCuckooFilter inserts the token set, retrying with doubled capacity
// whenever a displacement chain overruns the kick limit.
func buildCuckooFilter(tokens []string) (*CuckooFilter, error) {
	capacity := uint(len(tokens) + cuckooSlack)

	for attempt := 0; attempt < cuckooMaxAttempts; attempt++ {
		inner := cuckoo.NewFilter(capacity)

		ok := true
		for _, token := range tokens {
			if !inner.Insert([]byte(token)) {
				ok = false
				break
			}
		}
		if ok {
			return &CuckooFilter{inner: inner}, nil
		}

		capacity *= 2
	}

	return nil, ErrFilterBuild
}

// Contains reports whether the filter probably holds the token.
func (f *CuckooFilter) Contains(token string) bool {
	return f.inner.Lookup([]byte(token))
}

// Kind returns FilterCuckoo.
func (f *CuckooFilter) Kind() FilterKind {
	return FilterCuckoo
}

// encodeBuckets returns the bucket array in the library's canonical byte
// form: one fingerprint byte per slot, bucket by bucket.
func (f *CuckooFilter) encodeBuckets() []byte {
	return f.inner.Encode()
}

// restoreCuckooFilter reassembles a filter from its serialized bucket array.
func restoreCuckooFilter(buckets []byte) (*CuckooFilter, error) {
	inner, err := cuckoo.Decode(buckets)
	if err != nil {
		return nil, err
	}
	return &CuckooFilter{inner: inner}, nil
}
