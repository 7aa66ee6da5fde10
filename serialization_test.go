package tinysearch

import (
	"bytes"
	"errors"
	"reflect"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// FRAMING TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestIndex_Encode_MagicAndVersion(t *testing.T) {
	idx := mustBuild(t, []Document{post("Solo", "/s", "")})

	data, err := idx.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	if len(data) < 5 {
		t.Fatalf("Encode() produced %d bytes, want at least magic + version", len(data))
	}
	if !bytes.Equal(data[:4], []byte("TSCH")) {
		t.Errorf("magic = %q, want \"TSCH\"", data[:4])
	}
	if data[4] != indexVersion {
		t.Errorf("version byte = %d, want %d", data[4], indexVersion)
	}
}

func TestDecodeIndex_BadMagic(t *testing.T) {
	_, err := DecodeIndex([]byte("NOPE\x01\x00"))

	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("DecodeIndex() error = %v, want ErrCorrupt", err)
	}
}

func TestDecodeIndex_EmptyInput(t *testing.T) {
	_, err := DecodeIndex(nil)

	if !errors.Is(err, ErrCorrupt) {
		t.Errorf("DecodeIndex(nil) error = %v, want ErrCorrupt", err)
	}
}

func TestDecodeIndex_UnsupportedVersion(t *testing.T) {
	idx := mustBuild(t, []Document{post("Solo", "/s", "")})
	data, err := idx.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	data[4] = 99 // future revision

	if _, err := DecodeIndex(data); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("DecodeIndex() error = %v, want ErrUnsupportedVersion", err)
	}
}

func TestDecodeIndex_Truncated(t *testing.T) {
	idx := mustBuild(t, []Document{post("Rust Programming", "/rust", "a longer body for bulk")})
	data, err := idx.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	// Strict prefixes past the header (every seventh cut) must fail
	// cleanly, never panic.
	for cut := 5; cut < len(data); cut += 7 {
		if _, err := DecodeIndex(data[:cut]); !errors.Is(err, ErrCorrupt) {
			t.Errorf("DecodeIndex(data[:%d]) error = %v, want ErrCorrupt", cut, err)
		}
	}
}

func TestDecodeIndex_TrailingGarbage(t *testing.T) {
	idx := mustBuild(t, []Document{post("Solo", "/s", "")})
	data, err := idx.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}

	data = append(data, 0xde, 0xad)

	if _, err := DecodeIndex(data); !errors.Is(err, ErrCorrupt) {
		t.Errorf("DecodeIndex() error = %v, want ErrCorrupt", err)
	}
}

func TestDecodeIndex_LyingDocumentCount(t *testing.T) {
	// Header claiming an enormous document count over no payload.
	data := append([]byte("TSCH"), indexVersion)
	data = append(data, 0xff, 0xff, 0xff, 0xff, 0x0f) // uvarint ~4 billion

	if _, err := DecodeIndex(data); !errors.Is(err, ErrCorrupt) {
		t.Errorf("DecodeIndex() error = %v, want ErrCorrupt", err)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// ROUND-TRIP TESTS
// ═══════════════════════════════════════════════════════════════════════════════
// The deserialized index must be logically equivalent: identical search
// results for any query, not identical in-memory representation.

func roundTrip(t *testing.T, idx *Index) *Index {
	t.Helper()

	data, err := idx.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	decoded, err := DecodeIndex(data)
	if err != nil {
		t.Fatalf("DecodeIndex() error: %v", err)
	}
	return decoded
}

func TestRoundTrip_SearchEquivalence(t *testing.T) {
	for _, kind := range []FilterKind{FilterXor, FilterCuckoo} {
		b := NewBuilder()
		b.FilterKind = kind

		idx, err := b.BuildIndex([]Document{
			post("Rust async", "/a", "await and futures"),
			post("Rust basics", "/b", "ownership and borrowing"),
			post("Python async", "/c", "event loops"),
		})
		if err != nil {
			t.Fatalf("BuildIndex(%s) error: %v", kind, err)
		}
		decoded := roundTrip(t, idx)

		queries := []string{"", "rust", "rust async", "Rust", "the", "ownership borrowing", "quantum"}
		for _, query := range queries {
			want := searchValues(NewEngine(idx), query, 5)
			got := searchValues(NewEngine(decoded), query, 5)

			if !reflect.DeepEqual(got, want) {
				t.Errorf("%s: search(%q) after round-trip = %v, want %v", kind, query, got, want)
			}
		}
	}
}

func TestRoundTrip_PostIDsPreserved(t *testing.T) {
	idx := mustBuild(t, []Document{
		{"title": "With Meta", "url": "/m", "meta": "extra payload"},
		{"title": "Unicode Títle ✓", "url": "/u"},
	})
	decoded := roundTrip(t, idx)

	for i := range idx.Entries {
		if decoded.Entries[i].Post != idx.Entries[i].Post {
			t.Errorf("Entries[%d].Post = %+v, want %+v", i, decoded.Entries[i].Post, idx.Entries[i].Post)
		}
	}
}

func TestRoundTrip_EmptyIndex(t *testing.T) {
	decoded := roundTrip(t, &Index{})

	if len(decoded.Entries) != 0 {
		t.Errorf("decoded empty index has %d entries, want 0", len(decoded.Entries))
	}
}

func TestRoundTrip_DoubleEncodeIsStable(t *testing.T) {
	idx := mustBuild(t, []Document{
		post("Rust Programming", "/rust", ""),
		post("Database Design", "/db", ""),
	})

	first, err := idx.Encode()
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	second, err := roundTrip(t, idx).Encode()
	if err != nil {
		t.Fatalf("Encode() after round-trip error: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("encode → decode → encode changed the byte sequence")
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// I/O BOUNDARY TESTS
// ═══════════════════════════════════════════════════════════════════════════════

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("connection reset")
}

func TestIndex_EncodeTo_And_DecodeIndexFrom(t *testing.T) {
	idx := mustBuild(t, []Document{post("Streamed", "/s", "")})

	var buf bytes.Buffer
	if err := idx.EncodeTo(&buf); err != nil {
		t.Fatalf("EncodeTo() error: %v", err)
	}

	decoded, err := DecodeIndexFrom(&buf)
	if err != nil {
		t.Fatalf("DecodeIndexFrom() error: %v", err)
	}
	if decoded.Entries[0].Post.URL != "/s" {
		t.Errorf("decoded URL = %q, want \"/s\"", decoded.Entries[0].Post.URL)
	}
}

func TestIndex_EncodeTo_WriterFailure(t *testing.T) {
	idx := mustBuild(t, []Document{post("Doomed", "/d", "")})

	if err := idx.EncodeTo(failingWriter{}); !errors.Is(err, ErrIO) {
		t.Errorf("EncodeTo() error = %v, want ErrIO", err)
	}
}

func TestDecodeIndexFrom_ReaderFailure(t *testing.T) {
	if _, err := DecodeIndexFrom(failingReader{}); !errors.Is(err, ErrIO) {
		t.Errorf("DecodeIndexFrom() error = %v, want ErrIO", err)
	}
}
