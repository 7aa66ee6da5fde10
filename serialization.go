package tinysearch

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SERIALIZATION: The Wire Format Between Build and Query
// ═══════════════════════════════════════════════════════════════════════════════
// The serialized index is the artifact that ships to the client, so the
// format is framed defensively: a decoder handed a corrupted or unrelated
// byte stream must fail loudly, never reconstruct a wrong-answer index.
//
// FORMAT STRUCTURE:
// -----------------
//	[magic: 'T' 'S' 'C' 'H']                      ← bail fast on foreign data
//	[version: 1 byte]                             ← reject unknown revisions
//	[document count: uvarint]
//	for each document, in input order:
//	  [title: uvarint length][bytes]
//	  [url:   uvarint length][bytes]
//	  [meta:  uvarint length][bytes]
//	  [filter kind: 1 byte]
//	  filter payload (kind-specific, below)
//
// XOR filter payload:
//	[seed: uint64 LE]
//	[3 × (uvarint length + fingerprint bytes)]    ← the three hash blocks
//
// Cuckoo filter payload:
//	[bucket size: 1 byte]
//	[uvarint length + bucket array bytes]
//
// All multi-byte integers are little-endian; all variable-length integers
// are unsigned LEB128 (encoding/binary's uvarint). Variable-length counts
// keep a three-document index at tens of bytes of framing instead of
// fixed-width headers — payload budget is the whole point of this engine.
//
// WHY A SEED IN THE PAYLOAD?
// --------------------------
// The XOR filter hashes keys with a seed chosen during construction. A
// reader that re-derived its own seed would compute different hash slots
// and answer garbage, so the builder's seed travels with the fingerprints.
// ═══════════════════════════════════════════════════════════════════════════════

var (
	// ErrCorrupt reports bytes that fail magic, length, or internal
	// consistency checks. Fatal to decoding.
	ErrCorrupt = errors.New("index data is corrupt")

	// ErrUnsupportedVersion reports a well-framed index written by an
	// unknown format revision. Fatal to decoding.
	ErrUnsupportedVersion = errors.New("unsupported index version")

	// ErrIO reports a failure of the underlying byte source or sink.
	ErrIO = errors.New("index i/o failure")
)

// indexMagic is the first four bytes of every serialized index.
var indexMagic = [4]byte{'T', 'S', 'C', 'H'}

// indexVersion is the current format revision.
const indexVersion = uint8(1)

// cuckooBucketSize is the only bucket geometry this revision writes or
// accepts: four one-byte fingerprints per bucket.
const cuckooBucketSize = uint8(4)

// Encode serializes the index to its canonical byte form.
func (idx *Index) Encode() ([]byte, error) {
	e := newIndexEncoder()

	e.buf.Write(indexMagic[:])
	e.buf.WriteByte(indexVersion)
	e.writeUvarint(uint64(len(idx.Entries)))

	for _, entry := range idx.Entries {
		e.writeString(entry.Post.Title)
		e.writeString(entry.Post.URL)
		e.writeString(entry.Post.Meta)

		if err := e.encodeFilter(entry.Filter); err != nil {
			return nil, err
		}
	}

	return e.buf.Bytes(), nil
}

// EncodeTo serializes the index into a writer. Write failures surface as
// ErrIO; the serialization itself cannot fail halfway into the writer.
func (idx *Index) EncodeTo(w io.Writer) error {
	data, err := idx.Encode()
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// DecodeIndex reconstructs an index from its serialized bytes.
//
// The magic sequence and version byte are verified before anything else is
// read, and every length prefix is bounds-checked against the remaining
// input, so corrupted or truncated data fails with ErrCorrupt (or
// ErrUnsupportedVersion) instead of producing a wrong-answer index.
func DecodeIndex(data []byte) (*Index, error) {
	d := newIndexDecoder(data)

	magic, err := d.readN(len(indexMagic))
	if err != nil || !bytes.Equal(magic, indexMagic[:]) {
		return nil, fmt.Errorf("%w: bad magic", ErrCorrupt)
	}

	version, err := d.readByte()
	if err != nil {
		return nil, fmt.Errorf("%w: missing version", ErrCorrupt)
	}
	if version != indexVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, indexVersion)
	}

	count, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	// Every document costs at least a dozen bytes; a count exceeding the
	// remaining input is a lie, not a big index.
	if count > uint64(d.remaining()) {
		return nil, fmt.Errorf("%w: document count %d exceeds input size", ErrCorrupt, count)
	}

	idx := &Index{Entries: make([]Entry, 0, count)}
	for i := uint64(0); i < count; i++ {
		entry, err := d.decodeEntry()
		if err != nil {
			return nil, err
		}
		idx.Entries = append(idx.Entries, entry)
	}

	if d.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, d.remaining())
	}
	return idx, nil
}

// DecodeIndexFrom reads a serialized index from a reader. Read failures
// surface as ErrIO, format failures as ErrCorrupt/ErrUnsupportedVersion.
func DecodeIndexFrom(r io.Reader) (*Index, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return DecodeIndex(data)
}

// ─────────────────────────────────────────────────────────────────────────────
// ENCODER
// ─────────────────────────────────────────────────────────────────────────────

// indexEncoder accumulates the serialized form. Wrapping the buffer in a
// struct keeps the primitive write helpers next to the format they produce.
type indexEncoder struct {
	buf     bytes.Buffer
	scratch [binary.MaxVarintLen64]byte
}

func newIndexEncoder() *indexEncoder {
	return &indexEncoder{}
}

// writeUvarint writes an unsigned LEB128 integer.
func (e *indexEncoder) writeUvarint(v uint64) {
	n := binary.PutUvarint(e.scratch[:], v)
	e.buf.Write(e.scratch[:n])
}

// writeString writes a uvarint-length-prefixed UTF-8 string.
//
// Example: "rust" → [0x04 'r' 'u' 's' 't']
func (e *indexEncoder) writeString(s string) {
	e.writeUvarint(uint64(len(s)))
	e.buf.WriteString(s)
}

// writeBytes writes a uvarint-length-prefixed byte slice.
func (e *indexEncoder) writeBytes(data []byte) {
	e.writeUvarint(uint64(len(data)))
	e.buf.Write(data)
}

// encodeFilter writes the kind tag byte followed by the kind-specific
// payload.
func (e *indexEncoder) encodeFilter(f Filter) error {
	e.buf.WriteByte(uint8(f.Kind()))

	switch filter := f.(type) {
	case *XorFilter:
		var seed [8]byte
		binary.LittleEndian.PutUint64(seed[:], filter.seed())
		e.buf.Write(seed[:])

		for _, block := range filter.fingerprintBlocks() {
			e.writeBytes(block)
		}
		return nil

	case *CuckooFilter:
		e.buf.WriteByte(cuckooBucketSize)
		e.writeBytes(filter.encodeBuckets())
		return nil

	default:
		return fmt.Errorf("cannot encode filter kind %s", f.Kind())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// DECODER
// ─────────────────────────────────────────────────────────────────────────────

// indexDecoder walks the serialized bytes with an explicit offset. Every
// read checks the remaining input first; running off the end is ErrCorrupt
// territory, never a panic.
type indexDecoder struct {
	data   []byte
	offset int
}

func newIndexDecoder(data []byte) *indexDecoder {
	return &indexDecoder{data: data}
}

func (d *indexDecoder) remaining() int {
	return len(d.data) - d.offset
}

// readN consumes exactly n bytes. The returned slice aliases the input.
func (d *indexDecoder) readN(n int) ([]byte, error) {
	if n < 0 || d.remaining() < n {
		return nil, fmt.Errorf("%w: truncated input", ErrCorrupt)
	}
	out := d.data[d.offset : d.offset+n]
	d.offset += n
	return out, nil
}

func (d *indexDecoder) readByte() (byte, error) {
	b, err := d.readN(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// readUvarint consumes an unsigned LEB128 integer.
func (d *indexDecoder) readUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.data[d.offset:])
	if n <= 0 {
		return 0, fmt.Errorf("%w: bad varint", ErrCorrupt)
	}
	d.offset += n
	return v, nil
}

// readString consumes a uvarint-length-prefixed UTF-8 string.
func (d *indexDecoder) readString() (string, error) {
	length, err := d.readUvarint()
	if err != nil {
		return "", err
	}
	if length > uint64(d.remaining()) {
		return "", fmt.Errorf("%w: string length %d exceeds input", ErrCorrupt, length)
	}
	b, err := d.readN(int(length))
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// readBytes consumes a uvarint-length-prefixed byte slice and copies it out
// of the input buffer, so the reconstructed filter owns its storage.
func (d *indexDecoder) readBytes() ([]byte, error) {
	length, err := d.readUvarint()
	if err != nil {
		return nil, err
	}
	if length > uint64(d.remaining()) {
		return nil, fmt.Errorf("%w: payload length %d exceeds input", ErrCorrupt, length)
	}
	b, err := d.readN(int(length))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// decodeEntry reads one (PostID, Filter) pair.
func (d *indexDecoder) decodeEntry() (Entry, error) {
	title, err := d.readString()
	if err != nil {
		return Entry{}, err
	}
	url, err := d.readString()
	if err != nil {
		return Entry{}, err
	}
	meta, err := d.readString()
	if err != nil {
		return Entry{}, err
	}

	filter, err := d.decodeFilter()
	if err != nil {
		return Entry{}, err
	}

	return Entry{
		Post:   PostID{Title: title, URL: url, Meta: meta},
		Filter: filter,
	}, nil
}

// decodeFilter reads the kind tag byte and dispatches to the kind-specific
// payload decoder.
func (d *indexDecoder) decodeFilter() (Filter, error) {
	kind, err := d.readByte()
	if err != nil {
		return nil, err
	}

	switch FilterKind(kind) {
	case FilterXor:
		return d.decodeXorFilter()
	case FilterCuckoo:
		return d.decodeCuckooFilter()
	default:
		return nil, fmt.Errorf("%w: unknown filter kind %d", ErrCorrupt, kind)
	}
}

// decodeXorFilter reads the seed and the three fingerprint blocks. The
// blocks must be equal-length — they are slices of one linear system.
func (d *indexDecoder) decodeXorFilter() (Filter, error) {
	seedBytes, err := d.readN(8)
	if err != nil {
		return nil, err
	}
	seed := binary.LittleEndian.Uint64(seedBytes)

	var blocks [3][]uint8
	for i := range blocks {
		block, err := d.readBytes()
		if err != nil {
			return nil, err
		}
		blocks[i] = block
	}
	if len(blocks[1]) != len(blocks[0]) || len(blocks[2]) != len(blocks[0]) {
		return nil, fmt.Errorf("%w: xor filter blocks have unequal lengths", ErrCorrupt)
	}

	return restoreXorFilter(seed, blocks), nil
}

// decodeCuckooFilter reads the bucket geometry byte and the bucket array.
func (d *indexDecoder) decodeCuckooFilter() (Filter, error) {
	bucketSize, err := d.readByte()
	if err != nil {
		return nil, err
	}
	if bucketSize != cuckooBucketSize {
		return nil, fmt.Errorf("%w: cuckoo bucket size %d, want %d", ErrCorrupt, bucketSize, cuckooBucketSize)
	}

	buckets, err := d.readBytes()
	if err != nil {
		return nil, err
	}

	filter, err := restoreCuckooFilter(buckets)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return filter, nil
}
