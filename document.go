package tinysearch

import (
	"errors"
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

// json is the module-wide JSON codec. json-iterator in compatible mode
// behaves exactly like encoding/json but parses the build-time document
// list considerably faster.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	// ErrInvalidJSON reports that the input document list could not be
	// parsed at all. Fatal to ParsePosts.
	ErrInvalidJSON = errors.New("invalid posts json")

	// ErrSchemaMismatch reports a document missing a required field.
	// Per-document; collected by the builder, not fatal by default.
	ErrSchemaMismatch = errors.New("document is missing a required field")
)

// titleField is the one field every schema requires: result display needs
// a title, so it is not remappable the way the URL field is.
const titleField = "title"

// MetaSeparator joins the values of multiple declared metadata fields into
// the single opaque Meta string echoed with results. The ASCII unit
// separator never occurs in ordinary text, so callers can split Meta back
// apart losslessly.
const MetaSeparator = "\x1f"

// Document is one build-time input record: a flat map of string fields.
// Which fields are indexed, which become metadata, and which one is the URL
// is decided by the Schema, not by the document itself.
type Document map[string]string

// PostID identifies a document in search results: its title, its URL, and
// an opaque metadata string (possibly empty). One PostID is retained per
// indexed document; the search engine hands out pointers to these, never
// copies.
type PostID struct {
	Title string `json:"title"`
	URL   string `json:"url"`
	Meta  string `json:"meta"`
}

// Schema maps document fields onto the index's roles.
//
// IndexedFields feed the document's filter, MetadataFields concatenate into
// PostID.Meta (joined by MetaSeparator, in declaration order), and URLField
// names the field holding the document's URL. Fields a document carries but
// the schema never names are ignored.
type Schema struct {
	IndexedFields  []string
	MetadataFields []string
	URLField       string
}

// DefaultSchema indexes title and body, echoes the optional "meta" field,
// and reads the URL from "url".
func DefaultSchema() Schema {
	return Schema{
		IndexedFields:  []string{"title", "body"},
		MetadataFields: []string{"meta"},
		URLField:       "url",
	}
}

// ParsePosts decodes the build-time JSON document list: an array of flat
// objects. String fields are kept; null and non-string values are treated
// as absent (a null "body" means title-only indexing). A document missing a
// required field is NOT rejected here — field requirements belong to the
// schema and are enforced per document during the build, so one bad record
// cannot hide the rest of the corpus.
func ParsePosts(data []byte) ([]Document, error) {
	var raw []map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	docs := make([]Document, len(raw))
	for i, fields := range raw {
		doc := make(Document, len(fields))
		for name, value := range fields {
			if s, ok := value.(string); ok {
				doc[name] = s
			}
		}
		docs[i] = doc
	}
	return docs, nil
}

// requiredFields verifies the document carries a title and a URL and
// returns them. Everything else the schema names is optional.
func (s Schema) requiredFields(doc Document) (title, url string, err error) {
	title, ok := doc[titleField]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrSchemaMismatch, titleField)
	}
	url, ok = doc[s.URLField]
	if !ok {
		return "", "", fmt.Errorf("%w: %q", ErrSchemaMismatch, s.URLField)
	}
	return title, url, nil
}
