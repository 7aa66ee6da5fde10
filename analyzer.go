// ═══════════════════════════════════════════════════════════════════════════════
// TEXT ANALYSIS OVERVIEW
// ═══════════════════════════════════════════════════════════════════════════════
// Text analysis transforms raw text into a deduplicated set of searchable
// tokens. The same pipeline runs twice: once at build time over document
// fields, and once at query time over the user's query string. The two runs
// must agree bit-for-bit, otherwise a token inserted into a document filter
// could never be probed back out of it.
//
// ANALYSIS PIPELINE:
// ------------------
//  1. Markup stripping → Drop HTML-ish tags ("<p>hi</p>" → " hi ")
//  2. Lowercasing      → Normalize case ("Quick" → "quick")
//  3. Tokenization     → Split on whitespace and punctuation
//  4. Stop word removal → Remove common words ("the", "a", etc.)
//  5. Stemming (opt-in) → Reduce words to root form ("running" → "run")
//  6. Deduplication    → Collapse repeats into a sorted set
//
// EXAMPLE TRANSFORMATION:
// -----------------------
// Input:  "<h1>The Quick-Brown Fox</h1>"
// Step 1: " The Quick-Brown Fox "                (strip markup; tag → space)
// Step 2: " the quick-brown fox "                (lowercase)
// Step 3: ["the", "quick", "brown", "fox"]       (split; hyphen separates)
// Step 4: ["quick", "brown", "fox"]              (remove stopwords)
// Step 6: ["brown", "fox", "quick"]              (dedupe, sorted)
//
// Unlike a positional index, the output is a set: the filter only answers
// "does this document contain token T", so duplicates carry no information.
// ═══════════════════════════════════════════════════════════════════════════════

package tinysearch

import (
	"sort"
	"strings"
	"unicode"

	snowballeng "github.com/kljensen/snowball/english"
)

// AnalyzerOptions holds configuration options for text analysis.
//
// The zero value applies no stopwords and no stemming; call
// DefaultAnalyzerOptions for the standard configuration and adjust from
// there. The same options value must be used for building an
// index and for querying it — the options are deliberately not part of the
// serialized index, just like the stopword list they carry.
type AnalyzerOptions struct {
	Stopwords      map[string]struct{} // Tokens excluded from indexing and querying
	EnableStemming bool                // Whether to apply Snowball stemming (default: false)
}

// DefaultAnalyzerOptions returns the standard analyzer configuration:
// the built-in English stopword list and no stemming.
func DefaultAnalyzerOptions() AnalyzerOptions {
	return AnalyzerOptions{
		Stopwords:      englishStopwords,
		EnableStemming: false,
	}
}

// StopwordSet converts a word list into the set form AnalyzerOptions carries.
// Words are lowercased so the set matches the pipeline's normalized output.
func StopwordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// Tokenize transforms raw text into a sorted, deduplicated token set using
// the default pipeline.
//
// Example:
//
//	tokens := Tokenize("The quick brown fox jumps over the lazy dog")
//	// Returns: ["brown", "dog", "fox", "jumps", "lazy", "quick"]
func Tokenize(text string) []string {
	return TokenizeWithOptions(text, DefaultAnalyzerOptions())
}

// TokenizeWithOptions transforms text using a custom configuration.
//
// The function is pure and deterministic: the same (text, options) input
// always produces the same output, and it cannot fail. The output contains
// no empty string and no stopword.
func TokenizeWithOptions(text string, opts AnalyzerOptions) []string {
	text = stripMarkup(text)
	text = strings.ToLower(text)

	tokens := splitTokens(text)
	tokens = stopwordFilter(tokens, opts.Stopwords)

	if opts.EnableStemming {
		tokens = stemmerFilter(tokens)
	}

	return dedupeTokens(tokens)
}

// stripMarkup drops HTML-ish tags using a permissive scanner.
//
// Everything between '<' and the next '>' is removed, the delimiters
// included. An ill-formed tag (a '<' with no closing '>') drops the rest of
// the input. Each dropped tag is replaced by a single space so that words
// adjacent across a tag boundary ("lazy</p><p>dog") do not fuse together.
//
// Examples:
//
//	"<p>hello</p>"       → " hello "
//	"a <b>bold</b> move" → "a  bold  move"
//	"broken <tag"        → "broken  "
func stripMarkup(text string) string {
	if !strings.ContainsRune(text, '<') {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))

	inTag := false
	for _, r := range text {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
			}
		case r == '<':
			inTag = true
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// tokenSeparators are the punctuation characters that split tokens, in
// addition to all Unicode whitespace. The hyphen is a separator: "x-y"
// yields the tokens "x" and "y". Underscores are not separators.
const tokenSeparators = ".,;:!?()[]{}\"'`~@#$%^&*=+/\\|<>-"

// splitTokens breaks normalized text into raw tokens.
//
// strings.FieldsFunc treats runs of separators as one and never produces an
// empty token, so no length filtering is needed afterwards.
func splitTokens(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(tokenSeparators, r)
	})
}

// stopwordFilter removes tokens found in the stopword set.
//
// Stopwords appear in almost every document, so indexing them would load
// every filter with tokens that cannot distinguish documents. They are
// removed from queries by the same rule, so a stopword-only query matches
// nothing rather than everything.
func stopwordFilter(tokens []string, stopwords map[string]struct{}) []string {
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, stop := stopwords[token]; !stop {
			r = append(r, token)
		}
	}
	return r
}

// stemmerFilter reduces words to their root form using the Snowball
// (Porter2) English stemmer.
//
//	["running", "quickly", "foxes"] → ["run", "quick", "fox"]
//
// Stemming is opt-in: it changes the token stream on both the build and the
// query side, so an index built with stemming enabled must be queried with
// stemming enabled.
func stemmerFilter(tokens []string) []string {
	r := make([]string, len(tokens))
	for i, token := range tokens {
		r[i] = snowballeng.Stem(token, false)
	}
	return r
}

// dedupeTokens collapses duplicates and returns the set in sorted order.
// Sorting gives the pipeline a deterministic output order, which keeps
// filter construction and tests reproducible.
func dedupeTokens(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	r := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, dup := seen[token]; dup {
			continue
		}
		seen[token] = struct{}{}
		r = append(r, token)
	}
	sort.Strings(r)
	return r
}

// englishStopwords is the built-in English stopword list: roughly a hundred
// articles, pronouns, common auxiliaries, prepositions and conjunctions.
//
// Uses struct{} (empty struct) as the value type: 0 bytes per entry versus
// 1 for bool. Callers can replace the list per index via
// AnalyzerOptions.Stopwords; this map itself is read-only for the lifetime
// of the process.
var englishStopwords = map[string]struct{}{
	"a":          {},
	"about":      {},
	"above":      {},
	"after":      {},
	"again":      {},
	"all":        {},
	"am":         {},
	"an":         {},
	"and":        {},
	"any":        {},
	"are":        {},
	"as":         {},
	"at":         {},
	"be":         {},
	"because":    {},
	"been":       {},
	"before":     {},
	"being":      {},
	"below":      {},
	"between":    {},
	"both":       {},
	"but":        {},
	"by":         {},
	"can":        {},
	"could":      {},
	"did":        {},
	"do":         {},
	"does":       {},
	"doing":      {},
	"down":       {},
	"during":     {},
	"each":       {},
	"few":        {},
	"for":        {},
	"from":       {},
	"further":    {},
	"had":        {},
	"has":        {},
	"have":       {},
	"having":     {},
	"he":         {},
	"her":        {},
	"here":       {},
	"hers":       {},
	"herself":    {},
	"him":        {},
	"himself":    {},
	"his":        {},
	"how":        {},
	"i":          {},
	"if":         {},
	"in":         {},
	"into":       {},
	"is":         {},
	"it":         {},
	"its":        {},
	"itself":     {},
	"just":       {},
	"me":         {},
	"more":       {},
	"most":       {},
	"my":         {},
	"myself":     {},
	"no":         {},
	"nor":        {},
	"not":        {},
	"now":        {},
	"of":         {},
	"off":        {},
	"on":         {},
	"once":       {},
	"only":       {},
	"or":         {},
	"other":      {},
	"our":        {},
	"ours":       {},
	"ourselves":  {},
	"out":        {},
	"over":       {},
	"own":        {},
	"same":       {},
	"she":        {},
	"should":     {},
	"so":         {},
	"some":       {},
	"such":       {},
	"than":       {},
	"that":       {},
	"the":        {},
	"their":      {},
	"theirs":     {},
	"them":       {},
	"themselves": {},
	"then":       {},
	"there":      {},
	"these":      {},
	"they":       {},
	"this":       {},
	"those":      {},
	"through":    {},
	"to":         {},
	"too":        {},
	"under":      {},
	"until":      {},
	"up":         {},
	"very":       {},
	"was":        {},
	"we":         {},
	"were":       {},
	"what":       {},
	"when":       {},
	"where":      {},
	"which":      {},
	"while":      {},
	"who":        {},
	"whom":       {},
	"why":        {},
	"will":       {},
	"with":       {},
	"would":      {},
	"you":        {},
	"your":       {},
	"yours":      {},
	"yourself":   {},
	"yourselves": {}}
