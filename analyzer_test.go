package tinysearch

import (
	"reflect"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// TOKENIZATION PIPELINE TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestTokenize_Simple(t *testing.T) {
	got := Tokenize("quick brown fox")
	want := []string{"brown", "fox", "quick"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_Lowercases(t *testing.T) {
	got := Tokenize("RUST Programming")
	want := []string{"programming", "rust"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_RemovesStopwords(t *testing.T) {
	got := Tokenize("the quick brown fox is in a box")
	want := []string{"box", "brown", "fox", "quick"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_DedupesTokens(t *testing.T) {
	got := Tokenize("go go go gadget")
	want := []string{"gadget", "go"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_SplitsOnPunctuation(t *testing.T) {
	got := Tokenize("tokens, split; here: yes!")
	want := []string{"split", "tokens", "yes"} // "here" is a default stopword

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_HyphenSeparates(t *testing.T) {
	got := Tokenize("full-text")
	want := []string{"full", "text"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_UnderscoreKept(t *testing.T) {
	got := Tokenize("snake_case")
	want := []string{"snake_case"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_StripsMarkup(t *testing.T) {
	got := Tokenize("<h1>Hello</h1><p>search world</p>")
	want := []string{"hello", "search", "world"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_IllFormedTagDropsToEnd(t *testing.T) {
	// A '<' with no closing '>' swallows the rest of the input.
	got := Tokenize("visible <a href=broken rest never closes")
	want := []string{"visible"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_TagBoundarySeparatesWords(t *testing.T) {
	// Words adjacent across a tag must not fuse into one token.
	got := Tokenize("lazy</p><p>dog")
	want := []string{"dog", "lazy"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize() = %v, want %v", got, want)
	}
}

func TestTokenize_EmptyInput(t *testing.T) {
	if got := Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %v, want empty", got)
	}
}

func TestTokenize_OnlySeparators(t *testing.T) {
	if got := Tokenize("... !!! ???"); len(got) != 0 {
		t.Errorf("Tokenize() = %v, want empty", got)
	}
}

func TestTokenize_NeverEmitsEmptyOrStopword(t *testing.T) {
	tokens := Tokenize("The <b>quick</b> brown-fox, and a dog!")

	for _, token := range tokens {
		if token == "" {
			t.Error("Tokenize() emitted an empty token")
		}
		if _, stop := englishStopwords[token]; stop {
			t.Errorf("Tokenize() emitted stopword %q", token)
		}
	}
}

func TestTokenize_Deterministic(t *testing.T) {
	text := "Determinism matters: the SAME input must give the same output."

	first := Tokenize(text)
	second := Tokenize(text)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Tokenize() not deterministic: %v vs %v", first, second)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// ANALYZER CONFIGURATION TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestTokenizeWithOptions_CustomStopwords(t *testing.T) {
	opts := AnalyzerOptions{Stopwords: StopwordSet([]string{"rust", "THE"})}

	got := TokenizeWithOptions("the rust book", opts)
	want := []string{"book"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeWithOptions() = %v, want %v", got, want)
	}
}

func TestTokenizeWithOptions_NoStopwords(t *testing.T) {
	opts := AnalyzerOptions{Stopwords: nil}

	got := TokenizeWithOptions("the fox", opts)
	want := []string{"fox", "the"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeWithOptions() = %v, want %v", got, want)
	}
}

func TestTokenizeWithOptions_Stemming(t *testing.T) {
	opts := DefaultAnalyzerOptions()
	opts.EnableStemming = true

	got := TokenizeWithOptions("running runs", opts)
	want := []string{"run"}

	if !reflect.DeepEqual(got, want) {
		t.Errorf("TokenizeWithOptions() = %v, want %v", got, want)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// DEFAULT STOPWORD LIST TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestDefaultStopwords_Membership(t *testing.T) {
	present := []string{"the", "a", "an", "is", "are", "was", "of", "and", "or", "with", "they", "i"}
	for _, word := range present {
		if _, ok := englishStopwords[word]; !ok {
			t.Errorf("default stopword list is missing %q", word)
		}
	}

	absent := []string{"rust", "search", "quick", "database"}
	for _, word := range absent {
		if _, ok := englishStopwords[word]; ok {
			t.Errorf("default stopword list wrongly contains %q", word)
		}
	}
}

func TestDefaultStopwords_ApproximateSize(t *testing.T) {
	// The built-in list is "roughly a hundred" common English words.
	if n := len(englishStopwords); n < 90 || n > 160 {
		t.Errorf("default stopword list has %d words, want roughly 100", n)
	}
}
