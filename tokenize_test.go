package sentiment

import (
	"context"
	"reflect"
	"testing"
)

func TestTokenizeNormalization(t *testing.T) {
	tests := []struct {
		text     string
		expected []string
		desc     string
	}{
		{
			"Check out https://example.com/page?x=1 :)",
			[]string{"check", "out", AliasURL, AliasSmile},
			"URL and emoticon",
		},
		{
			"www.example.org is down",
			[]string{AliasURL, "is", "down"},
			"bare www URL",
		},
		{
			"@someone thanks!! <3",
			[]string{AliasUser, "thanks", AliasHeart},
			"mention and heart",
		},
		{
			"#winning so gr8",
			[]string{AliasHashtag, "winning", "so", "great"},
			"hashtag and slang expansion",
		},
		{
			"It cost 100 dollars",
			[]string{"it", "cost", AliasNumber, "dollars"},
			"number alias",
		},
		{
			"I loooove it",
			[]string{"i", "loove", "it"},
			"elongation collapsed",
		},
		{
			"Great movie.<br />Loved it!",
			[]string{"great", "movie", "loved", "it"},
			"HTML break stripped",
		},
		{
			"bad :(",
			[]string{"bad", AliasSad},
			"sad emoticon",
		},
		{
			"so good :).",
			[]string{"so", "good", AliasSmile},
			"emoticon with trailing punctuation",
		},
		{
			"fish &amp; chips",
			[]string{"fish", "chips"},
			"HTML entity decoded, ampersand dropped",
		},
		{
			"",
			nil,
			"empty text",
		},
	}

	// Segmentation is covered separately; exact expectations here are
	// about the normalizer.
	tok := NewTokenizer(WithSegmentation(false))
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			got := tok.Tokenize(tt.text)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.text, got, tt.expected)
			}
		})
	}
}

func TestTokenizeSegmented(t *testing.T) {
	tok := NewTokenizer()
	got := tok.Tokenize("This is great. I loved it.")
	expected := []string{"this", "is", "great", "i", "loved", "it"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %v, want %v", got, expected)
	}
}

func TestTokenizeDeterministic(t *testing.T) {
	tok := NewTokenizer()
	text := "I loooove this!! Check https://x.co :) #best @friend 10 times"
	first := tok.Tokenize(text)
	for i := 0; i < 10; i++ {
		if got := tok.Tokenize(text); !reflect.DeepEqual(got, first) {
			t.Fatalf("run %d produced %v, first run produced %v", i, got, first)
		}
	}
}

func TestTokenizeNegationMarking(t *testing.T) {
	tok := NewTokenizer(WithSegmentation(false), WithNegationMarking(true))
	got := tok.Tokenize("i do not like it at all")
	expected := []string{"i", "do", "not", "like_NEG", "it_NEG", "at_NEG", "all"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %v, want %v", got, expected)
	}
}

func TestTokenizeStopwordRemoval(t *testing.T) {
	tok := NewTokenizer(WithSegmentation(false), WithStopwordRemoval(true))
	got := tok.Tokenize("this is a fantastic movie")
	expected := []string{"fantastic", "movie"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("got %v, want %v", got, expected)
	}
}

func TestTokenizerFingerprint(t *testing.T) {
	base := NewTokenizer()
	same := NewTokenizer()
	if base.Fingerprint() != same.Fingerprint() {
		t.Error("identical configurations produced different fingerprints")
	}

	variants := map[string]*Tokenizer{
		"stopwords": NewTokenizer(WithStopwordRemoval(true)),
		"negation":  NewTokenizer(WithNegationMarking(true)),
		"language":  NewTokenizer(UsingLanguage("fr")),
		"slang":     NewTokenizer(UsingSlang(map[string]string{"x": "y"})),
	}
	for name, tok := range variants {
		if tok.Fingerprint() == base.Fingerprint() {
			t.Errorf("%s variant shares the default fingerprint", name)
		}
	}
}

func TestTokenizeBatch(t *testing.T) {
	tok := NewTokenizer()

	texts := make([]string, 100)
	for i := range texts {
		texts[i] = "I loooove this :) #great"
	}

	got, err := tok.TokenizeBatch(context.Background(), texts, 7, 4, nil)
	if err != nil {
		t.Fatalf("TokenizeBatch failed: %v", err)
	}
	if len(got) != len(texts) {
		t.Fatalf("got %d results for %d texts", len(got), len(texts))
	}

	want := tok.Tokenize(texts[0])
	for i, tokens := range got {
		if !reflect.DeepEqual(tokens, want) {
			t.Fatalf("document %d tokenized as %v, want %v", i, tokens, want)
		}
	}
}

func TestTokenizeBatchCancellation(t *testing.T) {
	tok := NewTokenizer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	texts := make([]string, 10000)
	for i := range texts {
		texts[i] = "some text to tokenize"
	}
	if _, err := tok.TokenizeBatch(ctx, texts, 8, 2, nil); err == nil {
		t.Error("expected an error from a canceled context")
	}
}

func TestCollapseElongation(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"loooove", "loove"},
		{"love", "love"},
		{"aa", "aa"},
		{"aaa", "aa"},
		{"", ""},
		{"noooo waaay", "noo waay"},
	}
	for _, tt := range tests {
		if got := collapseElongation(tt.in); got != tt.out {
			t.Errorf("collapseElongation(%q) = %q, want %q", tt.in, got, tt.out)
		}
	}
}
