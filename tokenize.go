package sentiment

import (
	"context"
	"fmt"
	"hash/fnv"
	"html"
	"io"
	"regexp"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"unicode"

	"github.com/bbalet/stopwords"
)

// A Tokenizer turns raw review text into a normalized token slice.
// Tokenization is pure: the same text and options always produce the
// same tokens, which is what makes the token cache sound.
type Tokenizer struct {
	sanitizer *strings.Replacer
	emoticons map[string]string
	slang     map[string]string
	language  string

	segment         bool
	removeStopwords bool
	markNegation    bool
}

type TokenizerOption func(*Tokenizer)

// UsingEmoticons replaces the default emoticon alias table.
func UsingEmoticons(m map[string]string) TokenizerOption {
	return func(t *Tokenizer) {
		t.emoticons = m
	}
}

// UsingSlang replaces the default slang expansion table.
func UsingSlang(m map[string]string) TokenizerOption {
	return func(t *Tokenizer) {
		t.slang = m
	}
}

// UsingLanguage sets the ISO 639-1 language code used for stopword
// removal.
func UsingLanguage(code string) TokenizerOption {
	return func(t *Tokenizer) {
		t.language = code
	}
}

// WithSegmentation enables (the default) or disables sentence
// segmentation before normalization.
func WithSegmentation(include bool) TokenizerOption {
	return func(t *Tokenizer) {
		t.segment = include
	}
}

// WithStopwordRemoval enables dropping of stopwords (off by default).
func WithStopwordRemoval(include bool) TokenizerOption {
	return func(t *Tokenizer) {
		t.removeStopwords = include
	}
}

// WithNegationMarking enables _NEG suffixing of tokens inside a
// negation scope (off by default).
func WithNegationMarking(include bool) TokenizerOption {
	return func(t *Tokenizer) {
		t.markNegation = include
	}
}

// NewTokenizer builds a tokenizer with the default tables.
func NewTokenizer(opts ...TokenizerOption) *Tokenizer {
	t := &Tokenizer{
		sanitizer: sanitizer,
		emoticons: emoticonAliases,
		slang:     defaultSlang,
		language:  "en",
		segment:   true,
	}
	for _, applyOpt := range opts {
		applyOpt(t)
	}
	return t
}

var sanitizer = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	"…", "...",
	"&rsquo;", "'")

var (
	htmlTagRE = regexp.MustCompile(`<(?:br|p|div|span|i|b|em|strong|a)[^>]*>|</[a-zA-Z]+>`)
	urlRE     = regexp.MustCompile(`(?i)(?:https?://|www\.)[^\s]+`)
	mentionRE = regexp.MustCompile(`@[A-Za-z0-9_]+`)
	hashtagRE = regexp.MustCompile(`#([A-Za-z0-9_]+)`)
	numberRE  = regexp.MustCompile(`^[0-9]+(?:[.,][0-9]+)*$`)
)

// negators open a negation scope of negationScope tokens.
var negators = map[string]bool{
	"no":      true,
	"not":     true,
	"never":   true,
	"nothing": true,
	"cannot":  true,
	"without": true,
}

const negationScope = 3

// Tokenize normalizes text into a token slice.
func (t *Tokenizer) Tokenize(text string) []string {
	var tokens []string
	if t.segment {
		for _, sent := range segmentSentences(text) {
			tokens = append(tokens, t.tokenizeSentence(sent)...)
		}
		return tokens
	}
	return t.tokenizeSentence(text)
}

func (t *Tokenizer) tokenizeSentence(text string) []string {
	clean := t.normalize(text)

	var tokens []string
	negation := 0
	for _, field := range strings.Fields(clean) {
		toks, special := t.splitToken(field)
		for _, tok := range toks {
			if special || isAlias(tok) {
				tokens = append(tokens, tok)
				continue
			}
			if t.markNegation && negators[tok] {
				negation = negationScope
				tokens = append(tokens, tok)
				continue
			}
			if t.removeStopwords && t.isStopword(tok) {
				continue
			}
			if negation > 0 {
				tok += "_NEG"
				negation--
			}
			tokens = append(tokens, tok)
		}
	}
	return tokens
}

// normalize applies the string-level substitutions: quote sanitization,
// HTML stripping and the URL/mention/hashtag aliases.
func (t *Tokenizer) normalize(text string) string {
	clean := t.sanitizer.Replace(text)
	clean = htmlTagRE.ReplaceAllString(clean, " ")
	clean = html.UnescapeString(clean)
	clean = urlRE.ReplaceAllString(clean, " "+AliasURL+" ")
	clean = mentionRE.ReplaceAllString(clean, " "+AliasUser+" ")
	clean = hashtagRE.ReplaceAllString(clean, " "+AliasHashtag+" $1 ")
	return clean
}

// splitToken processes a single whitespace-delimited span. The second
// return value reports that the span matched the emoticon table and
// must not be touched further.
func (t *Tokenizer) splitToken(field string) ([]string, bool) {
	// Emoticons are looked up before any case folding or trimming,
	// with a second chance for ones carrying trailing punctuation.
	if alias, found := t.emoticons[field]; found {
		return []string{alias}, true
	}
	if alias, found := t.emoticons[strings.TrimRight(field, ".,!?")]; found {
		return []string{alias}, true
	}

	lower := strings.ToLower(field)
	lower = strings.TrimFunc(lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '<' && r != '>'
	})
	if lower == "" {
		return nil, false
	}
	if isAlias(lower) {
		return []string{lower}, true
	}

	if numberRE.MatchString(lower) {
		return []string{AliasNumber}, true
	}

	lower = collapseElongation(lower)

	if expansion, found := t.slang[lower]; found {
		return strings.Fields(expansion), false
	}

	if !hasLetterOrDigit(lower) {
		return nil, false
	}
	return []string{lower}, false
}

// isStopword follows the bbalet/stopwords idiom: a word cleaned down to
// nothing is a stopword.
func (t *Tokenizer) isStopword(tok string) bool {
	return strings.TrimSpace(stopwords.CleanString(tok, t.language, false)) == ""
}

// collapseElongation caps letter runs at two, so "loooove" and "looove"
// both become "loove". Go's regexp has no backreferences, so this is a
// manual scan.
func collapseElongation(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev {
			run++
			if run > 2 {
				continue
			}
		} else {
			prev = r
			run = 1
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isAlias(tok string) bool {
	return len(tok) > 2 && tok[0] == '<' && tok[len(tok)-1] == '>'
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// Fingerprint identifies the tokenizer configuration. Cached token data
// is only reused when the fingerprint at write time matches the one at
// read time.
func (t *Tokenizer) Fingerprint() string {
	h := fnv.New64a()
	fmt.Fprintf(h, "lang=%s segment=%v stop=%v neg=%v\n",
		t.language, t.segment, t.removeStopwords, t.markNegation)
	writeSortedPairs(h, t.emoticons)
	writeSortedPairs(h, t.slang)
	return fmt.Sprintf("%016x", h.Sum64())
}

func writeSortedPairs(w io.Writer, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s=%s\n", k, m[k])
	}
}

// TokenizeBatch tokenizes texts in parallel batches. Output order
// matches input order regardless of worker scheduling. The progress
// callback, when set, is invoked after each completed batch.
func (t *Tokenizer) TokenizeBatch(ctx context.Context, texts []string, batchSize, jobs int, progress func(done, total int)) ([][]string, error) {
	if batchSize < 1 {
		batchSize = 512
	}
	if jobs < 1 {
		jobs = 1
	}

	out := make([][]string, len(texts))
	batches := make(chan int)
	var done int64
	var wg sync.WaitGroup

	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for start := range batches {
				end := start + batchSize
				if end > len(texts) {
					end = len(texts)
				}
				for i := start; i < end; i++ {
					out[i] = t.Tokenize(texts[i])
				}
				if progress != nil {
					progress(int(atomic.AddInt64(&done, int64(end-start))), len(texts))
				}
			}
		}()
	}

	var err error
feed:
	for start := 0; start < len(texts); start += batchSize {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			break feed
		case batches <- start:
		}
	}
	close(batches)
	wg.Wait()

	if err != nil {
		return nil, err
	}
	return out, nil
}
