package sentiment

import (
	"encoding/gob"
	"fmt"
	"hash/fnv"
	"math"
	"sort"
)

// VectorizerKind names a feature extraction strategy.
type VectorizerKind string

const (
	VectorizerTFIDF   VectorizerKind = "tfidf"
	VectorizerCount   VectorizerKind = "count"
	VectorizerHashing VectorizerKind = "hashing"
)

// ParseVectorizerKind validates a vectorizer name from the CLI.
func ParseVectorizerKind(s string) (VectorizerKind, error) {
	switch VectorizerKind(s) {
	case VectorizerTFIDF, VectorizerCount, VectorizerHashing:
		return VectorizerKind(s), nil
	default:
		return "", fmt.Errorf("unknown vectorizer %q (available: tfidf, count, hashing)", s)
	}
}

// A Vectorizer converts token slices into sparse feature vectors.
type Vectorizer interface {
	// Fit learns corpus statistics from tokenized documents.
	Fit(docs [][]string) error
	// Transform maps one token slice to a feature vector. Unknown
	// terms are ignored.
	Transform(tokens []string) FeatureVector
	// NumFeatures is the width of the feature space after Fit.
	NumFeatures() int
	Kind() VectorizerKind
	// Clone returns an unfitted vectorizer with the same settings,
	// used to refit per cross-validation fold.
	Clone() Vectorizer
}

// NewVectorizer constructs a vectorizer. maxFeatures caps the
// vocabulary (or sets the hash space width); minDF drops terms seen in
// fewer documents and is ignored for hashing.
func NewVectorizer(kind VectorizerKind, maxFeatures, minDF int) (Vectorizer, error) {
	if maxFeatures < 1 {
		return nil, fmt.Errorf("max features must be at least 1, got %d", maxFeatures)
	}
	switch kind {
	case VectorizerCount:
		return &CountVectorizer{MaxFeatures: maxFeatures, MinDF: minDF}, nil
	case VectorizerTFIDF:
		return &TfidfVectorizer{CountVectorizer: CountVectorizer{MaxFeatures: maxFeatures, MinDF: minDF}}, nil
	case VectorizerHashing:
		return &HashingVectorizer{NFeatures: maxFeatures}, nil
	default:
		return nil, fmt.Errorf("unknown vectorizer %q", kind)
	}
}

func init() {
	// Vectorizers are persisted through the Vectorizer interface.
	gob.Register(&CountVectorizer{})
	gob.Register(&TfidfVectorizer{})
	gob.Register(&HashingVectorizer{})
}

// CountVectorizer builds a capped vocabulary of the most frequent terms
// and maps documents to raw term counts.
type CountVectorizer struct {
	MaxFeatures int
	MinDF       int

	Vocabulary map[string]int // term -> feature index
}

func (v *CountVectorizer) Fit(docs [][]string) error {
	return v.fit(docs, VectorizerCount)
}

// fit takes the kind for error messages: TfidfVectorizer embeds
// CountVectorizer, and method promotion would otherwise report a tfidf
// failure as a count one.
func (v *CountVectorizer) fit(docs [][]string, kind VectorizerKind) error {
	if len(docs) == 0 {
		return fmt.Errorf("fit %s vectorizer: no documents", kind)
	}

	counts := make(map[string]int)
	docFreq := make(map[string]int)
	for _, doc := range docs {
		seen := make(map[string]bool, len(doc))
		for _, term := range doc {
			counts[term]++
			if !seen[term] {
				seen[term] = true
				docFreq[term]++
			}
		}
	}

	terms := make([]string, 0, len(counts))
	for term, df := range docFreq {
		if df >= v.MinDF {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return fmt.Errorf("fit %s vectorizer: no terms pass min document frequency %d", kind, v.MinDF)
	}

	// Keep the most frequent terms. Ties break alphabetically so the
	// vocabulary is deterministic.
	sort.Slice(terms, func(i, j int) bool {
		if counts[terms[i]] != counts[terms[j]] {
			return counts[terms[i]] > counts[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if len(terms) > v.MaxFeatures {
		terms = terms[:v.MaxFeatures]
	}

	// Feature indices follow sorted term order, independent of count
	// ranking.
	sort.Strings(terms)
	v.Vocabulary = make(map[string]int, len(terms))
	for i, term := range terms {
		v.Vocabulary[term] = i
	}
	return nil
}

func (v *CountVectorizer) Transform(tokens []string) FeatureVector {
	vec := make(FeatureVector)
	for _, term := range tokens {
		if idx, found := v.Vocabulary[term]; found {
			vec[idx]++
		}
	}
	return vec
}

func (v *CountVectorizer) NumFeatures() int     { return len(v.Vocabulary) }
func (v *CountVectorizer) Kind() VectorizerKind { return VectorizerCount }

func (v *CountVectorizer) Clone() Vectorizer {
	return &CountVectorizer{MaxFeatures: v.MaxFeatures, MinDF: v.MinDF}
}

// TfidfVectorizer weights term counts by smoothed inverse document
// frequency and L2-normalizes each vector.
type TfidfVectorizer struct {
	CountVectorizer

	IDF []float64 // indexed by feature
}

func (v *TfidfVectorizer) Fit(docs [][]string) error {
	if err := v.CountVectorizer.fit(docs, VectorizerTFIDF); err != nil {
		return err
	}

	docFreq := make([]int, v.NumFeatures())
	for _, doc := range docs {
		seen := make(map[int]bool, len(doc))
		for _, term := range doc {
			if idx, found := v.Vocabulary[term]; found && !seen[idx] {
				seen[idx] = true
				docFreq[idx]++
			}
		}
	}

	n := float64(len(docs))
	v.IDF = make([]float64, v.NumFeatures())
	for i, df := range docFreq {
		// Smoothed idf: every term behaves as if seen in one extra
		// document, so idf never divides by zero.
		v.IDF[i] = math.Log((1+n)/(1+float64(df))) + 1
	}
	return nil
}

func (v *TfidfVectorizer) Transform(tokens []string) FeatureVector {
	vec := v.CountVectorizer.Transform(tokens)
	for idx := range vec {
		vec[idx] *= v.IDF[idx]
	}
	normalizeL2(vec)
	return vec
}

func (v *TfidfVectorizer) Kind() VectorizerKind { return VectorizerTFIDF }

func (v *TfidfVectorizer) Clone() Vectorizer {
	return &TfidfVectorizer{CountVectorizer: CountVectorizer{MaxFeatures: v.MaxFeatures, MinDF: v.MinDF}}
}

// HashingVectorizer maps terms into a fixed-width space by FNV-1a hash
// with sign alternation. It is stateless: Fit only validates settings,
// and no vocabulary is stored with the model.
type HashingVectorizer struct {
	NFeatures int
}

func (v *HashingVectorizer) Fit(docs [][]string) error {
	if v.NFeatures < 1 {
		return fmt.Errorf("fit hashing vectorizer: feature count must be positive")
	}
	return nil
}

func (v *HashingVectorizer) Transform(tokens []string) FeatureVector {
	vec := make(FeatureVector)
	for _, term := range tokens {
		h := fnv.New64a()
		h.Write([]byte(term))
		sum := h.Sum64()

		idx := int(sum % uint64(v.NFeatures))
		// The top hash bit picks the sign, spreading collisions around
		// zero instead of always inflating a bucket.
		if sum>>63 == 0 {
			vec[idx]++
		} else {
			vec[idx]--
		}
	}
	normalizeL2(vec)
	return vec
}

func (v *HashingVectorizer) NumFeatures() int     { return v.NFeatures }
func (v *HashingVectorizer) Kind() VectorizerKind { return VectorizerHashing }

func (v *HashingVectorizer) Clone() Vectorizer {
	return &HashingVectorizer{NFeatures: v.NFeatures}
}

func normalizeL2(vec FeatureVector) {
	var sum float64
	for _, val := range vec {
		sum += val * val
	}
	if sum == 0 {
		return
	}
	norm := math.Sqrt(sum)
	for idx := range vec {
		vec[idx] /= norm
	}
}
