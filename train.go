package sentiment

import (
	"fmt"
	"math/rand"
	"sync"

	"gonum.org/v1/gonum/stat"
)

// A Pipeline couples a fitted vectorizer with a trained classifier.
// It is the unit of persistence: Model.Write stores exactly this.
type Pipeline struct {
	Vectorizer Vectorizer
	Classifier *LogisticRegression
}

// Predict classifies one tokenized text.
func (p *Pipeline) Predict(tokens []string) (Label, []float64) {
	return p.Classifier.Predict(p.Vectorizer.Transform(tokens))
}

// Classes returns the label order used by the probability slices.
func (p *Pipeline) Classes() []Label {
	return p.Classifier.Classes
}

// Accuracy evaluates the pipeline on tokenized, labeled documents.
func (p *Pipeline) Accuracy(docs [][]string, labels []Label) float64 {
	if len(docs) == 0 {
		return 0
	}
	correct := 0
	for i, doc := range docs {
		if pred, _ := p.Predict(doc); pred == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(docs))
}

// Trainer runs training and cross-validation over tokenized data.
type Trainer struct {
	config TrainingConfig
}

// NewTrainer creates a trainer with the given configuration.
func NewTrainer(config TrainingConfig) *Trainer {
	return &Trainer{config: config}
}

// Train cross-validates the pipeline configuration on the full data,
// then fits the vectorizer and classifier on all of it. The returned
// result carries the per-fold accuracies.
func (t *Trainer) Train(docs [][]string, labels []Label, vec Vectorizer) (*Pipeline, CrossValidationResult, error) {
	result, err := t.CrossValidate(docs, labels, vec)
	if err != nil {
		return nil, CrossValidationResult{}, err
	}

	if err := vec.Fit(docs); err != nil {
		return nil, CrossValidationResult{}, err
	}
	features := transformAll(vec, docs)

	model, _, err := TrainLogisticRegression(vec.NumFeatures(), features, labels, t.config)
	if err != nil {
		return nil, CrossValidationResult{}, err
	}
	return &Pipeline{Vectorizer: vec, Classifier: model}, result, nil
}

// CrossValidate estimates accuracy with k-fold cross-validation. The
// vectorizer is refit from scratch on each fold's training split, and
// folds run in parallel up to the configured job count. The same seed
// produces the same folds and the same result.
func (t *Trainer) CrossValidate(docs [][]string, labels []Label, vec Vectorizer) (CrossValidationResult, error) {
	k := t.config.Folds
	if k < 2 {
		return CrossValidationResult{}, fmt.Errorf("cross-validation needs at least 2 folds, got %d", k)
	}
	if len(docs) != len(labels) {
		return CrossValidationResult{}, fmt.Errorf("got %d documents but %d labels", len(docs), len(labels))
	}
	if len(docs) < k {
		return CrossValidationResult{}, fmt.Errorf("cannot split %d documents into %d folds", len(docs), k)
	}

	seed := t.config.effectiveSeed()
	rng := rand.New(rand.NewSource(seed))
	order := rng.Perm(len(docs))

	jobs := t.config.Jobs
	if jobs < 1 {
		jobs = 1
	}
	if jobs > k {
		jobs = k
	}

	accs := make([]float64, k)
	errs := make([]error, k)
	folds := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < jobs; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for fold := range folds {
				accs[fold], errs[fold] = t.runFold(docs, labels, order, vec, seed, fold, k)
			}
		}()
	}
	for fold := 0; fold < k; fold++ {
		folds <- fold
	}
	close(folds)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return CrossValidationResult{}, err
		}
	}

	return CrossValidationResult{
		MeanAccuracy:   stat.Mean(accs, nil),
		StdAccuracy:    stat.StdDev(accs, nil),
		FoldAccuracies: accs,
	}, nil
}

// runFold trains on everything outside the fold and evaluates on the
// fold itself.
func (t *Trainer) runFold(docs [][]string, labels []Label, order []int, vec Vectorizer, seed int64, fold, k int) (float64, error) {
	foldSize := len(order) / k
	start := fold * foldSize
	end := start + foldSize
	if fold == k-1 {
		end = len(order)
	}

	trainDocs := make([][]string, 0, len(order)-(end-start))
	trainLabels := make([]Label, 0, len(order)-(end-start))
	testDocs := make([][]string, 0, end-start)
	testLabels := make([]Label, 0, end-start)
	for pos, idx := range order {
		if pos >= start && pos < end {
			testDocs = append(testDocs, docs[idx])
			testLabels = append(testLabels, labels[idx])
		} else {
			trainDocs = append(trainDocs, docs[idx])
			trainLabels = append(trainLabels, labels[idx])
		}
	}

	foldVec := vec.Clone()
	if err := foldVec.Fit(trainDocs); err != nil {
		return 0, fmt.Errorf("fold %d: %w", fold, err)
	}

	cfg := t.config
	cfg.Seed = seed + int64(fold) + 1 // derived, still deterministic
	cfg.ProgressCallback = nil

	model, _, err := TrainLogisticRegression(foldVec.NumFeatures(), transformAll(foldVec, trainDocs), trainLabels, cfg)
	if err != nil {
		return 0, fmt.Errorf("fold %d: %w", fold, err)
	}
	return model.Evaluate(transformAll(foldVec, testDocs), testLabels), nil
}

func transformAll(vec Vectorizer, docs [][]string) []FeatureVector {
	features := make([]FeatureVector, len(docs))
	for i, doc := range docs {
		features[i] = vec.Transform(doc)
	}
	return features
}
