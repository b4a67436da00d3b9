package sentiment

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"gonum.org/v1/gonum/floats"
)

// LogisticRegression is a multinomial logistic regression classifier
// over sparse feature vectors. Fields are exported for gob persistence.
type LogisticRegression struct {
	Classes   []Label   // class order for Weights rows and score slices
	NFeatures int       // feature space width
	Weights   []float64 // row-major, len(Classes) x NFeatures
	Bias      []float64
}

// logits computes the unnormalized class scores for one sample.
// Features are visited in index order: map iteration order would vary
// between runs and float addition is not associative, which would break
// bit-for-bit reproducibility under a fixed seed.
func (m *LogisticRegression) logits(v FeatureVector) []float64 {
	idxs := sortedIndices(v)
	z := make([]float64, len(m.Classes))
	for c := range m.Classes {
		row := m.Weights[c*m.NFeatures : (c+1)*m.NFeatures]
		z[c] = m.Bias[c]
		for _, idx := range idxs {
			if idx < m.NFeatures {
				z[c] += row[idx] * v[idx]
			}
		}
	}
	return z
}

func sortedIndices(v FeatureVector) []int {
	idxs := make([]int, 0, len(v))
	for idx := range v {
		idxs = append(idxs, idx)
	}
	sort.Ints(idxs)
	return idxs
}

// Probabilities returns the softmax class distribution for one sample,
// ordered like Classes.
func (m *LogisticRegression) Probabilities(v FeatureVector) []float64 {
	z := m.logits(v)
	lse := floats.LogSumExp(z)
	for c := range z {
		z[c] = math.Exp(z[c] - lse)
	}
	return z
}

// Predict returns the most probable class and the full distribution.
func (m *LogisticRegression) Predict(v FeatureVector) (Label, []float64) {
	probs := m.Probabilities(v)
	return m.Classes[floats.MaxIdx(probs)], probs
}

// Evaluate returns the accuracy of the model on labeled samples.
func (m *LogisticRegression) Evaluate(docs []FeatureVector, labels []Label) float64 {
	if len(docs) == 0 {
		return 0
	}
	correct := 0
	for i, doc := range docs {
		if pred, _ := m.Predict(doc); pred == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(docs))
}

// TrainLogisticRegression fits a classifier with seeded mini-batch SGD
// and L2 regularization. The same seed and data reproduce the same
// weights.
func TrainLogisticRegression(nFeatures int, docs []FeatureVector, labels []Label, cfg TrainingConfig) (*LogisticRegression, TrainingMetrics, error) {
	start := time.Now()

	if len(docs) == 0 {
		return nil, TrainingMetrics{}, fmt.Errorf("training data is empty")
	}
	if len(docs) != len(labels) {
		return nil, TrainingMetrics{}, fmt.Errorf("got %d documents but %d labels", len(docs), len(labels))
	}
	if nFeatures < 1 {
		return nil, TrainingMetrics{}, fmt.Errorf("feature count must be positive")
	}

	classes := distinctLabels(labels)
	if len(classes) < 2 {
		return nil, TrainingMetrics{}, fmt.Errorf("training data has %d distinct class(es), need at least 2", len(classes))
	}
	classIndex := make(map[Label]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	model := &LogisticRegression{
		Classes:   classes,
		NFeatures: nFeatures,
		Weights:   make([]float64, len(classes)*nFeatures),
		Bias:      make([]float64, len(classes)),
	}

	ctx := cfg.Context
	rng := rand.New(rand.NewSource(cfg.effectiveSeed()))
	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}

	batchSize := cfg.BatchSize
	if batchSize < 1 {
		batchSize = 32
	}

	// L2 as weight decay, applied per mini-batch before the gradient
	// step. The factor must stay in [0, 1]: decay shrinks weights, and
	// may never flip their sign, no matter how large the corpus or the
	// regularization strength get.
	decay := 1 - cfg.LearningRate*cfg.L2
	if decay < 0 {
		decay = 0
	}

	var metrics TrainingMetrics
	for epoch := 0; epoch < cfg.Epochs; epoch++ {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return nil, metrics, ctx.Err()
			default:
			}
		}

		rng.Shuffle(len(order), func(i, j int) {
			order[i], order[j] = order[j], order[i]
		})

		epochLoss := 0.0
		correct := 0
		for batchStart := 0; batchStart < len(order); batchStart += batchSize {
			batchEnd := batchStart + batchSize
			if batchEnd > len(order) {
				batchEnd = len(order)
			}
			batch := order[batchStart:batchEnd]
			step := cfg.LearningRate / float64(len(batch))

			if cfg.L2 > 0 {
				floats.Scale(decay, model.Weights)
			}

			for _, i := range batch {
				probs := model.Probabilities(docs[i])
				truth := classIndex[labels[i]]

				epochLoss += -math.Log(math.Max(probs[truth], 1e-12))
				if floats.MaxIdx(probs) == truth {
					correct++
				}

				for c := range classes {
					g := probs[c]
					if c == truth {
						g -= 1
					}
					model.Bias[c] -= step * g
					row := model.Weights[c*nFeatures : (c+1)*nFeatures]
					for idx, val := range docs[i] {
						if idx < nFeatures {
							row[idx] -= step * g * val
						}
					}
				}
			}
		}

		metrics.EpochsCompleted = epoch + 1
		metrics.FinalLoss = epochLoss / float64(len(docs))
		metrics.FinalAccuracy = float64(correct) / float64(len(docs))
		if cfg.ProgressCallback != nil {
			cfg.ProgressCallback(epoch+1, metrics.FinalLoss, metrics.FinalAccuracy)
		}
	}

	metrics.TrainingTime = time.Since(start)
	return model, metrics, nil
}

// distinctLabels returns the sorted set of labels present in the data.
func distinctLabels(labels []Label) []Label {
	seen := make(map[Label]bool)
	var classes []Label
	for _, l := range labels {
		if !seen[l] {
			seen[l] = true
			classes = append(classes, l)
		}
	}
	for i := 1; i < len(classes); i++ {
		for j := i; j > 0 && classes[j] < classes[j-1]; j-- {
			classes[j], classes[j-1] = classes[j-1], classes[j]
		}
	}
	return classes
}
