// Package sentiment implements a text-sentiment classification pipeline:
// dataset loading, tokenization with on-disk caching, vectorization,
// cross-validated training and single-text inference.
package sentiment

import (
	"context"
	"fmt"
	"time"
)

// A Label is a sentiment class assigned to a piece of text.
type Label int

const (
	LabelNegative Label = iota
	LabelPositive
	LabelNeutral
)

// String returns the human-readable name of the label.
func (l Label) String() string {
	switch l {
	case LabelNegative:
		return "negative"
	case LabelPositive:
		return "positive"
	case LabelNeutral:
		return "neutral"
	default:
		return fmt.Sprintf("label(%d)", int(l))
	}
}

// ParseLabel maps a label name back to its Label value.
func ParseLabel(s string) (Label, error) {
	switch s {
	case "negative":
		return LabelNegative, nil
	case "positive":
		return LabelPositive, nil
	case "neutral":
		return LabelNeutral, nil
	default:
		return 0, fmt.Errorf("unknown label %q", s)
	}
}

// A Review is a single labeled text sample.
type Review struct {
	Text  string
	Label Label
}

// A FeatureVector is a sparse mapping from feature index to weight.
type FeatureVector map[int]float64

// TrainingConfig controls classifier training and cross-validation.
type TrainingConfig struct {
	Epochs       int     // SGD passes over the training data
	LearningRate float64 // initial SGD step size
	L2           float64 // L2 regularization strength
	BatchSize    int     // mini-batch size
	Folds        int     // cross-validation folds
	Jobs         int     // parallel fold workers
	Seed         int64   // RNG seed; SeedRandom picks one from the clock

	Context          context.Context
	ProgressCallback func(epoch int, loss, accuracy float64)
}

// SeedRandom requests a clock-derived seed instead of a fixed one.
const SeedRandom int64 = -1

// DefaultTrainingConfig returns the training defaults used by the CLI.
func DefaultTrainingConfig() TrainingConfig {
	return TrainingConfig{
		Epochs:       20,
		LearningRate: 0.1,
		L2:           1e-5,
		BatchSize:    32,
		Folds:        5,
		Jobs:         1,
		Seed:         42,
		Context:      context.Background(),
	}
}

// effectiveSeed resolves SeedRandom to a concrete seed.
func (c TrainingConfig) effectiveSeed() int64 {
	if c.Seed == SeedRandom {
		return time.Now().UnixNano()
	}
	return c.Seed
}

// CrossValidationResult summarizes k-fold evaluation of a pipeline.
type CrossValidationResult struct {
	MeanAccuracy   float64
	StdAccuracy    float64
	FoldAccuracies []float64
}

// TrainingMetrics reports what happened during a training run.
type TrainingMetrics struct {
	FinalLoss       float64
	FinalAccuracy   float64
	EpochsCompleted int
	TrainingTime    time.Duration
}
