package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	sentiment "github.com/Tymec/sentiment-analysis"
)

var trainFlags struct {
	dataset        string
	vectorizer     string
	maxFeatures    int
	minDF          int
	cv             int
	tokenBatchSize int
	tokenJobs      int
	trainJobs      int
	seed           int64
	overwrite      bool
	forceCache     bool
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train a model on the given dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		info, err := sentiment.DatasetByName(trainFlags.dataset)
		if err != nil {
			return err
		}
		if info.EvalOnly {
			return fmt.Errorf("dataset %q is evaluate-only (available: %s)",
				info.Name, strings.Join(sentiment.TrainableDatasets(), ", "))
		}
		kind, err := sentiment.ParseVectorizerKind(trainFlags.vectorizer)
		if err != nil {
			return err
		}
		if err := validateCommon(trainFlags.cv, trainFlags.maxFeatures, trainFlags.seed); err != nil {
			return err
		}

		modelPath := filepath.Join(cfg.ModelDir,
			sentiment.ModelFileName(info.Name, kind, trainFlags.maxFeatures))
		if _, err := os.Stat(modelPath); err == nil && !trainFlags.overwrite {
			if !confirm(fmt.Sprintf("Model %q already exists. Overwrite?", modelPath), false) {
				return fmt.Errorf("model %s already exists (pass --overwrite to replace it)", modelPath)
			}
		}

		tok := newTokenizer(ctx)
		docs, labels, err := loadTokens(ctx, tok, info.Name,
			trainFlags.tokenBatchSize, trainFlags.tokenJobs, trainFlags.forceCache)
		if err != nil {
			return err
		}

		vec, err := sentiment.NewVectorizer(kind, trainFlags.maxFeatures, trainFlags.minDF)
		if err != nil {
			return err
		}

		tcfg := sentiment.DefaultTrainingConfig()
		tcfg.Folds = trainFlags.cv
		tcfg.Jobs = trainFlags.trainJobs
		tcfg.Seed = trainFlags.seed
		tcfg.Context = ctx
		tcfg.ProgressCallback = func(epoch int, loss, accuracy float64) {
			logger.Debug().Int("epoch", epoch).Float64("loss", loss).
				Float64("accuracy", accuracy).Msg("training progress")
		}

		logger.Info().Str("dataset", info.Name).Str("vectorizer", string(kind)).
			Int("folds", tcfg.Folds).Msg("training model")
		pipeline, result, err := sentiment.NewTrainer(tcfg).Train(docs, labels, vec)
		if err != nil {
			return err
		}

		fmt.Printf("Model accuracy: %s\n",
			colorize(fmt.Sprintf("%.2f%% ± %.2f%%", result.MeanAccuracy*100, result.StdAccuracy*100), ansiBlue))

		classes := make([]string, len(pipeline.Classes()))
		for i, c := range pipeline.Classes() {
			classes[i] = c.String()
		}
		model := &sentiment.Model{
			Name:     filepath.Base(modelPath),
			Pipeline: pipeline,
			Meta: sentiment.ModelMeta{
				Dataset:     info.Name,
				Vectorizer:  kind,
				MaxFeatures: trainFlags.maxFeatures,
				MinDF:       trainFlags.minDF,
				Classes:     classes,
				Accuracy:    result.MeanAccuracy,
				Seed:        trainFlags.seed,
				TrainedAt:   time.Now().UTC(),
			},
		}
		if err := model.Write(modelPath); err != nil {
			return err
		}
		fmt.Printf("Model saved to: %s\n", colorize(modelPath, ansiBlue))
		return nil
	},
}

func validateCommon(cv, maxFeatures int, seed int64) error {
	if cv < 2 || cv > 50 {
		return fmt.Errorf("cross-validation folds must be in [2, 50], got %d", cv)
	}
	if maxFeatures < 1 {
		return fmt.Errorf("max features must be at least 1, got %d", maxFeatures)
	}
	if seed < sentiment.SeedRandom {
		return fmt.Errorf("seed must be -1 (random) or non-negative, got %d", seed)
	}
	return nil
}

func init() {
	f := trainCmd.Flags()
	f.StringVar(&trainFlags.dataset, "dataset", "", "dataset to train on ("+strings.Join(sentiment.TrainableDatasets(), ", ")+")")
	f.StringVar(&trainFlags.vectorizer, "vectorizer", "tfidf", "vectorizer to use (tfidf, count, hashing)")
	f.IntVar(&trainFlags.maxFeatures, "max-features", 20000, "maximum number of features")
	f.IntVar(&trainFlags.minDF, "min-df", 5, "minimum document frequency for features (ignored for hashing)")
	f.IntVar(&trainFlags.cv, "cv", 5, "number of cross-validation folds")
	f.IntVar(&trainFlags.tokenBatchSize, "token-batch-size", 512, "batch size for tokenization")
	f.IntVar(&trainFlags.tokenJobs, "token-jobs", 4, "parallel tokenization jobs")
	f.IntVar(&trainFlags.trainJobs, "train-jobs", 1, "parallel training jobs")
	f.Int64Var(&trainFlags.seed, "seed", 42, "random seed (-1 for a random seed)")
	f.BoolVar(&trainFlags.overwrite, "overwrite", false, "overwrite the model if it already exists")
	f.BoolVar(&trainFlags.forceCache, "force-cache", false, "always use cached tokenized data when available")
	trainCmd.MarkFlagRequired("dataset")
	rootCmd.AddCommand(trainCmd)
}
