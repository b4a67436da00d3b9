package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sentiment "github.com/Tymec/sentiment-analysis"
)

var evaluateFlags struct {
	dataset        string
	modelPath      string
	cv             int
	tokenBatchSize int
	tokenJobs      int
	evalJobs       int
	forceCache     bool
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a saved model's pipeline on a dataset",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if _, err := sentiment.DatasetByName(evaluateFlags.dataset); err != nil {
			return err
		}
		if evaluateFlags.cv < 2 || evaluateFlags.cv > 50 {
			return fmt.Errorf("cross-validation folds must be in [2, 50], got %d", evaluateFlags.cv)
		}

		logger.Info().Str("model", evaluateFlags.modelPath).Msg("loading model")
		model, err := sentiment.ModelFromDisk(evaluateFlags.modelPath)
		if err != nil {
			return err
		}

		tok := newTokenizer(ctx)
		docs, labels, err := loadTokens(ctx, tok, evaluateFlags.dataset,
			evaluateFlags.tokenBatchSize, evaluateFlags.tokenJobs, evaluateFlags.forceCache)
		if err != nil {
			return err
		}

		tcfg := sentiment.DefaultTrainingConfig()
		tcfg.Folds = evaluateFlags.cv
		tcfg.Jobs = evaluateFlags.evalJobs
		tcfg.Context = ctx

		logger.Info().Str("dataset", evaluateFlags.dataset).Int("folds", tcfg.Folds).
			Msg("evaluating model")
		result, err := sentiment.NewTrainer(tcfg).CrossValidate(docs, labels, model.Pipeline.Vectorizer)
		if err != nil {
			return err
		}

		fmt.Println(colorize(
			fmt.Sprintf("%.2f%% ± %.2f%%", result.MeanAccuracy*100, result.StdAccuracy*100), ansiBlue))
		return nil
	},
}

func init() {
	f := evaluateCmd.Flags()
	f.StringVar(&evaluateFlags.dataset, "dataset", "test", "dataset to evaluate on")
	f.StringVar(&evaluateFlags.modelPath, "model", "", "path to the trained model")
	f.IntVar(&evaluateFlags.cv, "cv", 5, "number of cross-validation folds")
	f.IntVar(&evaluateFlags.tokenBatchSize, "token-batch-size", 512, "batch size for tokenization")
	f.IntVar(&evaluateFlags.tokenJobs, "token-jobs", 4, "parallel tokenization jobs")
	f.IntVar(&evaluateFlags.evalJobs, "eval-jobs", 1, "parallel evaluation jobs")
	f.BoolVar(&evaluateFlags.forceCache, "force-cache", false, "always use cached tokenized data when available")
	evaluateCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(evaluateCmd)
}
