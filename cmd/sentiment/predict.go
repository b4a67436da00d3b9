package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	sentiment "github.com/Tymec/sentiment-analysis"
)

var predictFlags struct {
	modelPath string
}

var predictCmd = &cobra.Command{
	Use:   "predict [text...]",
	Short: "Classify the sentiment of the given text",
	Long: `Classify the sentiment of the given text.

Piped input takes precedence over the text arguments.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		text := strings.TrimSpace(strings.Join(args, " "))
		if !isTerminal(os.Stdin) {
			piped, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			if trimmed := strings.TrimSpace(string(piped)); trimmed != "" {
				text = trimmed
			}
		}
		if text == "" {
			return fmt.Errorf("no text provided")
		}

		logger.Info().Str("model", predictFlags.modelPath).Msg("loading model")
		model, err := sentiment.ModelFromDisk(predictFlags.modelPath)
		if err != nil {
			return err
		}

		tok := newTokenizer(ctx)
		label, probs := model.Pipeline.Predict(tok.Tokenize(text))

		for i, class := range model.Pipeline.Classes() {
			logger.Debug().Str("class", class.String()).Float64("probability", probs[i]).Msg("score")
		}
		fmt.Println(colorize(strings.ToUpper(label.String()), labelColor(label)))
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVar(&predictFlags.modelPath, "model", "", "path to the trained model")
	predictCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(predictCmd)
}
