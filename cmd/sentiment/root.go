package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	sentiment "github.com/Tymec/sentiment-analysis"
)

var (
	flagConfig    string
	flagLogLevel  string
	flagLogFormat string

	cfg    *sentiment.Config
	logger zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "sentiment",
	Short:         "Train, evaluate and serve a text-sentiment classifier",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = sentiment.LoadConfig(flagConfig)
		if err != nil {
			return err
		}
		if flagLogLevel != "" {
			cfg.Log.Level = flagLogLevel
		}
		if flagLogFormat != "" {
			cfg.Log.Format = flagLogFormat
		}
		logger = newLogger(cfg.Log)
		return cfg.EnsureDirs()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format (console, json)")
}

func newLogger(lc sentiment.LogConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(lc.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var out io.Writer = os.Stderr
	if lc.Format == "console" {
		out = zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	}
	return zerolog.New(out).Level(level).With().Timestamp().Logger()
}

// newTokenizer builds the tokenizer used by every command, preferring
// the slang table from the data directory over the built-in one.
func newTokenizer(ctx context.Context) *sentiment.Tokenizer {
	slang, err := sentiment.EnsureSlang(ctx, cfg.DataDir)
	if err != nil {
		logger.Warn().Err(err).Msg("slang table unavailable, using built-in defaults")
		return sentiment.NewTokenizer()
	}
	return sentiment.NewTokenizer(sentiment.UsingSlang(slang))
}

// loadTokens returns tokenized text and labels for a dataset, reusing
// the token cache when its fingerprint matches. Cache reuse is
// confirmed interactively unless forceCache is set; non-interactive
// runs reuse without asking.
func loadTokens(ctx context.Context, tok *sentiment.Tokenizer, dataset string, batchSize, jobs int, forceCache bool) ([][]string, []sentiment.Label, error) {
	cache, err := sentiment.OpenTokenCache(cfg.TokenCacheDir())
	if err != nil {
		return nil, nil, err
	}
	defer cache.Close()

	fingerprint := tok.Fingerprint()
	if cache.Contains(dataset, fingerprint) {
		use := forceCache || confirm(fmt.Sprintf("Found existing tokenized data for %q. Use it?", dataset), true)
		if use {
			logger.Info().Str("dataset", dataset).Msg("loading cached tokens")
			docs, labels, err := cache.Get(ctx, dataset, fingerprint)
			if err == nil {
				reportVocabulary(docs)
				return docs, labels, nil
			}
			logger.Warn().Err(err).Msg("cache read failed, tokenizing from scratch")
		}
	}

	logger.Info().Str("dataset", dataset).Msg("loading dataset")
	reviews, err := sentiment.LoadDataset(ctx, dataset, cfg.DataDir)
	if err != nil {
		return nil, nil, err
	}

	texts := make([]string, len(reviews))
	labels := make([]sentiment.Label, len(reviews))
	for i, r := range reviews {
		texts[i] = r.Text
		labels[i] = r.Label
	}

	logger.Info().Int("documents", len(texts)).Int("jobs", jobs).Msg("tokenizing")
	docs, err := tok.TokenizeBatch(ctx, texts, batchSize, jobs, decileProgress(func(done, total int) {
		logger.Debug().Int("done", done).Int("total", total).Msg("tokenizing progress")
	}))
	if err != nil {
		return nil, nil, err
	}

	if err := cache.Put(ctx, dataset, fingerprint, docs, labels, batchSize); err != nil {
		logger.Warn().Err(err).Msg("failed to cache tokens")
	}

	reportVocabulary(docs)
	return docs, labels, nil
}

// decileProgress wraps report so it fires at most once per completed
// decile. TokenizeBatch calls the progress callback from its worker
// goroutines, so the throttle state must be safe for concurrent use.
func decileProgress(report func(done, total int)) func(done, total int) {
	var last atomic.Int64
	return func(done, total int) {
		decile := int64(done * 10 / total)
		prev := last.Load()
		if decile > prev && last.CompareAndSwap(prev, decile) {
			report(done, total)
		}
	}
}

func reportVocabulary(docs [][]string) {
	vocab := make(map[string]struct{})
	for _, doc := range docs {
		for _, tok := range doc {
			vocab[tok] = struct{}{}
		}
	}
	fmt.Printf("Dataset vocabulary size: %s\n", colorize(fmt.Sprint(len(vocab)), ansiBlue))
}

// confirm asks a yes/no question on the terminal. Non-interactive runs
// never block on a prompt and get the default answer.
func confirm(prompt string, def bool) bool {
	if !isTerminal(os.Stdin) {
		return def
	}
	suffix := "[Y/n]"
	if !def {
		suffix = "[y/N]"
	}
	fmt.Printf("%s %s: ", prompt, suffix)

	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return def
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		return def
	}
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

const (
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiBlue   = "\033[34m"
	ansiReset  = "\033[0m"
)

func colorize(s, color string) string {
	if os.Getenv("NO_COLOR") != "" || !isTerminal(os.Stdout) {
		return s
	}
	return color + s + ansiReset
}

func labelColor(label sentiment.Label) string {
	switch label {
	case sentiment.LabelPositive:
		return ansiGreen
	case sentiment.LabelNegative:
		return ansiRed
	default:
		return ansiYellow
	}
}
