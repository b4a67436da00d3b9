package main

import (
	"github.com/spf13/cobra"

	sentiment "github.com/Tymec/sentiment-analysis"
)

var guiFlags struct {
	modelPath string
	addr      string
}

var guiCmd = &cobra.Command{
	Use:   "gui",
	Short: "Serve a web UI and JSON API for the model",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		model, err := sentiment.ModelFromDisk(guiFlags.modelPath)
		if err != nil {
			return err
		}

		addr := guiFlags.addr
		if addr == "" {
			addr = cfg.Server.Addr
		}

		srv := sentiment.NewServer(model, newTokenizer(ctx), addr, logger)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	guiCmd.Flags().StringVar(&guiFlags.modelPath, "model", "", "path to the trained model")
	guiCmd.Flags().StringVar(&guiFlags.addr, "addr", "", "listen address (default from config)")
	guiCmd.MarkFlagRequired("model")
	rootCmd.AddCommand(guiCmd)
}
