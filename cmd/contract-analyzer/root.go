package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/contract-analyzer/internal/common"
)

type rootFlags struct {
	envFile   string
	logLevel  string
	logFormat string
}

func newRootCmd() *cobra.Command {
	a := &app{}
	var flags rootFlags

	root := &cobra.Command{
		Use:           "contract-analyzer",
		Short:         "Extract, analyze and store contract PDFs",
		Long:          "Reads contract PDFs (native text first, OCR for scans), sends the text to an\nAzure OpenAI deployment and stores a summary with clauses, risks and dates.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := common.LoadEnvFile(flags.envFile); err != nil {
				return err
			}
			cfg := common.LoadConfig()
			if err := cfg.Validate(); err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = common.NewLogger(cmd.ErrOrStderr(), flags.logLevel, flags.logFormat)
			slog.SetDefault(a.logger)
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flags.envFile, "env-file", "", "load environment from this file (default .env if present)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", envOr("LOG_LEVEL", "info"), "debug|info|warn|error")
	root.PersistentFlags().StringVar(&flags.logFormat, "log-format", envOr("LOG_FORMAT", "text"), "text|json")

	root.AddCommand(
		newServeCmd(a),
		newAnalyzeCmd(a),
		newWatchCmd(a),
		newExportCmd(a),
		newInfoCmd(a),
	)
	return root
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
