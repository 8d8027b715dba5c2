package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/xeitosa/socialai/internal/app"
	"github.com/xeitosa/socialai/internal/config"
	"github.com/xeitosa/socialai/internal/observability"
)

var Version = "dev"

var rootCmd = &cobra.Command{
	Use:           "socialai",
	Short:         "Write social media copy in an artist's voice",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		flagTUI = true
		return runGenerate(cmd, args)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "socialai %s\n", Version)
	},
}

var (
	flagConfig       string
	flagLogLevel     string
	flagModel        string
	flagArtistConfig string
	flagVerbose      bool
)

func init() {
	rootCmd.AddCommand(versionCmd)
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVarP(&flagModel, "model", "m", "", "Generation model: gemini-flash, gemini-pro, haiku, sonnet, nova-lite, or a full model id (overrides SOCIALAI_MODEL)")
	rootCmd.PersistentFlags().StringVar(&flagArtistConfig, "artist-config", "", "Persona document path or s3:// URL (overrides ARTIST_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable detailed logging")
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadConfig reads the config file and environment, then applies the
// persistent flags.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagModel != "" {
		cfg.Model = flagModel
	}
	if flagArtistConfig != "" {
		cfg.ArtistConfig = flagArtistConfig
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}
	return cfg, nil
}

// openApp builds the shared services. Interactive commands pass quiet so
// logs do not interleave with the progress display; --verbose restores them.
func openApp(cmd *cobra.Command, quiet bool) (*app.App, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var out io.Writer = os.Stderr
	level := cfg.LogLevel
	switch {
	case flagVerbose:
		level = "debug"
	case quiet && flagLogLevel == "":
		out = io.Discard
	}
	logger := observability.NewLogger(out, level)

	return app.New(cmd.Context(), cfg, logger)
}

// requireWriter returns the reason generation is unavailable, if any.
func requireWriter(a *app.App) error {
	if a.Writer == nil {
		return a.ProviderErr
	}
	return nil
}

// printWarnings reports failed backups without failing the command.
func printWarnings(cmd *cobra.Command, warnings []string) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
	}
}
