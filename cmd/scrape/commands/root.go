package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"eventsScraper/internal/app"
	"eventsScraper/internal/config"
)

var (
	configPath string
	env        string

	cfg *config.Config
	log *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:           "scrape",
	Short:         "scrape extracts events from South African ticketing sites.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = os.Getenv("CONFIG_PATH")
		}

		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded

		if env == "" {
			env = cfg.Env
		}
		log = app.NewLogger(env, cmd.ErrOrStderr())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (defaults to $CONFIG_PATH)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "logger environment: local, dev or prod")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
