// Package cli implements the proporco administration commands.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mamadbah2/proporco/internal/config"
	"github.com/mamadbah2/proporco/internal/repository/store"
	"github.com/mamadbah2/proporco/pkg/logger"
)

type options struct {
	envFile string
	verbose bool
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "proporco",
		Short:         "proporco administers the swine farm records",
		Long:          "proporco migrates the record store, manages accounts, mints API tokens and prints financial reports.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", "", "Path to a .env file")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log store activity to stderr")

	root.AddCommand(
		newMigrateCommand(opts),
		newAccountCommand(opts),
		newTokenCommand(opts),
		newReportCommand(opts),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// withStore loads the configuration, opens and migrates the record store and
// hands both to run.
func withStore(ctx context.Context, opts *options, run func(*config.Config, *store.Store, *zap.Logger) error) error {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return err
	}

	log := zap.NewNop()
	if opts.verbose {
		log, err = logger.New("development")
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		defer func() { _ = log.Sync() }()
	}

	st, err := store.Open(cfg.Database, log.Named("repo.store"))
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	return run(cfg, st, log)
}
