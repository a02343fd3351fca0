// Package cli provides the command-line interface for dbdeck.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dbdeck/dbdeck/internal/config"
	"github.com/dbdeck/dbdeck/internal/session"
	"github.com/dbdeck/dbdeck/pkg/core"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
)

var (
	cfgFile     string
	profileFlag string
)

// configKey is used to store config in context.
type configKey struct{}

// loggerKey is used to store logger in context.
type loggerKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "dbdeck",
		Short:   "dbdeck - database client backend",
		Long:    `dbdeck connects to PostgreSQL, MySQL and SQLite databases through named profiles and runs queries and schema introspection against them.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelInfo
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			}))

			ctx := context.WithValue(cmd.Context(), configKey{}, cfg)
			ctx = context.WithValue(ctx, loggerKey{}, logger)
			cmd.SetContext(ctx)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./dbdeck.yaml)")
	rootCmd.PersistentFlags().StringVarP(&profileFlag, "profile", "p", "", "connection profile to use")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "output format (table|json|csv)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"table", "json", "csv"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newQueryCommand())
	rootCmd.AddCommand(newTablesCommand())
	rootCmd.AddCommand(newColumnsCommand())
	rootCmd.AddCommand(newIndexesCommand())
	rootCmd.AddCommand(newSelectCommand())
	rootCmd.AddCommand(newPingCommand())
	rootCmd.AddCommand(newInfoCommand())
	rootCmd.AddCommand(newProfilesCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// getConfig retrieves the config from the command context.
func getConfig(ctx context.Context) *config.Config {
	if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
		return c
	}
	return &config.Config{Output: "table"}
}

// getLogger retrieves the logger from the command context.
func getLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// selectedProfile resolves the profile named by --profile or the
// configured default.
func selectedProfile(cmd *cobra.Command) (core.ConnectionConfig, string, error) {
	return getConfig(cmd.Context()).Profile(profileFlag)
}

// openSession connects a session for the selected profile. The caller
// owns the returned session and must Close it.
func openSession(cmd *cobra.Command) (*session.Session, error) {
	profile, name, err := selectedProfile(cmd)
	if err != nil {
		return nil, err
	}
	logger := getLogger(cmd.Context())
	mgr := session.NewManager(nil, logger)
	s, err := mgr.Connect(cmd.Context(), name, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to connect profile %q: %w", name, err)
	}
	return s, nil
}

// outputFormat returns the effective output format for a command.
func outputFormat(cmd *cobra.Command) string {
	if f, _ := cmd.Flags().GetString("output"); f != "" {
		return f
	}
	if f := getConfig(cmd.Context()).Output; f != "" {
		return f
	}
	return "table"
}
