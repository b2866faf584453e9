package main

import (
	"fmt"
	"os"

	"github.com/cuemby/cybershield/pkg/config"
	"github.com/cuemby/cybershield/pkg/events"
	"github.com/cuemby/cybershield/pkg/kv"
	"github.com/cuemby/cybershield/pkg/log"
	"github.com/cuemby/cybershield/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "shieldctl",
	Short: "shieldctl - operate the CyberShield state store",
	Long: `shieldctl inspects and administers the state behind the CyberShield
quiz: support tickets, the block list, custom questions, visitors,
the digital detox leaderboard, the broadcast message and lockdown.

Settings are read from --config, a .env file and CYBERSHIELD_* variables.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"shieldctl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("config", "", "Path to YAML config file")

	rootCmd.AddCommand(ticketCmd)
	rootCmd.AddCommand(blockCmd)
	rootCmd.AddCommand(questionCmd)
	rootCmd.AddCommand(visitorCmd)
	rootCmd.AddCommand(messageCmd)
	rootCmd.AddCommand(lockdownCmd)
	rootCmd.AddCommand(detoxCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(serveMetricsCmd)
}

// loadConfig reads configuration and initializes logging
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log.Init(cfg.LogConfig())
	return cfg, nil
}

// withStore opens the configured backend, runs fn and closes the backend
func withStore(cmd *cobra.Command, fn func(*storage.Store) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	backend, err := kv.Open(cfg.KVOptions())
	if err != nil {
		return fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
	}
	defer func() {
		if err := backend.Close(); err != nil {
			log.Logger.Warn().Err(err).Msg("Failed to close backend")
		}
	}()

	return fn(storage.New(backend, events.NewBroker()))
}

// userError replaces actionable store errors with their end-user text
func userError(err error) error {
	if err == nil {
		return nil
	}
	msg := storage.UserMessage(err)
	log.Logger.Debug().Err(err).Msg(msg)
	return fmt.Errorf("%s (%w)", msg, err)
}
