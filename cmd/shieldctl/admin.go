package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cuemby/cybershield/pkg/events"
	"github.com/cuemby/cybershield/pkg/kv"
	"github.com/cuemby/cybershield/pkg/log"
	"github.com/cuemby/cybershield/pkg/metrics"
	"github.com/cuemby/cybershield/pkg/storage"
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset SCOPE",
	Short: "Delete a group of collections",
	Long: `Delete every collection in SCOPE:

  tickets      support tickets only
  users        visitors, block list, detox profiles and logs
  detox        detox profiles and logs
  everything   all collections and flags (alias: all)`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scope, err := storage.ParseScope(args[0])
		if err != nil {
			return err
		}
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("reset %s deletes %v; rerun with --yes to confirm", scope, scope.Keys())
		}

		return withStore(cmd, func(s *storage.Store) error {
			if err := s.Reset(scope); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Reset %s\n", scope)
			return nil
		})
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy all state to another backend",
	Long: `Copy every key of the configured backend into a target backend.

The source is left untouched. A bolt or sqlite source file is backed up
first unless --dry-run is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		var target kv.Options
		kind, _ := cmd.Flags().GetString("to-backend")
		target.Kind = kv.Kind(kind)
		target.DataDir, _ = cmd.Flags().GetString("to-data-dir")
		target.RedisURL, _ = cmd.Flags().GetString("to-redis-url")

		source := cfg.KVOptions()
		if source.Kind == target.Kind && source.DataDir == target.DataDir && source.RedisURL == target.RedisURL {
			return errors.New("source and target backends are the same")
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Source: %s\n", describe(source))
		fmt.Fprintf(out, "Target: %s\n", describe(target))
		fmt.Fprintf(out, "Dry run: %v\n\n", dryRun)

		if !dryRun {
			if path := backendFile(source); path != "" {
				backup := path + ".backup"
				if err := copyFile(path, backup); err != nil {
					return fmt.Errorf("failed to create backup: %w", err)
				}
				fmt.Fprintf(out, "✓ Backup created: %s\n", backup)
			}
		}

		src, err := kv.Open(source)
		if err != nil {
			return fmt.Errorf("failed to open source: %w", err)
		}
		defer src.Close()

		if dryRun {
			keys, err := src.Keys()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "[DRY RUN] Would copy %d keys:\n", len(keys))
			for _, k := range keys {
				fmt.Fprintf(out, "  %s\n", k)
			}
			return nil
		}

		dst, err := kv.Open(target)
		if err != nil {
			return fmt.Errorf("failed to open target: %w", err)
		}
		defer dst.Close()

		n, err := kv.Copy(dst, src)
		if err != nil {
			return fmt.Errorf("migration stopped after %d keys: %w", n, err)
		}
		fmt.Fprintf(out, "✓ Migrated %d keys\n", n)
		return nil
	},
}

var serveMetricsCmd = &cobra.Command{
	Use:   "serve-metrics",
	Short: "Serve Prometheus metrics and health endpoints",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = cfg.MetricsAddr
		}
		interval, _ := cmd.Flags().GetDuration("interval")

		backend, err := kv.Open(cfg.KVOptions())
		if err != nil {
			return fmt.Errorf("failed to open %s backend: %w", cfg.Backend, err)
		}
		defer backend.Close()

		store := storage.New(backend, events.NewBroker())
		metrics.SetVersion(Version)
		metrics.UpdateComponent(metrics.ComponentStore, true, "")
		probeBackend(backend)

		collector := metrics.NewCollector(store, interval)
		collector.Start()
		defer collector.Stop()

		stopProbe := make(chan struct{})
		defer close(stopProbe)
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					probeBackend(backend)
				case <-stopProbe:
					return
				}
			}
		}()

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		mux.Handle("/health", metrics.HealthHandler())
		mux.Handle("/ready", metrics.ReadyHandler())
		server := &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()

		log.Logger.Info().Str("addr", addr).Str("backend", cfg.Backend).Msg("Serving metrics")

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			log.Logger.Info().Msg("Shutting down")
		case err := <-errCh:
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Confirm the deletion")

	migrateCmd.Flags().String("to-backend", string(kv.KindSQLite), "Target backend (memory, bolt, redis, sqlite)")
	migrateCmd.Flags().String("to-data-dir", "./cybershield-data-migrated", "Target data directory for bolt or sqlite")
	migrateCmd.Flags().String("to-redis-url", "", "Target Redis URL")
	migrateCmd.Flags().Bool("dry-run", false, "Show what would be migrated without making changes")

	serveMetricsCmd.Flags().String("addr", "", "Listen address (default from config metrics_addr)")
	serveMetricsCmd.Flags().Duration("interval", 15*time.Second, "Collection sampling and backend probe interval")
}

// pinger is implemented by backends with a cheap liveness check
type pinger interface {
	Ping() error
}

// probeBackend records backend reachability in the health checker
func probeBackend(backend kv.Store) {
	var err error
	if p, ok := backend.(pinger); ok {
		err = p.Ping()
	} else {
		_, err = backend.Keys()
	}
	if err != nil {
		metrics.UpdateComponent(metrics.ComponentBackend, false, err.Error())
		log.Logger.Warn().Err(err).Msg("Backend probe failed")
		return
	}
	metrics.UpdateComponent(metrics.ComponentBackend, true, "")
}

// backendFile returns the database file of a file-based backend
func backendFile(opts kv.Options) string {
	switch opts.Kind {
	case kv.KindBolt:
		return filepath.Join(opts.DataDir, kv.DefaultBoltFile)
	case kv.KindSQLite:
		return filepath.Join(opts.DataDir, kv.DefaultSQLiteFile)
	}
	return ""
}

func describe(opts kv.Options) string {
	switch opts.Kind {
	case kv.KindRedis:
		return fmt.Sprintf("redis (%s)", opts.RedisURL)
	case kv.KindBolt, kv.KindSQLite:
		return fmt.Sprintf("%s (%s)", opts.Kind, backendFile(opts))
	}
	return string(opts.Kind)
}

func copyFile(src, dst string) error {
	input, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, input, 0600)
}
