// Package cli implements the recall CLI commands.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/relaymind/recall/internal/observability"
	"github.com/relaymind/recall/internal/profile"
	"github.com/relaymind/recall/plugin/ai"
	"github.com/relaymind/recall/store"
	"github.com/relaymind/recall/store/db"
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "recall",
	Short: "Tiered conversational memory engine",
	Long:  "recall stores semantic facts durably, keeps a tiered conversational working set, and answers relevance queries across all tiers.",
}

// Execute runs the CLI.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	RootCmd.PersistentFlags().String("mode", "demo", "Run mode: demo, dev, prod")
	RootCmd.PersistentFlags().String("data", ".", "Data directory")
	RootCmd.PersistentFlags().String("driver", "sqlite", "Database driver: sqlite or postgres")
	RootCmd.PersistentFlags().String("dsn", "", "Database connection string")
	RootCmd.PersistentFlags().Int("dim", 128, "Embedding vector dimension")
	RootCmd.PersistentFlags().Bool("verbose", false, "Enable debug logging")

	viper.BindPFlag("mode", RootCmd.PersistentFlags().Lookup("mode"))
	viper.BindPFlag("data", RootCmd.PersistentFlags().Lookup("data"))
	viper.BindPFlag("driver", RootCmd.PersistentFlags().Lookup("driver"))
	viper.BindPFlag("dsn", RootCmd.PersistentFlags().Lookup("dsn"))
	viper.BindPFlag("dim", RootCmd.PersistentFlags().Lookup("dim"))
	viper.SetEnvPrefix("recall")
	viper.AutomaticEnv()
}

// newEngine wires profile, driver, store, embedder, and engine for a
// command invocation.
func newEngine() (*ai.Engine, error) {
	p := &profile.Profile{
		Mode:      viper.GetString("mode"),
		Data:      viper.GetString("data"),
		Driver:    viper.GetString("driver"),
		DSN:       viper.GetString("dsn"),
		VectorDim: viper.GetInt("dim"),
	}
	p.FromEnv()
	if err := p.Validate(); err != nil {
		return nil, err
	}

	dbDriver, err := db.NewDBDriver(p)
	if err != nil {
		return nil, err
	}

	s := store.New(dbDriver, p)
	if err := s.Init(context.Background()); err != nil {
		s.Close()
		return nil, err
	}

	cfg := ai.NewConfigFromProfile(p)
	embedder, err := ai.NewEmbeddingService(&cfg.Embedding)
	if err != nil {
		s.Close()
		return nil, err
	}

	level := slog.LevelInfo
	if verbose, _ := RootCmd.PersistentFlags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	session := observability.NewSessionContext(logger)

	return ai.NewEngine(cfg, s, embedder, nil, session)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
