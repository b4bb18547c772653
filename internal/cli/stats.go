package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show durable store statistics",
		Run:   runStats,
	}
	RootCmd.AddCommand(cmd)
}

func runStats(cmd *cobra.Command, args []string) {
	engine, err := newEngine()
	if err != nil {
		exitErr("stats", err)
	}
	defer engine.Close()

	count, err := engine.CountStoredFacts(context.Background())
	if err != nil {
		exitErr("count records", err)
	}
	fmt.Printf("stored facts: %d\n", count)
}
