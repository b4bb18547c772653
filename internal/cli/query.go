package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "query [text]",
		Short: "Search stored semantic facts by similarity",
		Args:  cobra.MinimumNArgs(1),
		Run:   runQuery,
	}
	cmd.Flags().IntP("top", "k", 5, "Number of results")
	cmd.Flags().Bool("hybrid", false, "Fuse similarity search with the keyword tier")
	RootCmd.AddCommand(cmd)
}

func runQuery(cmd *cobra.Command, args []string) {
	engine, err := newEngine()
	if err != nil {
		exitErr("query", err)
	}
	defer engine.Close()

	query := strings.Join(args, " ")
	k, _ := cmd.Flags().GetInt("top")
	hybrid, _ := cmd.Flags().GetBool("hybrid")
	ctx := context.Background()

	if hybrid {
		for _, result := range engine.HybridRetrieve(ctx, query, k) {
			fmt.Printf("%.4f\t%s\n", result.Score, result.Content)
		}
		return
	}

	for _, text := range engine.RetrieveSemanticContext(ctx, query, k) {
		fmt.Println(text)
	}
}
