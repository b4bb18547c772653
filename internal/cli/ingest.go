package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest [text]",
		Short: "Durably store a semantic fact",
		Long:  "Embed a fact and store it durably. Text can be a positional arg or piped via stdin, one fact per line.",
		Run:   runIngest,
	}
	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) {
	engine, err := newEngine()
	if err != nil {
		exitErr("ingest", err)
	}
	defer engine.Close()

	facts := []string{}
	if len(args) > 0 {
		facts = append(facts, strings.Join(args, " "))
	} else {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			exitErr("read stdin", err)
		}
		for _, line := range strings.Split(string(b), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				facts = append(facts, line)
			}
		}
	}
	if len(facts) == 0 {
		exitErr("ingest", fmt.Errorf("no fact text provided"))
	}

	ctx := context.Background()
	for _, fact := range facts {
		record, err := engine.StoreSemanticFact(ctx, fact)
		if err != nil {
			exitErr("store fact", err)
		}
		fmt.Println(record.ID)
	}
}
