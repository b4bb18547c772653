package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Interactive session against the tiered memory",
		Long:  "Read user messages line by line, show the relevant context for each, and advance the conversation state machine.",
		Run:   runChat,
	}
	RootCmd.AddCommand(cmd)
}

func runChat(cmd *cobra.Command, args []string) {
	engine, err := newEngine()
	if err != nil {
		exitErr("chat", err)
	}
	defer engine.Close()

	fmt.Println("recall chat (ctrl-d to exit)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		relevant := engine.RelevantContext(line)
		if relevant.ProfileSummary != "" {
			fmt.Println(relevant.ProfileSummary)
		}
		for _, episode := range relevant.Episodes {
			fmt.Printf("episode: %s\n", episode)
		}
		for _, snippet := range relevant.LongTermSnippets {
			fmt.Printf("memory: %s\n", snippet)
		}
		for _, contradiction := range relevant.Contradictions {
			fmt.Printf("warning: %s\n", contradiction)
		}

		engine.ProcessTurn(line, "Noted.")
	}
	fmt.Println()
}
