package main

import (
	"github.com/relaymind/recall/internal/cli"
)

func main() {
	cli.Execute()
}
