package main

import (
	"fmt"
	"os"

	"github.com/farmhands/worker-notifier/pkg/cli"
)

func main() {
	root := cli.NewRootCommand(cli.DefaultOptions())
	if err := root.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
