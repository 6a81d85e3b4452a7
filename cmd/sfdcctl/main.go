package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "✗ %v\n", err)
		os.Exit(1)
	}
}
