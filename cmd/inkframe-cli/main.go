// CLI-only version (no GUI dependencies)
package main

import (
	"context"
	"fmt"
	"os"

	"inkframe/internal/cli"
)

func main() {
	if len(os.Args) < 2 {
		cli.PrintUsage(os.Stdout, "inkframe-cli", false)
		os.Exit(1)
	}

	command := os.Args[1]

	switch command {
	case "info":
		if len(os.Args) < 3 {
			fmt.Println("Usage: inkframe-cli info <image>")
			os.Exit(1)
		}
		cfg, err := cli.LoadConfig("")
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if err := cli.Info(os.Stdout, os.Args[2], cfg); err != nil {
			fmt.Printf("Error opening image: %v\n", err)
			os.Exit(1)
		}

	case "filters":
		cli.Filters(os.Stdout)

	case "render":
		if err := cli.Render(context.Background(), os.Stdout, os.Args[2:]); err != nil {
			fmt.Printf("Error rendering: %v\n", err)
			os.Exit(1)
		}

	case "help", "-h", "--help":
		cli.PrintUsage(os.Stdout, "inkframe-cli", false)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		cli.PrintUsage(os.Stdout, "inkframe-cli", false)
		os.Exit(1)
	}
}
