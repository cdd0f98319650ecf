package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"inkframe/internal/cli"
	"inkframe/internal/gui"
)

func main() {
	if len(os.Args) < 2 {
		cmdGUI(nil)
		return
	}

	command := os.Args[1]

	switch command {
	case "info":
		if len(os.Args) < 3 {
			fmt.Println("Usage: inkframe info <image>")
			os.Exit(1)
		}
		cmdInfo(os.Args[2])

	case "filters":
		cli.Filters(os.Stdout)

	case "render":
		if err := cli.Render(context.Background(), os.Stdout, os.Args[2:]); err != nil {
			fmt.Printf("Error rendering: %v\n", err)
			os.Exit(1)
		}

	case "gui":
		cmdGUI(os.Args[2:])

	case "help", "-h", "--help":
		cli.PrintUsage(os.Stdout, "inkframe", true)

	default:
		// If it looks like an image, open the editor
		if isImage(command) {
			cmdGUI(os.Args[1:])
		} else {
			fmt.Printf("Unknown command: %s\n", command)
			cli.PrintUsage(os.Stdout, "inkframe", true)
			os.Exit(1)
		}
	}
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return true
	}
	return false
}

func cmdInfo(path string) {
	cfg, err := cli.LoadConfig("")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}
	if err := cli.Info(os.Stdout, path, cfg); err != nil {
		fmt.Printf("Error opening image: %v\n", err)
		os.Exit(1)
	}
}

func cmdGUI(args []string) {
	cfg, err := cli.LoadConfig("")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	app := gui.NewApp(cfg)
	if len(args) > 0 {
		app.RunWithFile(args[0])
	} else {
		app.Run()
	}
}
