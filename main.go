package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/JehleM/compare-plugin/internal/app"
	"github.com/JehleM/compare-plugin/internal/config"
)

func main() {
	debug := flag.Bool("debug", false, "Enable debug mode (shows key events in status)")
	themeName := flag.String("theme", "", "Color theme, overrides the configured one")
	logPath := flag.String("log", "", "Log file path (default: comparetui.log in the config directory)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		usage()
		os.Exit(2)
	}

	logFile, err := os.Create(resolveLogPath(*logPath))
	if err != nil {
		log.Fatal(err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if *themeName != "" {
		cfg.Theme = *themeName
	}

	application, err := app.NewApp(args[0], args[1], cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *debug {
		application.SetDebugMode(true)
	}

	if err := application.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Runtime error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] <file1> <file2>\n\nCompare two text files side by side.\n\nFlags:\n", filepath.Base(os.Args[0]))
	flag.PrintDefaults()
}

// resolveLogPath puts the log next to the config file unless -log says
// otherwise, falling back to the working directory.
func resolveLogPath(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	dir, err := config.GetConfigDir()
	if err != nil {
		return "comparetui.log"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "comparetui.log"
	}
	return filepath.Join(dir, "comparetui.log")
}
