package ui

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/JehleM/compare-plugin/internal/config"
)

// EditFileInExternalEditor opens the file in the user's editor and blocks
// until it exits. The caller suspends the terminal first and reloads the
// view afterwards. Returns true when the file content changed on disk.
func EditFileInExternalEditor(path string, cfg *config.Config) (bool, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}

	editorCmd := resolveEditor(cfg)

	// Launch editor using shell to properly handle commands with arguments like "vim --clean"
	cmd := exec.Command("sh", "-c", editorCmd+" "+shellQuote(path))

	// Inherit stdin/stdout/stderr from the current process for proper terminal interaction
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		// Editor exited with error, but we should still try to read the file
		if _, ok := err.(*exec.ExitError); !ok {
			return false, fmt.Errorf("failed to launch editor: %w", err)
		}
	}

	edited, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read edited file: %w", err)
	}

	return !bytes.Equal(original, edited), nil
}

// shellQuote wraps path in single quotes for the sh -c command line.
func shellQuote(path string) string {
	return "'" + strings.ReplaceAll(path, "'", `'\''`) + "'"
}

// resolveEditor determines which editor to use
func resolveEditor(cfg *config.Config) string {
	// Check if editor is configured via :set editor
	if editorVal := cfg.Get("editor"); editorVal != "" {
		return editorVal
	}

	// Check EDITOR environment variable
	if editor := os.Getenv("EDITOR"); editor != "" {
		return editor
	}

	// Default fallback
	return "vi"
}
