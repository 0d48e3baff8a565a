package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"regexp"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"znkr.io/diff/textdiff"

	"github.com/JehleM/compare-plugin/internal/engine"
	"github.com/JehleM/compare-plugin/internal/storage"
	"github.com/JehleM/compare-plugin/internal/textview"
)

var (
	ignoreSpaces     bool
	ignoreAllSpaces  bool
	ignoreCase       bool
	ignoreEmptyLines bool
	ignoreRegex      string
	detectMoves      bool
	showStat         bool
	quiet            bool
	watch            bool
)

var errFilesDiffer = errors.New("files differ")

var rootCmd = &cobra.Command{
	Use:   "filediff [flags] <file1> <file2>",
	Short: "Compare two text files and print a unified diff",
	Long: `Compare two text files and print a unified diff.

The ignore options decide whether the files count as different and what
--stat reports. The printed diff always shows the files as they are.

Exit status is 0 when the files match, 1 when they differ and 2 when
something went wrong.`,
	Args:          cobra.ExactArgs(2),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts, err := buildOptions()
		if err != nil {
			return err
		}

		if watch {
			return watchFiles(args[0], args[1], opts)
		}

		differs, err := runDiff(args[0], args[1], opts, os.Stdout)
		if err != nil {
			return err
		}
		if differs {
			return errFilesDiffer
		}
		return nil
	},
}

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&ignoreSpaces, "ignore-spaces", false, "Ignore leading, trailing and repeated whitespace")
	f.BoolVar(&ignoreAllSpaces, "ignore-all-spaces", false, "Ignore all whitespace")
	f.BoolVarP(&ignoreCase, "ignore-case", "i", false, "Ignore letter case")
	f.BoolVar(&ignoreEmptyLines, "ignore-empty-lines", false, "Ignore empty lines")
	f.StringVar(&ignoreRegex, "ignore-regex", "", "Ignore lines matching this pattern")
	f.BoolVar(&detectMoves, "moves", true, "Detect moved lines in the counts")
	f.BoolVar(&showStat, "stat", false, "Print difference counts instead of the diff")
	f.BoolVarP(&quiet, "quiet", "q", false, "Print nothing, the exit status tells the result")
	f.BoolVarP(&watch, "watch", "w", false, "Keep watching both files and report every change")
}

func main() {
	log.SetFlags(0)
	log.SetOutput(os.Stderr)

	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFilesDiffer) {
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
}

func buildOptions() (engine.Options, error) {
	opts := engine.Options{
		IgnoreSpaces:     ignoreSpaces,
		IgnoreAllSpaces:  ignoreAllSpaces,
		IgnoreCase:       ignoreCase,
		IgnoreEmptyLines: ignoreEmptyLines,
		DetectMoves:      detectMoves,
	}
	if ignoreRegex != "" {
		re, err := regexp.Compile(ignoreRegex)
		if err != nil {
			return opts, fmt.Errorf("bad --ignore-regex: %v", err)
		}
		opts.IgnoreRegex = re
	}
	return opts, nil
}

// loadBuffers reads both files with normalized line endings.
func loadBuffers(pathA, pathB string) (bufA, bufB *textview.Buffer, err error) {
	textA, err := storage.NewFileStore(pathA).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %v", pathA, err)
	}
	textB, err := storage.NewFileStore(pathB).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %v", pathB, err)
	}
	bufA = textview.NewBuffer(textview.Main, filepath.Base(pathA), textA)
	bufB = textview.NewBuffer(textview.Sub, filepath.Base(pathB), textB)
	return bufA, bufB, nil
}

func runDiff(pathA, pathB string, opts engine.Options, w io.Writer) (bool, error) {
	bufA, bufB, err := loadBuffers(pathA, pathB)
	if err != nil {
		return false, err
	}

	sum := engine.Compare(bufA, bufB, opts)
	differs := sum.DiffLines > 0

	switch {
	case quiet:
	case showStat:
		fmt.Fprintf(w, "%s: %d lines\n%s: %d lines\n", pathA, bufA.LineCount(), pathB, bufB.LineCount())
		fmt.Fprintln(w, statLine(sum))
	case differs:
		body := textdiff.Unified(bufA.Text()+"\n", bufB.Text()+"\n", textdiff.IndentHeuristic())
		fmt.Fprintf(w, "--- %s\n+++ %s\n%s", pathA, pathB, body)
	}

	return differs, nil
}

func statLine(sum *engine.Summary) string {
	if sum.DiffLines == 0 {
		return "files match"
	}
	return fmt.Sprintf("%d diff lines: %d added, %d removed, %d changed, %d moved",
		sum.DiffLines, sum.Added, sum.Removed, sum.Changed, sum.Moved)
}

// watchFiles re-runs the comparison whenever either file changes and prints
// a timestamped verdict, until interrupted.
func watchFiles(pathA, pathB string, opts engine.Options) error {
	absA, err := filepath.Abs(pathA)
	if err != nil {
		return err
	}
	absB, err := filepath.Abs(pathB)
	if err != nil {
		return err
	}

	report := func() {
		bufA, bufB, err := loadBuffers(pathA, pathB)
		if err != nil {
			log.Printf("%s %v", time.Now().Format("15:04:05"), err)
			return
		}
		sum := engine.Compare(bufA, bufB, opts)
		fmt.Printf("%s %s\n", time.Now().Format("15:04:05"), statLine(sum))
	}
	report()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %v", err)
	}
	defer watcher.Close()

	dirs := map[string]bool{filepath.Dir(absA): true, filepath.Dir(absB): true}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("starting watch: %v", err)
		}
	}

	sigint := make(chan os.Signal, 1)
	signal.Notify(sigint, os.Interrupt)

	for {
		select {
		case event := <-watcher.Events:
			// Absolutely no need to react to chmod.
			if event.Has(fsnotify.Chmod) {
				continue
			}
			name := filepath.Clean(event.Name)
			if name != absA && name != absB {
				continue
			}
			// Editors often truncate and rewrite, give them a moment.
			time.Sleep(50 * time.Millisecond)
			report()
		case err := <-watcher.Errors:
			return fmt.Errorf("watching: %v", err)
		case <-sigint:
			fmt.Print("\r")
			return nil
		}
	}
}
