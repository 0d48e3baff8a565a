package export

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"znkr.io/diff/textdiff"

	"github.com/JehleM/compare-plugin/internal/engine"
)

// Report bundles everything a written comparison report needs. Summary may
// be nil, the counts line is skipped then.
type Report struct {
	MainName string
	SubName  string
	MainText string
	SubText  string
	Summary  *engine.Summary
}

// WriteReport writes a comparison report: a header naming the files and the
// difference counts, followed by a unified diff of the two texts.
func WriteReport(w io.Writer, rep *Report) error {
	now := time.Now().Format("2006-01-02 15:04:05")
	if _, err := fmt.Fprintf(w, "# Comparison report, generated %s\n# first:  %s\n# second: %s\n",
		now, rep.MainName, rep.SubName); err != nil {
		return fmt.Errorf("failed to write report header: %w", err)
	}

	if sum := rep.Summary; sum != nil {
		if _, err := fmt.Fprintf(w, "# %d diff lines: %d added, %d removed, %d changed, %d moved\n",
			sum.DiffLines, sum.Added, sum.Removed, sum.Changed, sum.Moved); err != nil {
			return fmt.Errorf("failed to write report header: %w", err)
		}
	}

	body := textdiff.Unified(withFinalNewline(rep.MainText), withFinalNewline(rep.SubText), textdiff.IndentHeuristic())
	if body == "" {
		_, err := fmt.Fprintf(w, "\nThe files match.\n")
		if err != nil {
			return fmt.Errorf("failed to write report body: %w", err)
		}
		return nil
	}

	if _, err := fmt.Fprintf(w, "\n--- %s\n+++ %s\n%s", rep.MainName, rep.SubName, body); err != nil {
		return fmt.Errorf("failed to write report body: %w", err)
	}
	return nil
}

// WriteReportFile writes the report to a file, replacing an existing one.
func WriteReportFile(path string, rep *Report) error {
	var sb strings.Builder
	if err := WriteReport(&sb, rep); err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}
	return nil
}

// withFinalNewline keeps the unified output clean for texts whose last line
// has no terminator.
func withFinalNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
