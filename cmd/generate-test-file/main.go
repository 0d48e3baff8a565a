package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
)

func main() {
	numLines := flag.Int("lines", 1000, "Number of lines to generate")
	numChanges := flag.Int("changes", 50, "Number of mutations applied to the second file")
	seed := flag.Int64("seed", 42, "Random seed, same seed gives the same pair")
	outputA := flag.String("output-a", "test_a.txt", "First output file path")
	outputB := flag.String("output-b", "test_b.txt", "Second output file path")
	flag.Parse()

	if *numLines < 1 {
		fmt.Fprintf(os.Stderr, "lines must be at least 1\n")
		os.Exit(1)
	}
	if *numChanges < 0 {
		fmt.Fprintf(os.Stderr, "changes must not be negative\n")
		os.Exit(1)
	}

	rng := rand.New(rand.NewSource(*seed))

	linesA := generateLines(*numLines)
	linesB := mutate(append([]string(nil), linesA...), *numChanges, rng)

	sizeA, err := writeLines(*outputA, linesA)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write file: %v\n", err)
		os.Exit(1)
	}
	sizeB, err := writeLines(*outputB, linesB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write file: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Generated %d lines, applied %d mutations\n", *numLines, *numChanges)
	fmt.Printf("Saved to: %s (%.2f KB) and %s (%.2f KB)\n",
		*outputA, float64(sizeA)/1024, *outputB, float64(sizeB)/1024)
}

func generateLines(total int) []string {
	lines := make([]string, 0, total)
	for i := 0; i < total; i++ {
		lines = append(lines, generateUniqueLine(i))
	}
	return lines
}

func generateUniqueLine(index int) string {
	categories := []string{
		"Task", "Note", "Idea", "Bug", "Feature", "Enhancement",
		"Documentation", "Refactor", "Test", "Optimization",
		"Research", "Design", "Implementation", "Review",
	}

	category := categories[index%len(categories)]
	return fmt.Sprintf("%s #%d - %s", category, index, generateDescription(index))
}

func generateDescription(index int) string {
	descriptions := []string{
		"Core functionality",
		"User interface",
		"Performance improvement",
		"Bug fix",
		"New capability",
		"API integration",
		"Data validation",
		"Error handling",
		"Caching layer",
		"Database schema",
		"Authentication",
		"Configuration",
		"Logging system",
		"Monitoring",
		"Security audit",
	}

	return descriptions[index%len(descriptions)]
}

// mutate applies random edits: replacing, deleting, inserting or moving a
// line. The result is a file that looks like a revision of the first one.
func mutate(lines []string, changes int, rng *rand.Rand) []string {
	for c := 0; c < changes; c++ {
		if len(lines) == 0 {
			lines = append(lines, generateUniqueLine(c))
			continue
		}

		i := rng.Intn(len(lines))
		switch rng.Intn(4) {
		case 0: // replace
			lines[i] = lines[i] + " (revised)"
		case 1: // delete
			lines = append(lines[:i], lines[i+1:]...)
		case 2: // insert
			extra := fmt.Sprintf("Inserted #%d - %s", c, generateDescription(c))
			lines = append(lines[:i], append([]string{extra}, lines[i:]...)...)
		case 3: // move
			j := rng.Intn(len(lines))
			line := lines[i]
			lines = append(lines[:i], lines[i+1:]...)
			if j > len(lines) {
				j = len(lines)
			}
			lines = append(lines[:j], append([]string{line}, lines[j:]...)...)
		}
	}
	return lines
}

func writeLines(path string, lines []string) (int, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return 0, err
		}
	}

	data := []byte(strings.Join(lines, "\n") + "\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, err
	}
	return len(data), nil
}
