// Package report renders the statistics produced by a crawl into a
// human-readable summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/jrmhx/GopherIndexer/internal/stats"
)

// Print writes a human-readable report of s to w: total visited keys,
// successful/bad text and binary files (with their lists), smallest-text
// contents, the four size extrema, the union of external up/down lists,
// and the unique invalid references.
func Print(w io.Writer, s *stats.Stats) {
	fmt.Fprintf(w, "Gopher crawl report\n")
	fmt.Fprintf(w, "===================\n\n")

	fmt.Fprintf(w, "Visited directories: %d\n\n", s.VisitedCount)

	printList(w, "Text files", s.TextFiles)
	printList(w, "Bad text files", s.BadTextFiles)
	printList(w, "Binary files", s.BinaryFiles)
	printList(w, "Bad binary files", s.BadBinaryFiles)

	fmt.Fprintf(w, "Smallest text size: %s\n", sizeOrNone(s.SmallestTextSize, len(s.TextFiles)))
	fmt.Fprintf(w, "Largest text size: %d\n", s.LargestTextSize)
	fmt.Fprintf(w, "Smallest binary size: %s\n", sizeOrNone(s.SmallestBinarySize, len(s.BinaryFiles)))
	fmt.Fprintf(w, "Largest binary size: %d\n\n", s.LargestBinarySize)

	fmt.Fprintf(w, "Smallest text contents:\n%s\n\n", s.SmallestTextContents)

	printList(w, "External servers (union of up and down)", externalUnion(s))
	printList(w, "Unique invalid references", s.UniqueInvalidReferences)
}

func sizeOrNone(size, count int) string {
	if count == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%d", size)
}

func externalUnion(s *stats.Stats) []string {
	seen := make(map[string]struct{}, len(s.ExternalServersUp)+len(s.ExternalServersDown))
	var union []string
	for _, hp := range append(append([]string{}, s.ExternalServersUp...), s.ExternalServersDown...) {
		if _, ok := seen[hp]; ok {
			continue
		}
		seen[hp] = struct{}{}
		union = append(union, hp)
	}
	sort.Strings(union)
	return union
}

func printList(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
	fmt.Fprintln(w)
}

// PrintJSON writes s as JSON to w, a structured counterpart to Print for
// tooling that wants to consume a crawl's results programmatically.
func PrintJSON(w io.Writer, s *stats.Stats) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}
