// Package stats implements the single-writer statistics aggregate the
// indexer populates during a crawl and the external printer reads once the
// crawl returns.
package stats

import (
	"encoding/json"
	"math"

	deadlock "github.com/sasha-s/go-deadlock"
)

// Stats is populated exclusively by the indexer's single traversal thread;
// the guard mutex serializes any accidental concurrent use rather than
// coordinating real contention, and go-deadlock reports a lock that is
// re-acquired by its holder or waited on past its timeout.
type Stats struct {
	mu deadlock.Mutex

	TextFiles      []string
	BadTextFiles   []string
	BinaryFiles    []string
	BadBinaryFiles []string

	ExternalServersUp   []string
	ExternalServersDown []string

	UniqueInvalidReferences []string

	SmallestTextSize     int
	LargestTextSize      int
	SmallestBinarySize   int
	LargestBinarySize    int
	SmallestTextContents string

	VisitedCount int
}

// New returns a Stats with its extrema initialized so the first recorded
// file of each kind always wins: smallest = +∞ (math.MaxInt), largest = 0.
func New() *Stats {
	return &Stats{
		SmallestTextSize:   math.MaxInt,
		SmallestBinarySize: math.MaxInt,
	}
}

// RecordVisit increments the count of distinct directory keys processed.
func (s *Stats) RecordVisit() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.VisitedCount++
}

// RecordTextFile appends a successful text fetch and updates the text
// extrema and smallest-contents snapshot as a single unit. size and
// contents must correspond to the same payload.
func (s *Stats) RecordTextFile(path string, size int, contents string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TextFiles = append(s.TextFiles, path)

	if size < s.SmallestTextSize {
		s.SmallestTextSize = size
		s.SmallestTextContents = contents
	}
	if size > s.LargestTextSize {
		s.LargestTextSize = size
	}
}

// RecordBadTextFile appends a failed text fetch. It never touches extrema.
func (s *Stats) RecordBadTextFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BadTextFiles = append(s.BadTextFiles, path)
}

// RecordBinaryFile appends a successful binary fetch and updates the binary
// extrema as a unit.
func (s *Stats) RecordBinaryFile(path string, size int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.BinaryFiles = append(s.BinaryFiles, path)

	if size < s.SmallestBinarySize {
		s.SmallestBinarySize = size
	}
	if size > s.LargestBinarySize {
		s.LargestBinarySize = size
	}
}

// RecordBadBinaryFile appends a failed binary fetch.
func (s *Stats) RecordBadBinaryFile(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BadBinaryFiles = append(s.BadBinaryFiles, path)
}

// RecordExternalUp appends a "host:port" string for a live external probe.
func (s *Stats) RecordExternalUp(hostport string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExternalServersUp = append(s.ExternalServersUp, hostport)
}

// RecordExternalDown appends a "host:port" string for a dead external probe.
func (s *Stats) RecordExternalDown(hostport string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ExternalServersDown = append(s.ExternalServersDown, hostport)
}

// RecordInvalidReference appends a type-3 entry's full path.
func (s *Stats) RecordInvalidReference(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.UniqueInvalidReferences = append(s.UniqueInvalidReferences, path)
}

// snapshot is the JSON-friendly view of Stats: sentinel extrema are
// normalized to 0 when their corresponding list is empty, so "no files of
// this kind" reads as a plain zero rather than a raw math.MaxInt.
type snapshot struct {
	TextFiles               []string `json:"textFiles"`
	BadTextFiles            []string `json:"badTextFiles"`
	BinaryFiles             []string `json:"binaryFiles"`
	BadBinaryFiles          []string `json:"badBinaryFiles"`
	ExternalServersUp       []string `json:"externalServersUp"`
	ExternalServersDown     []string `json:"externalServersDown"`
	UniqueInvalidReferences []string `json:"uniqueInvalidReferences"`
	SmallestTextSize        int      `json:"smallestTextSize"`
	LargestTextSize         int      `json:"largestTextSize"`
	SmallestBinarySize      int      `json:"smallestBinarySize"`
	LargestBinarySize       int      `json:"largestBinarySize"`
	SmallestTextContents    string   `json:"smallestTextContents"`
	VisitedCount            int      `json:"visitedCount"`
}

// MarshalJSON renders Stats as JSON, a structured counterpart to the
// text report for tooling that wants to consume a crawl's results.
func (s *Stats) MarshalJSON() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	smallestText := s.SmallestTextSize
	if len(s.TextFiles) == 0 {
		smallestText = 0
	}
	smallestBinary := s.SmallestBinarySize
	if len(s.BinaryFiles) == 0 {
		smallestBinary = 0
	}

	return json.Marshal(snapshot{
		TextFiles:               s.TextFiles,
		BadTextFiles:            s.BadTextFiles,
		BinaryFiles:             s.BinaryFiles,
		BadBinaryFiles:          s.BadBinaryFiles,
		ExternalServersUp:       s.ExternalServersUp,
		ExternalServersDown:     s.ExternalServersDown,
		UniqueInvalidReferences: s.UniqueInvalidReferences,
		SmallestTextSize:        smallestText,
		LargestTextSize:         s.LargestTextSize,
		SmallestBinarySize:      smallestBinary,
		LargestBinarySize:       s.LargestBinarySize,
		SmallestTextContents:    s.SmallestTextContents,
		VisitedCount:            s.VisitedCount,
	})
}
