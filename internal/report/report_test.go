package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jrmhx/GopherIndexer/internal/report"
	"github.com/jrmhx/GopherIndexer/internal/stats"
)

func TestPrintIncludesAllSections(t *testing.T) {
	s := stats.New()
	s.RecordTextFile("a.txt", 5, "hello")
	s.RecordBadTextFile("bad.txt")
	s.RecordBinaryFile("a.bin", 10)
	s.RecordExternalUp("up:70")
	s.RecordExternalDown("down:70")
	s.RecordInvalidReference("broken")

	var buf bytes.Buffer
	report.Print(&buf, s)
	out := buf.String()

	assert.Contains(t, out, "Text files (1):")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "Bad text files (1):")
	assert.Contains(t, out, "Binary files (1):")
	assert.Contains(t, out, "up:70")
	assert.Contains(t, out, "down:70")
	assert.Contains(t, out, "broken")
	assert.Contains(t, out, "hello")
}

func TestPrintNoFilesShowsNA(t *testing.T) {
	s := stats.New()
	var buf bytes.Buffer
	report.Print(&buf, s)
	assert.Contains(t, buf.String(), "Smallest text size: n/a")
}

func TestPrintJSONIncludesTextFilesField(t *testing.T) {
	s := stats.New()
	s.RecordTextFile("a.txt", 5, "hello")

	var buf bytes.Buffer
	require.NoError(t, report.PrintJSON(&buf, s))
	assert.Contains(t, buf.String(), `"textFiles"`)
}
