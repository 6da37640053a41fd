// Package menu decodes Gopher menu responses into typed entries.
package menu

import (
	"strconv"
	"strings"

	"github.com/jrmhx/GopherIndexer/internal/logging"
)

// Entry is a decoded line of a Gopher menu.
type Entry struct {
	Type     byte
	Display  string
	Selector string
	Host     string
	Port     int
}

// Parse decodes body into a sequence of Entry values in source order.
// Lines with no TAB are skipped silently (blank separators, headers);
// lines with fewer than 4 tab-separated fields or an unparseable port are
// skipped with a message to log. One malformed line never aborts parsing
// of the rest of the menu.
func Parse(body string, log logging.Logger) []Entry {
	var entries []Entry

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimRight(line, "\r")
		if !strings.Contains(line, "\t") {
			continue
		}

		fields := strings.Split(line, "\t")
		if len(fields) < 4 {
			if log != nil {
				log.Warning("malformed menu line (fewer than 4 fields): " + line)
			}
			continue
		}

		if len(fields[0]) == 0 {
			if log != nil {
				log.Warning("malformed menu line (empty type/display field): " + line)
			}
			continue
		}

		port, err := strconv.Atoi(strings.TrimSpace(fields[3]))
		if err != nil {
			if log != nil {
				log.Severe("malformed port in menu line: " + line)
			}
			continue
		}

		entries = append(entries, Entry{
			Type:     fields[0][0],
			Display:  fields[0][1:],
			Selector: fields[1],
			Host:     fields[2],
			Port:     port,
		})
	}

	return entries
}
