// Package indexer implements the depth-first Gopher traversal engine:
// cycle-free walk over type-1 entries on the origin server, per-item-type
// dispatch, external-host probing, safe local persistence, and running
// order statistics.
package indexer

import (
	"context"
	"math"
	"net"
	"strconv"

	"github.com/jrmhx/GopherIndexer/internal/logging"
	"github.com/jrmhx/GopherIndexer/internal/menu"
	"github.com/jrmhx/GopherIndexer/internal/stats"
	"github.com/jrmhx/GopherIndexer/internal/store"
	"github.com/jrmhx/GopherIndexer/internal/transport"
)

// Entry types the core recognizes.
const (
	typeFile      = '0'
	typeDirectory = '1'
	typeError     = '3'
	typeBinary    = '9'
	typeInfo      = 'i'
)

// UnboundedDepth is the sentinel maxDepth value meaning "no cap": a crawl
// constructed with it never refuses to descend on depth grounds alone.
const UnboundedDepth = math.MaxInt

// Indexer drives one crawl. It is not safe for reuse across concurrent
// crawls; construct a fresh Indexer per crawl via New.
type Indexer struct {
	client *transport.Client
	log    logging.Logger
	stats  *stats.Stats

	downloadRoot string
	originHost   string
	originPort   int
	maxDepth     int

	visited        map[string]struct{}
	externallySeen map[string]struct{}
}

// New constructs an Indexer for one crawl against originHost:originPort,
// writing fetched resources under downloadRoot. maxDepth caps recursion
// depth (UnboundedDepth for no cap).
func New(downloadRoot, originHost string, originPort, maxDepth int, log logging.Logger) *Indexer {
	if log == nil {
		log = logging.Default()
	}
	return &Indexer{
		client:         transport.NewClient(),
		log:            log,
		stats:          stats.New(),
		downloadRoot:   downloadRoot,
		originHost:     originHost,
		originPort:     originPort,
		maxDepth:       maxDepth,
		visited:        make(map[string]struct{}),
		externallySeen: make(map[string]struct{}),
	}
}

// resourceKey renders the traversal-deduplication key for a resource:
// "host:port"+selector.
func resourceKey(host string, port int, selector string) string {
	return net.JoinHostPort(host, strconv.Itoa(port)) + selector
}

// hostport renders "host:port", the format used in the external up/down
// lists.
func hostport(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// Crawl performs the entire walk synchronously starting at rootSelector on
// the origin server and returns the populated statistics aggregate. The
// root call begins with an empty fullPath, so every descendant's fullPath
// is built purely from the selectors along the path to it.
func (ix *Indexer) Crawl(ctx context.Context, rootSelector string) (*stats.Stats, error) {
	err := ix.visitDirectory(ctx, ix.originHost, ix.originPort, rootSelector, "", 0, true)
	if err != nil {
		return ix.stats, err
	}
	return ix.stats, nil
}

// visitDirectory fetches and dispatches a type-1 (directory) selector: skip
// if already visited, fetch its menu, and hand each entry to the handler
// for its item type. isRoot distinguishes the root fetch, whose unhandled
// errors propagate to the caller, from child fetches, whose errors are
// always swallowed here so one bad link doesn't abort the rest of the walk.
func (ix *Indexer) visitDirectory(ctx context.Context, host string, port int, selector, fullPath string, depth int, isRoot bool) error {
	key := resourceKey(host, port, selector)
	if _, seen := ix.visited[key]; seen {
		return nil
	}
	ix.visited[key] = struct{}{}
	ix.stats.RecordVisit()

	body, err := ix.client.SendRequest(ctx, host, port, selector)
	if err != nil {
		ix.log.Warning("could not fetch menu for " + key + ": " + err.Error())
		if isRoot {
			return err
		}
		return nil
	}
	if body == "" {
		ix.log.Warning("empty menu body for " + key)
		return nil
	}

	entries := menu.Parse(body, ix.log)

	for _, e := range entries {
		childFullPath := fullPath + e.Selector

		switch e.Type {
		case typeInfo:
			// Informational entries carry no selector to act on.

		case typeDirectory:
			ix.visitDirectoryEntry(ctx, e, childFullPath, depth)

		case typeFile:
			ix.fetchTextFile(ctx, e, childFullPath)

		case typeError:
			ix.stats.RecordInvalidReference(childFullPath)

		case typeBinary:
			ix.fetchBinaryFile(ctx, e, childFullPath)

		default:
			// Any other item type (search servers, telnet, etc) is ignored.
		}
	}

	return nil
}

// visitDirectoryEntry dispatches a type-1 menu entry: recurse when it
// targets the origin host and port (a plain string comparison, no DNS
// resolution — two hostnames that resolve to the same address are still
// treated as distinct origins), otherwise probe it as an external
// reference without descending.
func (ix *Indexer) visitDirectoryEntry(ctx context.Context, e menu.Entry, childFullPath string, depth int) {
	isOrigin := e.Host == ix.originHost && e.Port == ix.originPort

	if isOrigin {
		if depth+1 > ix.maxDepth {
			return
		}
		if err := ix.visitDirectory(ctx, e.Host, e.Port, e.Selector, childFullPath, depth+1, false); err != nil {
			ix.log.Warning("error while descending into " + childFullPath + ": " + err.Error())
		}
		return
	}

	probeKey := resourceKey(e.Host, e.Port, e.Selector)
	if _, seen := ix.externallySeen[probeKey]; seen {
		return
	}
	ix.externallySeen[probeKey] = struct{}{}

	up := ix.client.Probe(ctx, e.Host, e.Port)
	hp := hostport(e.Host, e.Port)
	if up {
		ix.stats.RecordExternalUp(hp)
	} else {
		ix.stats.RecordExternalDown(hp)
	}
}

// fetchTextFile handles a type-0 menu entry: open a fresh connection,
// fetch the body, strip the optional trailing Gopher terminator, persist
// it, and record the outcome.
func (ix *Indexer) fetchTextFile(ctx context.Context, e menu.Entry, childFullPath string) {
	body, err := ix.client.SendRequest(ctx, e.Host, e.Port, e.Selector)
	if err != nil || body == "" {
		if err != nil {
			ix.log.Warning("could not fetch text file " + childFullPath + ": " + err.Error())
		}
		ix.stats.RecordBadTextFile(childFullPath)
		return
	}

	body = store.StripTrailingTerminator(body)

	size := store.Write(ix.downloadRoot, childFullPath, []byte(body), ix.log)
	if size > 0 {
		path := store.Path(ix.downloadRoot, childFullPath)
		ix.stats.RecordTextFile(path, size, body)
	} else {
		ix.stats.RecordBadTextFile(childFullPath)
	}
}

// fetchBinaryFile handles a type-9 menu entry, mirroring fetchTextFile but
// reading the body as opaque bytes with no terminator to strip.
func (ix *Indexer) fetchBinaryFile(ctx context.Context, e menu.Entry, childFullPath string) {
	data, err := ix.client.ReadBinary(ctx, e.Host, e.Port, e.Selector)
	if err != nil || len(data) == 0 {
		if err != nil {
			ix.log.Warning("could not fetch binary file " + childFullPath + ": " + err.Error())
		}
		ix.stats.RecordBadBinaryFile(childFullPath)
		return
	}

	size := store.Write(ix.downloadRoot, childFullPath, data, ix.log)
	if size > 0 {
		path := store.Path(ix.downloadRoot, childFullPath)
		ix.stats.RecordBinaryFile(path, size)
	} else {
		ix.stats.RecordBadBinaryFile(childFullPath)
	}
}
