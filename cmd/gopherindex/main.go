// Command gopherindex crawls a Gopher server starting from a root selector
// and prints a statistics report over the traversal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/jrmhx/GopherIndexer/internal/indexer"
	"github.com/jrmhx/GopherIndexer/internal/logging"
	"github.com/jrmhx/GopherIndexer/internal/report"
)

const (
	defaultHost = "comp3310.ddns.net"
	defaultPort = "70"

	downloadRoot = "./downloaded_files"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run parses the CLI arguments and drives one crawl, returning the process
// exit code: 0 on completion (even with individual fetch failures),
// nonzero only if an argument fails to parse or the root fetch raises an
// unhandled error.
func run(args []string) int {
	flag.CommandLine.Parse(args)
	positional := flag.CommandLine.Args()

	host := defaultHost
	if len(positional) > 0 {
		host = positional[0]
	}

	port, err := strconv.Atoi(defaultPort)
	if err != nil {
		panic(err) // defaultPort is a compile-time constant
	}
	if len(positional) > 1 {
		port, err = strconv.Atoi(positional[1])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid port %q: %v\n", positional[1], err)
			return 1
		}
	}

	maxDepth := indexer.UnboundedDepth
	if len(positional) > 2 {
		maxDepth, err = strconv.Atoi(positional[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid maxDepth %q: %v\n", positional[2], err)
			return 1
		}
	}

	log := logging.Default()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	log.Info(fmt.Sprintf("starting crawl of %s:%d", host, port))

	ix := indexer.New(downloadRoot, host, port, maxDepth, log)
	s, err := ix.Crawl(ctx, "")
	if err != nil {
		log.Severe("root fetch failed: " + err.Error())
		return 1
	}

	report.Print(os.Stdout, s)
	return 0
}
