// Package main provides the CLI entry point for packaging usage-metrics batches into a public release file.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/publicai/civic-mcp/pkg/metrics"
)

const (
	version = "1.0.0"
	appName = "metrics-package"
)

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		metricsDir  = flag.String("metrics-dir", "metrics", "Directory holding the batch_*.jsonl files")
		outDir      = flag.String("out-dir", "public_metrics", "Directory the dated release file is written to")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", appName)
		fmt.Fprintf(os.Stderr, "%s - Usage Metrics Release Packager\n\n", appName)
		fmt.Fprintf(os.Stderr, "Reads collected usage-metric batches, strips direct identifiers, replaces\n")
		fmt.Fprintf(os.Stderr, "free-text usage patterns with stable hashes, and writes a dated public\n")
		fmt.Fprintf(os.Stderr, "release file.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                                  # Package ./metrics into ./public_metrics\n", appName)
		fmt.Fprintf(os.Stderr, "  %s -metrics-dir /var/lib/civic/metrics -out-dir ./release\n\n", appName)
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		fmt.Printf("%s version %s\n", appName, version)
		os.Exit(0)
	}

	path, err := metrics.BuildRelease(*metricsDir, *outDir, time.Now().UTC())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Wrote %s\n", path)
}
