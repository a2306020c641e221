// Package main provides the CLI entry point for the swissvotes extraction pipeline that publishes the voting dataset snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/publicai/civic-mcp/pkg/swissvotes"
)

const (
	version = "1.0.0"
	appName = "swissvotes-extract"

	defaultOutputPath = "servers/swiss-voting/data/current_initiatives.json"
)

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		outputPath  = flag.String("out", defaultOutputPath, "Path the dataset snapshot is written to")
		baseURL     = flag.String("base", "https://swissvotes.ch", "Site origin to scrape")
		filterName  = flag.String("filter", "upcoming", "Discovery filter: 'upcoming' (future votes without results) or 'type-only' (every matching row)")
		languages   = flag.String("languages", "de,fr,it", "Comma-separated brochure language codes to extract")
		timeout     = flag.Duration("timeout", 20*time.Second, "Timeout for listing and detail page fetches")
		debugMode   = flag.Bool("debug", false, "Enable debug logging")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", appName)
		fmt.Fprintf(os.Stderr, "%s - Swiss Federal Voting Dataset Extractor\n\n", appName)
		fmt.Fprintf(os.Stderr, "Discovers upcoming popular-initiative votes on swissvotes.ch, extracts each\n")
		fmt.Fprintf(os.Stderr, "vote's detail fields and brochure text, and writes the JSON snapshot served\n")
		fmt.Fprintf(os.Stderr, "by the civic-mcp voting tools.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                          # Extract to %s\n", appName, defaultOutputPath)
		fmt.Fprintf(os.Stderr, "  %s -out ./votes.json        # Extract to a custom path\n", appName)
		fmt.Fprintf(os.Stderr, "  %s -filter type-only        # Include past votes of the ballot type\n", appName)
		fmt.Fprintf(os.Stderr, "  %s -languages de,fr         # Skip the Italian brochure\n", appName)
		fmt.Fprintf(os.Stderr, "  %s -debug                   # Enable debug logging\n\n", appName)
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

	logLevel := slog.LevelInfo
	if *debugMode {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	filter, err := swissvotes.ParseDiscoveryFilter(*filterName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	langs := splitLanguages(*languages)
	if len(langs) == 0 {
		fmt.Fprintf(os.Stderr, "Error: -languages must name at least one language code\n")
		os.Exit(1)
	}

	scraper := swissvotes.NewScraper(
		swissvotes.WithBaseURL(*baseURL),
		swissvotes.WithDiscoveryFilter(filter),
		swissvotes.WithLanguages(langs),
		swissvotes.WithHTTPTimeout(*timeout),
		swissvotes.WithLogger(logger),
	)

	ds, err := scraper.BuildDataset(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Extraction failed: %v\n", err)
		os.Exit(1)
	}

	if err := swissvotes.WriteDataset(*outputPath, ds); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write dataset: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Wrote %d votes to %s (data version %s)\n",
		len(ds.FederalInitiatives), *outputPath, ds.Metadata.DataVersion)
}

// splitLanguages parses the comma-separated -languages value, dropping empty
// entries so trailing commas are harmless.
func splitLanguages(s string) []string {
	var langs []string
	for _, lang := range strings.Split(s, ",") {
		lang = strings.TrimSpace(lang)
		if lang != "" {
			langs = append(langs, lang)
		}
	}
	return langs
}
