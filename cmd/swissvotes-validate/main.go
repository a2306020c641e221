// Package main provides the CLI entry point for validating a published voting dataset snapshot.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/publicai/civic-mcp/pkg/swissvotes"
)

const (
	version = "1.0.0"
	appName = "swissvotes-validate"

	defaultDataPath = "servers/swiss-voting/data/current_initiatives.json"
	titleRunes      = 50
)

func main() {
	var (
		showHelp    = flag.Bool("help", false, "Show help message")
		showVersion = flag.Bool("version", false, "Show version information")
		dataPath    = flag.String("data", defaultDataPath, "Path to the dataset snapshot to validate")
		skipLinks   = flag.Bool("skip-links", false, "Check required fields only, without probing PDF links")
		timeout     = flag.Duration("timeout", 10*time.Second, "Timeout for each PDF link probe")
		debugMode   = flag.Bool("debug", false, "Enable debug logging")
	)

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", appName)
		fmt.Fprintf(os.Stderr, "%s - Swiss Federal Voting Dataset Validator\n\n", appName)
		fmt.Fprintf(os.Stderr, "Checks every vote in a snapshot written by swissvotes-extract for its\n")
		fmt.Fprintf(os.Stderr, "required fields and probes the document links for reachable PDF content.\n")
		fmt.Fprintf(os.Stderr, "The dataset is never modified; issues are reported and reflected in the\n")
		fmt.Fprintf(os.Stderr, "exit status.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
		fmt.Fprintf(os.Stderr, "  %s                        # Validate %s\n", appName, defaultDataPath)
		fmt.Fprintf(os.Stderr, "  %s -data ./votes.json     # Validate a custom snapshot\n", appName)
		fmt.Fprintf(os.Stderr, "  %s -skip-links            # Offline run, fields only\n\n", appName)
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

	ds, err := swissvotes.ReadDataset(*dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("🔍 Validating %d votes...\n", len(ds.FederalInitiatives))

	validator := swissvotes.NewValidator(*timeout, *skipLinks, logger)
	report := validator.Validate(context.Background(), ds)

	for _, issue := range report.Issues {
		fmt.Printf("\n❌ Errors in vote %s - %s...\n", issue.VoteID, truncateTitle(issue.Title, titleRunes))
		for _, err := range issue.Errors {
			fmt.Printf("  - %s\n", err)
		}
	}

	if report.TotalErrors() == 0 {
		fmt.Println("\n✅ All votes passed validation.")
		return
	}

	fmt.Printf("\n🚨 Total validation issues: %d\n", report.TotalErrors())
	os.Exit(1)
}

// truncateTitle shortens a title to max runes. Titles carry umlauts and
// guillemets, so the cut counts runes rather than bytes.
func truncateTitle(title string, max int) string {
	runes := []rune(title)
	if len(runes) <= max {
		return title
	}
	return string(runes[:max])
}
