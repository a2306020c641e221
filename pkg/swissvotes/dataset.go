package swissvotes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/publicai/civic-mcp/pkg/common"
)

const (
	// dataVersion is stamped into every dataset envelope.
	dataVersion = "1.0"
	// adminChURL is the secondary source credited in the envelope metadata.
	adminChURL = "https://www.admin.ch"
)

// BuildDataset runs the full pipeline: discover upcoming votes, fetch and
// parse each detail page, and wrap the records in a dataset envelope. Votes
// whose detail page cannot be fetched are logged and skipped, so the dataset
// never contains a record without a vote ID.
func (s *Scraper) BuildDataset(ctx context.Context) (*Dataset, error) {
	ids, err := s.DiscoverUpcomingVotes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to discover votes: %w", err)
	}

	ds := &Dataset{
		Metadata: DatasetMetadata{
			LastUpdated: common.APITime{Time: time.Now().UTC()},
			DataVersion: dataVersion,
			Sources:     []string{s.cfg.BaseURL, adminChURL},
		},
		FederalInitiatives: make([]VoteRecord, 0, len(ids)),
		UsageMetrics:       map[string]interface{}{},
	}

	for _, id := range ids {
		rec, err := s.FetchVoteRecord(ctx, id)
		if err != nil {
			s.logger.Warn("Skipping vote after failed detail fetch",
				slog.String("official_number", id),
				slog.Any("error", err))
			continue
		}
		ds.FederalInitiatives = append(ds.FederalInitiatives, *rec)
	}

	return ds, nil
}

// WriteDataset writes ds as indented JSON to path, creating parent
// directories as needed. The file is staged in the target directory and
// renamed into place so readers never observe a partial write.
func WriteDataset(path string, ds *Dataset) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(ds); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace dataset file: %w", err)
	}
	return nil
}

// ReadDataset loads a dataset file written by WriteDataset.
func ReadDataset(path string) (*Dataset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset file: %w", err)
	}
	var ds Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("failed to parse dataset file: %w", err)
	}
	return &ds, nil
}
