// Package metrics packages raw usage-metrics batches into the anonymized
// public release file published alongside the voting dataset.
package metrics

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/publicai/civic-mcp/pkg/common"
)

// patternHashLength is how many hex digits of the content hash survive into
// the release.
const patternHashLength = 12

// Record is one usage-metrics entry. Batches carry free-form JSON objects;
// the packager only touches the identifying fields it strips or hashes and
// passes everything else through.
type Record map[string]interface{}

// Release is the envelope of a public metrics file.
type Release struct {
	Records     []Record       `json:"records"`
	GeneratedAt common.APITime `json:"generated_at"`
}

// LoadRecords reads every batch_*.jsonl file under dir, in name order, and
// returns the parseable lines. Lines that are not JSON objects are skipped.
func LoadRecords(dir string) ([]Record, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "batch_*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("failed to list metrics batches: %w", err)
	}

	var records []Record
	for _, path := range paths {
		batch, err := loadBatch(path)
		if err != nil {
			return nil, err
		}
		records = append(records, batch...)
	}
	return records, nil
}

func loadBatch(path string) ([]Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open metrics batch: %w", err)
	}
	defer file.Close()

	var records []Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var rec Record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil || rec == nil {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read metrics batch: %w", err)
	}
	return records, nil
}

// Anonymize strips direct identifiers and replaces free-text usage patterns
// with a short content hash. Records are modified in place.
func Anonymize(records []Record) []Record {
	for _, rec := range records {
		delete(rec, "pid")
		delete(rec, "pref_use")
		if pattern, ok := rec["pattern"].(string); ok && pattern != "" {
			sum := sha256.Sum256([]byte(pattern))
			rec["pattern"] = hex.EncodeToString(sum[:])[:patternHashLength]
		}
	}
	return records
}

// WriteRelease writes records under outDir as dp_public_metrics_<yyyymmdd>.json
// (UTC date) and returns the file path. The file is staged and renamed into
// place like the dataset writes.
func WriteRelease(outDir string, records []Record, now time.Time) (string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create release directory: %w", err)
	}
	if records == nil {
		records = []Record{}
	}

	now = now.UTC()
	path := filepath.Join(outDir, fmt.Sprintf("dp_public_metrics_%s.json", now.Format("20060102")))

	tmp, err := os.CreateTemp(outDir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Release{Records: records, GeneratedAt: common.APITime{Time: now}}); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to encode release: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("failed to replace release file: %w", err)
	}
	return path, nil
}

// BuildRelease loads, anonymizes and writes in one step.
func BuildRelease(metricsDir, outDir string, now time.Time) (string, error) {
	records, err := LoadRecords(metricsDir)
	if err != nil {
		return "", err
	}
	return WriteRelease(outDir, Anonymize(records), now)
}
