package server

import (
	"encoding/json"
	"fmt"
)

// Response status values shared by all tools.
const (
	statusOK       = "ok"
	statusNotFound = "not_found"
	statusDryRun   = "dry_run"
)

// StandardResponse is the envelope every tool renders into its text result.
// Data carries the reshaped API payload; NextActions point the caller at
// follow-up tools when the current call cannot answer on its own.
type StandardResponse struct {
	Operation   string      `json:"operation"`
	Status      string      `json:"status"`
	Summary     string      `json:"summary,omitempty"`
	Data        interface{} `json:"data,omitempty"`
	NextActions []string    `json:"next_actions,omitempty"`
	Note        string      `json:"note,omitempty"`
}

// Format renders the response as indented JSON.
func (r StandardResponse) Format() string {
	payload, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Sprintf("%s (%s): %s", r.Operation, r.Status, r.Summary)
	}
	return string(payload)
}
