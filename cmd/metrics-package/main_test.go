package main

import "testing"

// TestConstants verifies application constants
func TestConstants(t *testing.T) {
	if version == "" {
		t.Error("version constant should not be empty")
	}
	if appName != "metrics-package" {
		t.Errorf("Expected appName to be 'metrics-package', got '%s'", appName)
	}
}
