package common

import (
	"encoding/json"
	"testing"
	"time"
)

// TestAPITimeUnmarshalJSON tests APITime JSON unmarshaling
func TestAPITimeUnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectError  bool
		expectedTime string
		description  string
	}{
		{
			name:         "valid RFC3339 format",
			input:        `"2025-08-22T14:03:00Z"`,
			expectError:  false,
			expectedTime: "2025-08-22T14:03:00",
			description:  "Should parse RFC3339 format",
		},
		{
			name:         "transport API zone without colon",
			input:        `"2025-08-22T14:03:00+0200"`,
			expectError:  false,
			expectedTime: "2025-08-22T12:03:00", // Converted to UTC
			description:  "Should parse the colon-less zone offset used by transport.opendata.ch",
		},
		{
			name:         "data.gov.sg zone-less timestamp",
			input:        `"2025-08-22T10:31:42"`,
			expectError:  false,
			expectedTime: "2025-08-22T10:31:42",
			description:  "Should parse timestamps without timezone",
		},
		{
			name:         "space-separated timestamp",
			input:        `"2025-08-22 10:31:42"`,
			expectError:  false,
			expectedTime: "2025-08-22T10:31:42",
			description:  "Should parse space-separated timestamps",
		},
		{
			name:         "date only",
			input:        `"2025-08-22"`,
			expectError:  false,
			expectedTime: "2025-08-22T00:00:00",
			description:  "Should parse bare dates",
		},
		{
			name:        "null value",
			input:       `"null"`,
			expectError: false,
			description: "Should handle null values",
		},
		{
			name:        "empty string",
			input:       `""`,
			expectError: false,
			description: "Should handle empty strings",
		},
		{
			name:        "invalid timestamp",
			input:       `"not-a-time"`,
			expectError: true,
			description: "Should error on unparseable input",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ts APITime
			err := json.Unmarshal([]byte(tc.input), &ts)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error for %s, but got none", tc.description)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for %s: %v", tc.description, err)
				}

				if tc.expectedTime != "" {
					actual := ts.Time.UTC().Format("2006-01-02T15:04:05")
					if actual != tc.expectedTime {
						t.Errorf("Expected time %s for %s, but got %s", tc.expectedTime, tc.description, actual)
					}
				}
			}
		})
	}
}

// TestAPITimeMarshalJSON tests APITime JSON marshaling
func TestAPITimeMarshalJSON(t *testing.T) {
	testCases := []struct {
		name        string
		ts          APITime
		expected    string
		description string
	}{
		{
			name:        "valid timestamp",
			ts:          APITime{Time: time.Date(2025, 8, 22, 14, 3, 0, 0, time.UTC)},
			expected:    `"2025-08-22T14:03:00Z"`,
			description: "Should marshal in RFC3339",
		},
		{
			name:        "zero timestamp",
			ts:          APITime{},
			expected:    "null",
			description: "Should marshal zero value as null",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := json.Marshal(tc.ts)
			if err != nil {
				t.Errorf("Unexpected error for %s: %v", tc.description, err)
			}

			if string(result) != tc.expected {
				t.Errorf("Expected %s for %s, but got %s", tc.expected, tc.description, string(result))
			}
		})
	}
}

// TestSwissDateUnmarshalJSON tests SwissDate JSON unmarshaling
func TestSwissDateUnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name         string
		input        string
		expectError  bool
		expectedDate string
		description  string
	}{
		{
			name:         "day-month-year format",
			input:        `"28.09.2025"`,
			expectError:  false,
			expectedDate: "2025-09-28",
			description:  "Should parse the listing-page date format",
		},
		{
			name:         "ISO date",
			input:        `"2025-09-28"`,
			expectError:  false,
			expectedDate: "2025-09-28",
			description:  "Should parse ISO dates as a fallback",
		},
		{
			name:        "null value",
			input:       `"null"`,
			expectError: false,
			description: "Should handle null values",
		},
		{
			name:        "empty string",
			input:       `""`,
			expectError: false,
			description: "Should handle empty strings",
		},
		{
			name:        "slash-separated date",
			input:       `"28/09/2025"`,
			expectError: true,
			description: "Should error on unsupported separators",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var date SwissDate
			err := json.Unmarshal([]byte(tc.input), &date)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error for %s, but got none", tc.description)
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error for %s: %v", tc.description, err)
				}

				if tc.expectedDate != "" {
					actual := date.Time.Format("2006-01-02")
					if actual != tc.expectedDate {
						t.Errorf("Expected date %s for %s, but got %s", tc.expectedDate, tc.description, actual)
					}
				}
			}
		})
	}
}

// TestSwissDateMarshalJSON tests SwissDate JSON marshaling
func TestSwissDateMarshalJSON(t *testing.T) {
	testCases := []struct {
		name        string
		date        SwissDate
		expected    string
		description string
	}{
		{
			name:        "valid date",
			date:        SwissDate{Time: time.Date(2025, 9, 28, 0, 0, 0, 0, time.UTC)},
			expected:    `"28.09.2025"`,
			description: "Should marshal back to the listing format",
		},
		{
			name:        "zero date",
			date:        SwissDate{},
			expected:    "null",
			description: "Should marshal zero date as null",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := json.Marshal(tc.date)
			if err != nil {
				t.Errorf("Unexpected error for %s: %v", tc.description, err)
			}

			if string(result) != tc.expected {
				t.Errorf("Expected %s for %s, but got %s", tc.expected, tc.description, string(result))
			}
		})
	}
}

// TestSwissDateRoundTrip tests round-trip marshaling/unmarshaling
func TestSwissDateRoundTrip(t *testing.T) {
	original := SwissDate{Time: time.Date(2025, 9, 28, 0, 0, 0, 0, time.UTC)}

	jsonData, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Failed to marshal SwissDate: %v", err)
	}

	var restored SwissDate
	err = json.Unmarshal(jsonData, &restored)
	if err != nil {
		t.Fatalf("Failed to unmarshal SwissDate: %v", err)
	}

	if !original.Time.Truncate(24 * time.Hour).Equal(restored.Time.Truncate(24 * time.Hour)) {
		t.Errorf("Round-trip failed: original %v, restored %v", original.Time, restored.Time)
	}
}

// TestParseSwissDate tests the listing-date helper
func TestParseSwissDate(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expectError bool
		expected    string
	}{
		{
			name:     "plain date",
			input:    "28.09.2025",
			expected: "2025-09-28",
		},
		{
			name:     "surrounding whitespace",
			input:    "  28.09.2025 ",
			expected: "2025-09-28",
		},
		{
			name:        "empty string",
			input:       "",
			expectError: true,
		},
		{
			name:        "ISO date",
			input:       "2025-09-28",
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			parsed, err := ParseSwissDate(tc.input)

			if tc.expectError {
				if err == nil {
					t.Errorf("Expected error for input %q, but got none", tc.input)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for input %q: %v", tc.input, err)
			}
			if actual := parsed.Format("2006-01-02"); actual != tc.expected {
				t.Errorf("Expected %s, got %s", tc.expected, actual)
			}
		})
	}
}

// TestDateEdgeCases tests edge cases and error conditions
func TestDateEdgeCases(t *testing.T) {
	t.Run("APITime with invalid JSON", func(t *testing.T) {
		var ts APITime
		err := json.Unmarshal([]byte(`{invalid json}`), &ts)
		if err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("SwissDate with invalid JSON", func(t *testing.T) {
		var date SwissDate
		err := json.Unmarshal([]byte(`{invalid json}`), &date)
		if err == nil {
			t.Error("Expected error for invalid JSON")
		}
	})

	t.Run("APITime with number instead of string", func(t *testing.T) {
		var ts APITime
		err := json.Unmarshal([]byte(`123456789`), &ts)
		if err == nil {
			t.Error("Expected error for number input")
		}
	})

	t.Run("SwissDate with number instead of string", func(t *testing.T) {
		var date SwissDate
		err := json.Unmarshal([]byte(`123456789`), &date)
		if err == nil {
			t.Error("Expected error for number input")
		}
	})
}

// BenchmarkAPITimeUnmarshal benchmarks APITime unmarshaling
func BenchmarkAPITimeUnmarshal(b *testing.B) {
	rfcInput := []byte(`"2025-08-22T14:03:00Z"`)

	b.Run("RFC3339", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var ts APITime
			_ = json.Unmarshal(rfcInput, &ts)
		}
	})

	zonelessInput := []byte(`"2025-08-22T10:31:42"`)
	b.Run("ZoneLess", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			var ts APITime
			_ = json.Unmarshal(zonelessInput, &ts)
		}
	})
}
