package server

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// Helper function to extract text content from MCP result
func extractTextContent(result *mcp.CallToolResult) string {
	if result == nil {
		return ""
	}

	var content strings.Builder
	for _, c := range result.Content {
		if textContent, ok := mcp.AsTextContent(c); ok {
			content.WriteString(textContent.Text)
		}
	}
	return content.String()
}

// Create a mock CallToolRequest for testing
func createMockRequest(params map[string]interface{}) mcp.CallToolRequest {
	request := mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: params,
		},
	}
	return request
}

func TestNewCivicServer(t *testing.T) {
	server := NewCivicServer()

	if server == nil {
		t.Fatal("NewCivicServer should return a non-nil server")
	}

	if server.server == nil {
		t.Error("Server should have a non-nil MCP server")
	}

	if server.client == nil {
		t.Error("Server should have a non-nil HTTP client")
	}

	if server.config.DatasetPath != defaultDatasetPath {
		t.Errorf("Expected default dataset path %q, got %q", defaultDatasetPath, server.config.DatasetPath)
	}
}

// TestServerConfiguration tests server configuration functionality
func TestServerConfiguration(t *testing.T) {
	t.Parallel()
	t.Run("Default configuration", func(t *testing.T) {
		t.Parallel()
		server := NewCivicServer()
		if server == nil {
			t.Fatal("NewCivicServer should return non-nil server")
		}
		if server.config.DebugMode {
			t.Error("Default config should have DebugMode=false")
		}
	})

	t.Run("Debug configuration", func(t *testing.T) {
		t.Parallel()
		config := Config{DebugMode: true}
		server := NewCivicServerWithConfig(config)
		if server == nil {
			t.Fatal("NewCivicServerWithConfig should return non-nil server")
		}
		if !server.config.DebugMode {
			t.Error("Debug config should have DebugMode=true")
		}
	})

	t.Run("Custom dataset path", func(t *testing.T) {
		t.Parallel()
		config := Config{DatasetPath: "/tmp/votes.json"}
		server := NewCivicServerWithConfig(config)
		if server.config.DatasetPath != "/tmp/votes.json" {
			t.Errorf("Expected custom dataset path, got %q", server.config.DatasetPath)
		}
	})

	t.Run("Empty dataset path falls back to default", func(t *testing.T) {
		t.Parallel()
		server := NewCivicServerWithConfig(Config{})
		if server.config.DatasetPath != defaultDatasetPath {
			t.Errorf("Expected default dataset path %q, got %q", defaultDatasetPath, server.config.DatasetPath)
		}
	})
}

func TestParseLimit(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		def      int
		ceiling  int
		expected int
	}{
		{
			name:     "empty string uses default",
			input:    "",
			def:      10,
			ceiling:  50,
			expected: 10,
		},
		{
			name:     "valid limit",
			input:    "25",
			def:      10,
			ceiling:  50,
			expected: 25,
		},
		{
			name:     "limit above ceiling is clamped",
			input:    "100",
			def:      10,
			ceiling:  50,
			expected: 50,
		},
		{
			name:     "limit at ceiling",
			input:    "50",
			def:      10,
			ceiling:  50,
			expected: 50,
		},
		{
			name:     "zero uses default",
			input:    "0",
			def:      10,
			ceiling:  50,
			expected: 10,
		},
		{
			name:     "negative uses default",
			input:    "-5",
			def:      10,
			ceiling:  50,
			expected: 10,
		},
		{
			name:     "non-numeric uses default",
			input:    "many",
			def:      10,
			ceiling:  50,
			expected: 10,
		},
		{
			name:     "decimal uses default",
			input:    "10.5",
			def:      10,
			ceiling:  50,
			expected: 10,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result := parseLimit(tc.input, tc.def, tc.ceiling)
			if result != tc.expected {
				t.Errorf("parseLimit(%q, %d, %d) = %d, expected %d", tc.input, tc.def, tc.ceiling, result, tc.expected)
			}
		})
	}
}

// TestFuzzySearch tests the fuzzy search algorithms
func TestFuzzySearch(t *testing.T) {
	testCases := []struct {
		name          string
		query         string
		candidates    []string
		threshold     float64
		expectMatches bool
		description   string
	}{
		{
			name:          "exact match",
			query:         "volksinitiative",
			candidates:    []string{"Volksinitiative", "Bundesbeschluss", "Gegenentwurf"},
			threshold:     0.8,
			expectMatches: true,
			description:   "Should find exact match",
		},
		{
			name:          "fuzzy match - typo",
			query:         "Volksinitiatve",
			candidates:    []string{"Volksinitiative", "Bundesbeschluss", "Gegenentwurf"},
			threshold:     0.6,
			expectMatches: true,
			description:   "Should find fuzzy match for typo",
		},
		{
			name:          "partial match",
			query:         "initiative",
			candidates:    []string{"Volksinitiative", "Bundesbeschluss", "Gegenentwurf"},
			threshold:     0.5,
			expectMatches: true,
			description:   "Should find partial match",
		},
		{
			name:          "no match - high threshold",
			query:         "xyz",
			candidates:    []string{"Volksinitiative", "Bundesbeschluss", "Gegenentwurf"},
			threshold:     0.9,
			expectMatches: false,
			description:   "Should not match with high threshold",
		},
		{
			name:          "German characters normalization",
			query:         "Zuerich",
			candidates:    []string{"Zürich", "Bern", "Genf"},
			threshold:     0.7,
			expectMatches: true,
			description:   "Should match after German character normalization",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			matches := fuzzyMatchText(tc.query, tc.candidates, tc.threshold)

			if tc.expectMatches {
				if len(matches) == 0 {
					t.Errorf("Expected matches for %s, but got none", tc.description)
				}
			} else {
				if len(matches) > 0 {
					t.Errorf("Expected no matches for %s, but got %d matches", tc.description, len(matches))
				}
			}

			// Verify that matches are sorted by score
			for i := 1; i < len(matches); i++ {
				if matches[i-1].Score < matches[i].Score {
					t.Errorf("Matches should be sorted by score (descending), but found %f > %f", matches[i].Score, matches[i-1].Score)
				}
			}
		})
	}
}

// TestGermanNormalization tests German character normalization
func TestGermanNormalization(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"umwelt", "umwelt"},      // no change
		{"Zürich", "zurich"},      // ü -> u
		{"Zuerich", "zurich"},     // ue -> u
		{"Straße", "strasse"},     // ß -> ss
		{"Müller", "muller"},      // umlaut spelling
		{"Mueller", "muller"},     // digraph spelling
		{"Oekologie", "okologie"}, // oe -> o
		{"bauen", "baun"},         // digraph folding also hits genuine 'ue' sequences
		{"Gegenentwurf", "gegenentwurf"},
		{"UMWELT", "umwelt"}, // all uppercase
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("normalize_%s", tc.input), func(t *testing.T) {
			result := normalizeGerman(tc.input)
			if result != tc.expected {
				t.Errorf("normalizeGerman(%s) = %s, expected %s", tc.input, result, tc.expected)
			}
		})
	}
}

// TestSimilarityFunctions tests the similarity calculation functions
func TestSimilarityFunctions(t *testing.T) {
	testCases := []struct {
		s1             string
		s2             string
		minLevenshtein float64
		minJaroWinkler float64
		description    string
	}{
		{
			s1: "volksinitiative", s2: "volksinitiative",
			minLevenshtein: 1.0, minJaroWinkler: 1.0,
			description: "identical strings should have similarity 1.0",
		},
		{
			s1: "initiative", s2: "initiativ",
			minLevenshtein: 0.8, minJaroWinkler: 0.9,
			description: "similar strings should have high similarity",
		},
		{
			s1: "hello", s2: "world",
			minLevenshtein: 0.0, minJaroWinkler: 0.0,
			description: "different strings should have low similarity",
		},
		{
			s1: "bund", s2: "bundesrat",
			minLevenshtein: 0.4, minJaroWinkler: 0.8,
			description: "prefix matches should score well with Jaro-Winkler",
		},
	}

	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s_vs_%s", tc.s1, tc.s2), func(t *testing.T) {
			levSim := similarity(tc.s1, tc.s2)
			jaroSim := jaroWinklerSimilarity(tc.s1, tc.s2)

			if levSim < tc.minLevenshtein {
				t.Errorf("Levenshtein similarity for %s: expected >= %f, got %f", tc.description, tc.minLevenshtein, levSim)
			}

			if jaroSim < tc.minJaroWinkler {
				t.Errorf("Jaro-Winkler similarity for %s: expected >= %f, got %f", tc.description, tc.minJaroWinkler, jaroSim)
			}

			// Test that similarities are between 0 and 1
			if levSim < 0 || levSim > 1 {
				t.Errorf("Levenshtein similarity should be between 0 and 1, got %f", levSim)
			}

			if jaroSim < 0 || jaroSim > 1 {
				t.Errorf("Jaro-Winkler similarity should be between 0 and 1, got %f", jaroSim)
			}
		})
	}
}

// TestLRUTTLCache tests the bounded response cache used by the HTTP transport
func TestLRUTTLCache(t *testing.T) {
	t.Parallel()
	cache := NewLRUTTLCache(10, time.Minute)

	if _, ok := cache.Get("missing"); ok {
		t.Error("Expected miss for unknown key")
	}

	cache.Set("key", []byte("value"))
	data, ok := cache.Get("key")
	if !ok {
		t.Fatal("Expected hit after Set")
	}
	if string(data) != "value" {
		t.Errorf("Expected 'value', got %q", data)
	}

	cache.Delete("key")
	if _, ok := cache.Get("key"); ok {
		t.Error("Expected miss after Delete")
	}
}

// TestStandardResponseFormat tests the response envelope rendering
func TestStandardResponseFormat(t *testing.T) {
	t.Parallel()

	t.Run("Full response", func(t *testing.T) {
		t.Parallel()
		response := StandardResponse{
			Operation:   "transport_stationboard",
			Status:      statusOK,
			Summary:     "3 upcoming departures from Bern",
			Data:        map[string]interface{}{"station": "Bern"},
			NextActions: []string{"Call transport_find_connections to plan a journey"},
		}

		formatted := response.Format()
		if !strings.HasPrefix(formatted, "{") {
			t.Errorf("Expected JSON output, got: %s", formatted)
		}
		for _, expected := range []string{
			`"operation": "transport_stationboard"`,
			`"status": "ok"`,
			`"summary": "3 upcoming departures from Bern"`,
			`"next_actions"`,
		} {
			if !strings.Contains(formatted, expected) {
				t.Errorf("Expected formatted response to contain %s, got: %s", expected, formatted)
			}
		}
	})

	t.Run("Empty fields are omitted", func(t *testing.T) {
		t.Parallel()
		response := StandardResponse{
			Operation: "swiss_search_votes",
			Status:    statusNotFound,
		}

		formatted := response.Format()
		for _, unexpected := range []string{`"summary"`, `"data"`, `"next_actions"`, `"note"`} {
			if strings.Contains(formatted, unexpected) {
				t.Errorf("Expected %s to be omitted, got: %s", unexpected, formatted)
			}
		}
	})
}

// Benchmark fuzzy search functions
func BenchmarkFuzzySearch(b *testing.B) {
	candidates := []string{
		"Volksinitiative", "Bundesbeschluss", "Gegenentwurf", "Fakultatives Referendum",
		"Obligatorisches Referendum", "Umwelt", "Energie", "Landwirtschaft", "Verkehr", "Gesundheit",
	}

	b.Run("ExactMatch", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = fuzzyMatchText("Umwelt", candidates, 0.8)
		}
	})

	b.Run("FuzzyMatch", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = fuzzyMatchText("Volksinitiatve", candidates, 0.6)
		}
	})

	b.Run("NoMatch", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = fuzzyMatchText("xyz123", candidates, 0.8)
		}
	})
}

func BenchmarkGermanNormalization(b *testing.B) {
	testStrings := []string{
		"volksinitiative",
		"bundesbeschluss über die strassenprojekte",
		"für eine sichere ernährung",
		"zürich",
		"ökologische verantwortung",
	}

	b.Run("NormalizationBench", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			for _, s := range testStrings {
				_ = normalizeGerman(s)
			}
		}
	})
}

func BenchmarkSimilarityFunctions(b *testing.B) {
	s1 := "volksinitiative"
	s2 := "volksinitiatve"

	b.Run("LevenshteinSimilarity", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = similarity(s1, s2)
		}
	})

	b.Run("JaroWinklerSimilarity", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = jaroWinklerSimilarity(s1, s2)
		}
	})

	b.Run("LevenshteinDistance", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = levenshteinDistance(s1, s2)
		}
	})
}
