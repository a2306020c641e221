package publicwiki

import (
	"encoding/json"
	"testing"
)

func TestNormalizeToolPage(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"bare name", "SuicideHotline", "Tool:SuicideHotline"},
		{"already namespaced", "Tool:SuicideHotline", "Tool:SuicideHotline"},
		{"empty", "", "Tool:"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeToolPage(tc.input); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestResourceNaming(t *testing.T) {
	toolPage := "Tool:UpcomingEvents"

	if got := ToolName(toolPage); got != "UpcomingEvents" {
		t.Errorf("Expected tool name UpcomingEvents, got %q", got)
	}
	if got := ResourceTableName(toolPage); got != "UpcomingEventsResources" {
		t.Errorf("Expected table UpcomingEventsResources, got %q", got)
	}
	if got := TemplateName(toolPage); got != "UpcomingEventsResource" {
		t.Errorf("Expected template UpcomingEventsResource, got %q", got)
	}
}

func TestResourcePageName(t *testing.T) {
	testCases := []struct {
		name     string
		tool     string
		country  string
		region   string
		expected string
	}{
		{"country only", "Tool:SuicideHotline", "Singapore", "", "Resource:SuicideHotline/Singapore"},
		{"with region", "Tool:SuicideHotline", "Switzerland", "ZH", "Resource:SuicideHotline/Switzerland/ZH"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResourcePageName(tc.tool, tc.country, tc.region); got != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestPageURL(t *testing.T) {
	got := PageURL("https://wiki.publicai.co", "Resource:SuicideHotline/Singapore")
	expected := "https://wiki.publicai.co/wiki/Resource/SuicideHotline/Singapore"
	if got != expected {
		t.Errorf("Expected %q, got %q", expected, got)
	}
}

func TestBuildTemplateCall(t *testing.T) {
	params := map[string]string{
		"venue":      "National Museum",
		"tool":       "Tool:UpcomingEvents",
		"event_name": "Art Fair",
		"country":    "Singapore",
		"admission":  "Free",
	}

	expected := "{{UpcomingEventsResource\n" +
		"|tool=Tool:UpcomingEvents\n" +
		"|country=Singapore\n" +
		"|admission=Free\n" +
		"|event_name=Art Fair\n" +
		"|venue=National Museum\n" +
		"}}\n"

	got := BuildTemplateCall("UpcomingEventsResource", params)
	if got != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, got)
	}

	// A second render of the same map must be identical.
	if again := BuildTemplateCall("UpcomingEventsResource", params); again != got {
		t.Error("Expected deterministic output across renders")
	}
}

func TestBuildTemplateCallWithRegion(t *testing.T) {
	params := map[string]string{
		"region":  "ZH",
		"country": "Switzerland",
		"tool":    "Tool:SuicideHotline",
		"phone":   "143",
	}

	expected := "{{SuicideHotlineResource\n" +
		"|tool=Tool:SuicideHotline\n" +
		"|country=Switzerland\n" +
		"|region=ZH\n" +
		"|phone=143\n" +
		"}}\n"

	if got := BuildTemplateCall("SuicideHotlineResource", params); got != expected {
		t.Errorf("Expected:\n%s\nGot:\n%s", expected, got)
	}
}

// TestCargoQueryResponseDecoding decodes a realistic cargoquery payload.
// Cargo reports column names with spaces in place of underscores.
func TestCargoQueryResponseDecoding(t *testing.T) {
	payload := `{
		"cargoquery": [
			{"title": {"Page": "Tool:SuicideHotline", "description": "Crisis lines", "community": "Switzerland", "has resources": "1"}},
			{"title": {"Page": "Tool:VotingInfo", "description": "Federal votes", "community": "Switzerland", "has resources": "0"}}
		]
	}`

	var res CargoQueryResponse
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(res.CargoQuery) != 2 {
		t.Fatalf("Expected two rows, got %d", len(res.CargoQuery))
	}
	if res.CargoQuery[0].Title["Page"] != "Tool:SuicideHotline" {
		t.Errorf("Unexpected first page: %v", res.CargoQuery[0].Title)
	}
	if res.CargoQuery[0].Title["has resources"] != "1" {
		t.Errorf("Expected the spaced column name from Cargo, got %v", res.CargoQuery[0].Title)
	}
}

func TestCargoFieldsResponseDecoding(t *testing.T) {
	payload := `{
		"cargofields": {
			"tool": {"type": "Page"},
			"country": {"type": "String"},
			"event_name": {"type": "String"}
		}
	}`

	var res CargoFieldsResponse
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(res.CargoFields) != 3 {
		t.Fatalf("Expected three fields, got %d", len(res.CargoFields))
	}
	if res.CargoFields["event_name"].Type != "String" {
		t.Errorf("Unexpected field type: %+v", res.CargoFields["event_name"])
	}
}

func TestEditResponseDecoding(t *testing.T) {
	payload := `{"edit": {"result": "Success", "pageid": 1204, "title": "Resource:SuicideHotline/Singapore", "newrevid": 5821}}`

	var res EditResponse
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if res.Edit == nil || res.Edit.Result != "Success" || res.Edit.NewRevID != 5821 {
		t.Errorf("Unexpected edit result: %+v", res.Edit)
	}

	failure := `{"error": {"code": "badtoken", "info": "Invalid CSRF token."}}`
	var failed EditResponse
	if err := json.Unmarshal([]byte(failure), &failed); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if failed.Error == nil || failed.Error.Code != "badtoken" {
		t.Errorf("Expected the error envelope to be decoded, got %+v", failed.Error)
	}
}
