package transport

import (
	"encoding/json"
	"testing"
)

// TestLocationsResponseDecoding decodes a realistic /v1/locations payload.
func TestLocationsResponseDecoding(t *testing.T) {
	payload := `{
		"stations": [
			{
				"id": "8503000",
				"name": "Zürich HB",
				"score": null,
				"coordinate": {"type": "WGS84", "x": 47.377847, "y": 8.540502},
				"distance": null,
				"icon": "train"
			},
			{
				"id": "8587349",
				"name": "Zürich, Bahnhofquai/HB",
				"coordinate": {"type": "WGS84", "x": null, "y": null},
				"icon": "tram"
			}
		]
	}`

	var res LocationsResponse
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(res.Stations) != 2 {
		t.Fatalf("Expected two stations, got %d", len(res.Stations))
	}

	first := res.Stations[0]
	if first.ID != "8503000" || first.Name != "Zürich HB" || first.Icon != "train" {
		t.Errorf("Unexpected first station: %+v", first)
	}
	if first.Coordinate == nil || first.Coordinate.X == nil || *first.Coordinate.X != 47.377847 {
		t.Errorf("Expected parsed coordinates, got %+v", first.Coordinate)
	}

	second := res.Stations[1]
	if second.Coordinate == nil || second.Coordinate.X != nil {
		t.Errorf("Expected null coordinates to stay nil, got %+v", second.Coordinate)
	}
}

// TestStationboardResponseDecoding decodes a realistic /v1/stationboard
// payload including the colon-less zone offset and a realtime prognosis.
func TestStationboardResponseDecoding(t *testing.T) {
	payload := `{
		"station": {"id": "8507000", "name": "Bern"},
		"stationboard": [
			{
				"stop": {
					"station": {"id": "8507000", "name": "Bern"},
					"departure": "2025-08-22T14:03:00+0200",
					"departureTimestamp": 1755864180,
					"delay": 2,
					"platform": "7",
					"prognosis": {"platform": "8", "departure": "2025-08-22T14:05:00+0200"}
				},
				"name": "IC 1 972",
				"category": "IC",
				"number": "972",
				"operator": "SBB",
				"to": "Genève-Aéroport"
			},
			{
				"stop": {
					"departure": "2025-08-22T14:07:00+0200",
					"delay": null,
					"platform": ""
				},
				"category": "S",
				"number": "31",
				"to": "Belp"
			}
		]
	}`

	var res StationboardResponse
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if res.Station.Name != "Bern" {
		t.Errorf("Unexpected station: %+v", res.Station)
	}
	if len(res.Stationboard) != 2 {
		t.Fatalf("Expected two departures, got %d", len(res.Stationboard))
	}

	first := res.Stationboard[0]
	if first.Stop == nil || first.Stop.Delay == nil || *first.Stop.Delay != 2 {
		t.Errorf("Expected a delay of 2, got %+v", first.Stop)
	}
	if first.Stop.Departure == nil || first.Stop.Departure.IsZero() {
		t.Error("Expected the departure time to be parsed")
	}
	if first.Stop.Prognosis == nil || first.Stop.Prognosis.Platform != "8" {
		t.Errorf("Expected the prognosis platform, got %+v", first.Stop.Prognosis)
	}

	second := res.Stationboard[1]
	if second.Stop.Delay != nil {
		t.Errorf("Expected a null delay to stay nil, got %v", *second.Stop.Delay)
	}
}

// TestConnectionsResponseDecoding decodes a realistic /v1/connections payload.
func TestConnectionsResponseDecoding(t *testing.T) {
	payload := `{
		"connections": [
			{
				"from": {
					"station": {"id": "8503000", "name": "Zürich HB"},
					"departure": "2025-08-22T14:32:00+0200",
					"platform": "31",
					"delay": 0
				},
				"to": {
					"station": {"id": "8507000", "name": "Bern"},
					"arrival": "2025-08-22T15:28:00+0200",
					"platform": "4",
					"delay": null
				},
				"duration": "00d00:56:00",
				"transfers": 0,
				"products": ["IC 1"],
				"sections": [
					{
						"journey": {"name": "IC 1 972", "category": "IC", "number": "972", "operator": "SBB", "to": "Genève-Aéroport"},
						"departure": {"station": {"name": "Zürich HB"}, "departure": "2025-08-22T14:32:00+0200"},
						"arrival": {"station": {"name": "Bern"}, "arrival": "2025-08-22T15:28:00+0200"}
					}
				]
			}
		]
	}`

	var res ConnectionsResponse
	if err := json.Unmarshal([]byte(payload), &res); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(res.Connections) != 1 {
		t.Fatalf("Expected one connection, got %d", len(res.Connections))
	}

	conn := res.Connections[0]
	if conn.Duration != "00d00:56:00" {
		t.Errorf("Unexpected duration %q", conn.Duration)
	}
	if conn.Transfers == nil || *conn.Transfers != 0 {
		t.Errorf("Expected zero transfers, got %v", conn.Transfers)
	}
	if conn.From == nil || conn.From.Delay == nil || *conn.From.Delay != 0 {
		t.Errorf("Expected departure delay 0, got %+v", conn.From)
	}
	if conn.To == nil || conn.To.Delay != nil {
		t.Errorf("Expected a null arrival delay to stay nil, got %+v", conn.To)
	}
	if len(conn.Sections) != 1 || conn.Sections[0].Journey == nil || conn.Sections[0].Journey.Category != "IC" {
		t.Errorf("Unexpected sections: %+v", conn.Sections)
	}
}
