package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/publicai/civic-mcp/pkg/common"
	"github.com/publicai/civic-mcp/pkg/transport"
)

const transportBaseURL = "http://transport.opendata.ch/v1"

func (s *CivicServer) registerTransportTools() {
	s.server.AddTool(mcp.Tool{
		Name:        "transport_find_locations",
		Description: "Search for Swiss public transport stations (train, bus, tram, boat) by name via transport.opendata.ch. Returns station ids, official names, WGS84 coordinates, and the station type icon. Station names returned here are the canonical inputs for transport_stationboard and transport_find_connections, so use this tool first when a user-provided station name is ambiguous or misspelled.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Station name to search for (e.g., 'Zürich', 'Bern', 'Genève-Aéroport'). Partial names are matched.",
				},
				"limit": map[string]interface{}{
					"type":        "string",
					"description": "Maximum number of stations to return (default: 10, max: 50).",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleFindLocations)

	s.server.AddTool(mcp.Tool{
		Name:        "transport_stationboard",
		Description: "Get real-time departures from a Swiss public transport station, including scheduled and prognosed departure times, delays, platforms, service category and number, final destination, and operator. Data comes live from transport.opendata.ch and reflects the current timetable situation. Essential for answering 'when is the next train/bus from X' questions.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"station": map[string]interface{}{
					"type":        "string",
					"description": "Station name or id (e.g., 'Zürich HB', 'Bern', '8503000'). Use transport_find_locations to resolve ambiguous names.",
				},
				"limit": map[string]interface{}{
					"type":        "string",
					"description": "Number of departures to return (default: 10, max: 40 - the upstream API ceiling).",
				},
			},
			Required: []string{"station"},
		},
	}, s.handleStationboard)

	s.server.AddTool(mcp.Tool{
		Name:        "transport_find_connections",
		Description: "Plan a door-to-door journey on Swiss public transport with real-time connections from transport.opendata.ch. Returns connection options with departure and arrival stations, times, platforms, delays, total duration, number of transfers, and the products (train categories, buses) involved. Supports an optional via station to force routing through an intermediate stop.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"from": map[string]interface{}{
					"type":        "string",
					"description": "Departure station name (e.g., 'Zürich HB').",
				},
				"to": map[string]interface{}{
					"type":        "string",
					"description": "Arrival station name (e.g., 'Bern').",
				},
				"via": map[string]interface{}{
					"type":        "string",
					"description": "Optional intermediate station the connection must pass through (e.g., 'Olten').",
				},
				"limit": map[string]interface{}{
					"type":        "string",
					"description": "Number of connection options to return (default: 4, max: 6 - the upstream API ceiling).",
				},
			},
			Required: []string{"from", "to"},
		},
	}, s.handleFindConnections)
}

// coordinatePair is the lat/lon pair in tool output. The upstream API calls
// latitude x and longitude y; this is where the translation happens.
type coordinatePair struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type stationResult struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"name"`
	Coordinates *coordinatePair `json:"coordinates,omitempty"`
	Type        string          `json:"type"`
}

type departureInfo struct {
	Time         *common.APITime `json:"time,omitempty"`
	ActualTime   *common.APITime `json:"actual_time,omitempty"`
	DelayMinutes *int            `json:"delay_minutes,omitempty"`
	Platform     string          `json:"platform"`
	Type         string          `json:"type,omitempty"`
	Number       string          `json:"number,omitempty"`
	To           string          `json:"to,omitempty"`
	Operator     string          `json:"operator,omitempty"`
}

type journeyEndpoint struct {
	Station      string          `json:"station"`
	Time         *common.APITime `json:"time,omitempty"`
	Platform     string          `json:"platform"`
	DelayMinutes *int            `json:"delay_minutes,omitempty"`
}

type journeyOption struct {
	Departure journeyEndpoint `json:"departure"`
	Arrival   journeyEndpoint `json:"arrival"`
	Duration  string          `json:"duration,omitempty"`
	Transfers *int            `json:"transfers,omitempty"`
	Products  []string        `json:"products,omitempty"`
}

func (s *CivicServer) handleFindLocations(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("The 'query' parameter is required. Provide a station name like 'Zürich HB' or 'Bern'."), nil
	}
	limit := parseLimit(request.GetString("limit", ""), 10, 50)

	data, err := s.makeAPIRequest(ctx, transportBaseURL+"/locations", map[string]string{"query": query})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search stations via transport.opendata.ch: %v. Please try again.", err)), nil
	}

	var locations transport.LocationsResponse
	if err := json.Unmarshal(data, &locations); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse station data from API response: %v. The API may have returned unexpected data format.", err)), nil
	}

	stations := make([]stationResult, 0, min(len(locations.Stations), limit))
	for _, station := range locations.Stations {
		if len(stations) >= limit {
			break
		}
		result := stationResult{
			ID:   station.ID,
			Name: station.Name,
			Type: station.Icon,
		}
		if result.Type == "" {
			result.Type = "unknown"
		}
		if station.Coordinate != nil {
			result.Coordinates = &coordinatePair{Lat: station.Coordinate.X, Lon: station.Coordinate.Y}
		}
		stations = append(stations, result)
	}

	if len(stations) == 0 {
		response := StandardResponse{
			Operation:   "transport_find_locations",
			Status:      statusNotFound,
			Summary:     fmt.Sprintf("No stations match '%s'", query),
			NextActions: []string{"Try a shorter or differently spelled station name"},
		}
		return mcp.NewToolResultText(response.Format()), nil
	}

	response := StandardResponse{
		Operation: "transport_find_locations",
		Status:    statusOK,
		Summary:   fmt.Sprintf("%d stations match '%s'", len(stations), query),
		Data: map[string]interface{}{
			"stations": stations,
		},
		NextActions: []string{
			"Call transport_stationboard with a station name for live departures",
			"Call transport_find_connections to plan a journey",
		},
	}
	return mcp.NewToolResultText(response.Format()), nil
}

func (s *CivicServer) handleStationboard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	station := request.GetString("station", "")
	if station == "" {
		return mcp.NewToolResultError("The 'station' parameter is required. Use transport_find_locations to find station names."), nil
	}
	limit := parseLimit(request.GetString("limit", ""), 10, 40)

	data, err := s.makeAPIRequest(ctx, transportBaseURL+"/stationboard", map[string]string{
		"station": station,
		"limit":   fmt.Sprintf("%d", limit),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get departures for '%s': %v. Verify the station name with transport_find_locations.", station, err)), nil
	}

	var board transport.StationboardResponse
	if err := json.Unmarshal(data, &board); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse stationboard data from API response: %v. The API may have returned unexpected data format.", err)), nil
	}

	departures := make([]departureInfo, 0, len(board.Stationboard))
	for _, journey := range board.Stationboard {
		info := departureInfo{
			Platform: "N/A",
			Type:     journey.Category,
			Number:   journey.Number,
			To:       journey.To,
			Operator: journey.Operator,
		}
		if stop := journey.Stop; stop != nil {
			info.Time = stop.Departure
			info.ActualTime = stop.Departure
			info.DelayMinutes = stop.Delay
			if stop.Platform != "" {
				info.Platform = stop.Platform
			}
			if stop.Prognosis != nil && stop.Prognosis.Departure != nil {
				info.ActualTime = stop.Prognosis.Departure
			}
		}
		departures = append(departures, info)
	}

	stationName := board.Station.Name
	if stationName == "" {
		stationName = station
	}

	response := StandardResponse{
		Operation: "transport_stationboard",
		Status:    statusOK,
		Summary:   fmt.Sprintf("%d upcoming departures from %s", len(departures), stationName),
		Data: map[string]interface{}{
			"station":    stationName,
			"station_id": board.Station.ID,
			"departures": departures,
		},
	}
	return mcp.NewToolResultText(response.Format()), nil
}

func (s *CivicServer) handleFindConnections(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from := request.GetString("from", "")
	to := request.GetString("to", "")
	if from == "" || to == "" {
		return mcp.NewToolResultError("Both 'from' and 'to' parameters are required. Use transport_find_locations to find station names."), nil
	}
	via := request.GetString("via", "")
	limit := parseLimit(request.GetString("limit", ""), 4, 6)

	params := map[string]string{
		"from":  from,
		"to":    to,
		"limit": fmt.Sprintf("%d", limit),
	}
	if via != "" {
		params["via[]"] = via
	}

	data, err := s.makeAPIRequest(ctx, transportBaseURL+"/connections", params)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to plan journey from '%s' to '%s': %v. Verify the station names with transport_find_locations.", from, to, err)), nil
	}

	var connections transport.ConnectionsResponse
	if err := json.Unmarshal(data, &connections); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse connection data from API response: %v. The API may have returned unexpected data format.", err)), nil
	}

	journeys := make([]journeyOption, 0, len(connections.Connections))
	for _, conn := range connections.Connections {
		option := journeyOption{
			Duration:  conn.Duration,
			Transfers: conn.Transfers,
			Products:  conn.Products,
		}
		if conn.From != nil {
			option.Departure = checkpointEndpoint(conn.From, true)
		}
		if conn.To != nil {
			option.Arrival = checkpointEndpoint(conn.To, false)
		}
		journeys = append(journeys, option)
	}

	if len(journeys) == 0 {
		response := StandardResponse{
			Operation:   "transport_find_connections",
			Status:      statusNotFound,
			Summary:     fmt.Sprintf("No connections found from '%s' to '%s'", from, to),
			NextActions: []string{"Verify both station names with transport_find_locations"},
		}
		return mcp.NewToolResultText(response.Format()), nil
	}

	summary := fmt.Sprintf("%d connection options from %s to %s", len(journeys), from, to)
	if via != "" {
		summary += fmt.Sprintf(" via %s", via)
	}
	response := StandardResponse{
		Operation: "transport_find_connections",
		Status:    statusOK,
		Summary:   summary,
		Data: map[string]interface{}{
			"connections": journeys,
		},
	}
	return mcp.NewToolResultText(response.Format()), nil
}

func checkpointEndpoint(checkpoint *transport.Checkpoint, departure bool) journeyEndpoint {
	endpoint := journeyEndpoint{
		Platform:     "N/A",
		DelayMinutes: checkpoint.Delay,
	}
	if checkpoint.Station != nil {
		endpoint.Station = checkpoint.Station.Name
	}
	if checkpoint.Platform != "" {
		endpoint.Platform = checkpoint.Platform
	}
	if departure {
		endpoint.Time = checkpoint.Departure
	} else {
		endpoint.Time = checkpoint.Arrival
	}
	return endpoint
}
