package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/publicai/civic-mcp/pkg/common"
	"github.com/publicai/civic-mcp/pkg/datagovsg"
)

const (
	datagovsgDatastoreURL    = "https://data.gov.sg/api/action/datastore_search"
	datagovsgAvailabilityURL = "https://api.data.gov.sg/v1/transport/carpark-availability"
)

func (s *CivicServer) registerSingaporeTools() {
	s.server.AddTool(mcp.Tool{
		Name:        "sg_search_carparks",
		Description: "Search Singapore HDB carparks by location, area name, block, or carpark number via the data.gov.sg datastore. Returns the carpark number and street address for each match plus the total number of hits. Carpark numbers returned here are the inputs for sg_carpark_availability, so use this tool first to resolve a place name into concrete carparks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search term matched against all dataset columns (e.g., 'Bedok', 'Ang Mo Kio', 'ACB', 'Block 123').",
				},
				"limit": map[string]interface{}{
					"type":        "string",
					"description": "Maximum number of carparks to return (default: 10, max: 100).",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleSearchCarparks)

	s.server.AddTool(mcp.Tool{
		Name:        "sg_carpark_availability",
		Description: "Get real-time carpark availability across Singapore from data.gov.sg (updated roughly every minute). Returns per-carpark lot information: lot type (C for cars, Y for motorcycles, H for heavy vehicles), total lots, currently available lots, and the carpark's last update time. Optionally filters to a single carpark number obtained from sg_search_carparks.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"carpark_number": map[string]interface{}{
					"type":        "string",
					"description": "Optional specific carpark number to query (e.g., 'HE12', 'ACB'). Omit to list availability across Singapore.",
				},
				"limit": map[string]interface{}{
					"type":        "string",
					"description": "Maximum number of carparks to return when not filtering by number (default: 50, max: 200).",
				},
			},
		},
	}, s.handleCarparkAvailability)
}

type carparkResult struct {
	CarparkNumber string `json:"carpark_number"`
	Address       string `json:"address"`
}

type carparkLotInfo struct {
	LotType       string `json:"lot_type"`
	TotalLots     string `json:"total_lots"`
	LotsAvailable string `json:"lots_available"`
}

type carparkAvailability struct {
	CarparkNumber  string           `json:"carpark_number"`
	UpdateDatetime *common.APITime  `json:"update_datetime,omitempty"`
	Lots           []carparkLotInfo `json:"lots"`
}

func (s *CivicServer) handleSearchCarparks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("The 'query' parameter is required. Provide an area, block, or carpark number like 'Bedok' or 'ACB'."), nil
	}
	limit := parseLimit(request.GetString("limit", ""), 10, 100)

	data, err := s.makeAPIRequest(ctx, datagovsgDatastoreURL, map[string]string{
		"resource_id": datagovsg.HDBCarparkDatasetID,
		"q":           query,
		"fields":      "car_park_no,address",
		"limit":       fmt.Sprintf("%d", limit),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search carparks via data.gov.sg: %v. Please try again.", err)), nil
	}

	var search datagovsg.DatastoreSearchResponse
	if err := json.Unmarshal(data, &search); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse carpark data from API response: %v. The API may have returned unexpected data format.", err)), nil
	}
	if !search.Success || search.Result == nil {
		return mcp.NewToolResultError(fmt.Sprintf("data.gov.sg rejected the carpark search: %v. Please try again with a different query.", search.Error)), nil
	}

	carparks := make([]carparkResult, 0, len(search.Result.Records))
	for _, record := range search.Result.Records {
		carparks = append(carparks, carparkResult{
			CarparkNumber: record.CarParkNo,
			Address:       record.Address,
		})
	}

	status := statusOK
	summary := fmt.Sprintf("%d carparks match '%s' (showing %d)", search.Result.Total, query, len(carparks))
	nextActions := []string{"Call sg_carpark_availability with a carpark_number for live lot counts"}
	if len(carparks) == 0 {
		status = statusNotFound
		summary = fmt.Sprintf("No carparks match '%s'", query)
		nextActions = []string{"Try a broader area name or a block number"}
	}

	response := StandardResponse{
		Operation: "sg_search_carparks",
		Status:    status,
		Summary:   summary,
		Data: map[string]interface{}{
			"total_found": search.Result.Total,
			"showing":     len(carparks),
			"carparks":    carparks,
		},
		NextActions: nextActions,
	}
	return mcp.NewToolResultText(response.Format()), nil
}

func (s *CivicServer) handleCarparkAvailability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	carparkNumber := request.GetString("carpark_number", "")
	limit := parseLimit(request.GetString("limit", ""), 50, 200)

	data, err := s.makeAPIRequest(ctx, datagovsgAvailabilityURL, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get carpark availability from data.gov.sg: %v. Please try again.", err)), nil
	}

	var availability datagovsg.CarparkAvailabilityResponse
	if err := json.Unmarshal(data, &availability); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse carpark availability from API response: %v. The API may have returned unexpected data format.", err)), nil
	}
	if len(availability.Items) == 0 {
		return mcp.NewToolResultError("No carpark data available from data.gov.sg right now. Please try again in a minute."), nil
	}

	// The feed returns the most recent snapshot first
	latest := availability.Items[0]
	carparkData := latest.CarparkData
	if carparkNumber != "" {
		var filtered []datagovsg.CarparkData
		for _, cp := range carparkData {
			if cp.CarparkNumber == carparkNumber {
				filtered = append(filtered, cp)
			}
		}
		if len(filtered) == 0 {
			response := StandardResponse{
				Operation: "sg_carpark_availability",
				Status:    statusNotFound,
				Summary:   fmt.Sprintf("Carpark '%s' not found in the current snapshot", carparkNumber),
				Data: map[string]interface{}{
					"timestamp": latest.Timestamp,
				},
				NextActions: []string{"Call sg_search_carparks to find valid carpark numbers"},
			}
			return mcp.NewToolResultText(response.Format()), nil
		}
		carparkData = filtered
	}

	carparks := make([]carparkAvailability, 0, min(len(carparkData), limit))
	for _, cp := range carparkData {
		if len(carparks) >= limit {
			break
		}
		entry := carparkAvailability{
			CarparkNumber: cp.CarparkNumber,
			Lots:          make([]carparkLotInfo, 0, len(cp.CarparkInfo)),
		}
		if !cp.UpdateDatetime.Time.IsZero() {
			update := cp.UpdateDatetime
			entry.UpdateDatetime = &update
		}
		for _, lot := range cp.CarparkInfo {
			entry.Lots = append(entry.Lots, carparkLotInfo{
				LotType:       lot.LotType,
				TotalLots:     lot.TotalLots,
				LotsAvailable: lot.LotsAvailable,
			})
		}
		carparks = append(carparks, entry)
	}

	response := StandardResponse{
		Operation: "sg_carpark_availability",
		Status:    statusOK,
		Summary:   fmt.Sprintf("Availability for %d of %d carparks", len(carparks), len(carparkData)),
		Data: map[string]interface{}{
			"timestamp":     latest.Timestamp,
			"total_results": len(carparkData),
			"showing":       len(carparks),
			"carparks":      carparks,
		},
	}
	return mcp.NewToolResultText(response.Format()), nil
}
