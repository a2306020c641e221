// Package datagovsg provides typed bindings for the data.gov.sg open data
// APIs: the CKAN datastore search and the realtime carpark availability feed.
package datagovsg

import (
	"github.com/publicai/civic-mcp/pkg/common"
)

// HDBCarparkDatasetID is the datastore resource holding the static HDB
// carpark information table (number, address, type, ...).
const HDBCarparkDatasetID = "d_23f946fa557947f93a8043bbef41dd09"

// CarparkRecord is one row of the HDB carpark information dataset, reduced
// to the columns the search tool requests.
type CarparkRecord struct {
	CarParkNo string `json:"car_park_no"`
	Address   string `json:"address"`
}

// DatastoreResult carries one page of datastore records.
type DatastoreResult struct {
	ResourceID string          `json:"resource_id,omitempty"`
	Records    []CarparkRecord `json:"records"`
	Total      int             `json:"total"`
	Limit      int             `json:"limit,omitempty"`
	Offset     int             `json:"offset,omitempty"`
}

// DatastoreSearchResponse is the envelope of /api/action/datastore_search.
// Success false comes with an error object whose shape varies by failure.
type DatastoreSearchResponse struct {
	Success bool                   `json:"success"`
	Result  *DatastoreResult       `json:"result,omitempty"`
	Error   map[string]interface{} `json:"error,omitempty"`
}

// CarparkLots is the availability of one lot type within a carpark. The feed
// reports the counts as strings.
type CarparkLots struct {
	TotalLots     string `json:"total_lots"`
	LotType       string `json:"lot_type"`
	LotsAvailable string `json:"lots_available"`
}

// CarparkData is the realtime state of one carpark.
type CarparkData struct {
	CarparkInfo    []CarparkLots  `json:"carpark_info"`
	CarparkNumber  string         `json:"carpark_number"`
	UpdateDatetime common.APITime `json:"update_datetime"`
}

// CarparkAvailabilityItem is one full snapshot; the feed returns the most
// recent snapshot first.
type CarparkAvailabilityItem struct {
	Timestamp   common.APITime `json:"timestamp"`
	CarparkData []CarparkData  `json:"carpark_data"`
}

// CarparkAvailabilityResponse is the envelope of
// /v1/transport/carpark-availability.
type CarparkAvailabilityResponse struct {
	Items []CarparkAvailabilityItem `json:"items"`
}
