// Package transport provides typed bindings for the transport.opendata.ch
// REST API (locations, stationboard and connections endpoints).
package transport

import (
	"github.com/publicai/civic-mcp/pkg/common"
)

// Coordinate is a WGS84 point. The upstream API labels latitude x and
// longitude y.
type Coordinate struct {
	Type string   `json:"type,omitempty"`
	X    *float64 `json:"x,omitempty"`
	Y    *float64 `json:"y,omitempty"`
}

// Location is one station, stop or point of interest.
type Location struct {
	ID         string      `json:"id,omitempty"`
	Name       string      `json:"name,omitempty"`
	Score      *float64    `json:"score,omitempty"`
	Coordinate *Coordinate `json:"coordinate,omitempty"`
	Distance   *float64    `json:"distance,omitempty"`
	Icon       string      `json:"icon,omitempty"`
}

// LocationsResponse is the envelope of /v1/locations.
type LocationsResponse struct {
	Stations []Location `json:"stations"`
}

// Prognosis carries realtime corrections for a stop. All fields are absent
// when the service runs on schedule.
type Prognosis struct {
	Platform    string          `json:"platform,omitempty"`
	Arrival     *common.APITime `json:"arrival,omitempty"`
	Departure   *common.APITime `json:"departure,omitempty"`
	Capacity1st *int            `json:"capacity1st,omitempty"`
	Capacity2nd *int            `json:"capacity2nd,omitempty"`
}

// Stop is a scheduled halt of a journey, with realtime data when available.
type Stop struct {
	Station            *Location       `json:"station,omitempty"`
	Arrival            *common.APITime `json:"arrival,omitempty"`
	ArrivalTimestamp   *int64          `json:"arrivalTimestamp,omitempty"`
	Departure          *common.APITime `json:"departure,omitempty"`
	DepartureTimestamp *int64          `json:"departureTimestamp,omitempty"`
	Delay              *int            `json:"delay,omitempty"`
	Platform           string          `json:"platform,omitempty"`
	Prognosis          *Prognosis      `json:"prognosis,omitempty"`
}

// Journey is one service run, as listed on a stationboard.
type Journey struct {
	Stop         *Stop  `json:"stop,omitempty"`
	Name         string `json:"name,omitempty"`
	Category     string `json:"category,omitempty"`
	Subcategory  string `json:"subcategory,omitempty"`
	CategoryCode *int   `json:"categoryCode,omitempty"`
	Number       string `json:"number,omitempty"`
	Operator     string `json:"operator,omitempty"`
	To           string `json:"to,omitempty"`
	PassList     []Stop `json:"passList,omitempty"`
	Capacity1st  *int   `json:"capacity1st,omitempty"`
	Capacity2nd  *int   `json:"capacity2nd,omitempty"`
}

// StationboardResponse is the envelope of /v1/stationboard.
type StationboardResponse struct {
	Station      Location  `json:"station"`
	Stationboard []Journey `json:"stationboard"`
}

// Checkpoint is the departure or arrival end of a connection or section.
type Checkpoint struct {
	Station   *Location       `json:"station,omitempty"`
	Arrival   *common.APITime `json:"arrival,omitempty"`
	Departure *common.APITime `json:"departure,omitempty"`
	Delay     *int            `json:"delay,omitempty"`
	Platform  string          `json:"platform,omitempty"`
}

// Walk is a footpath leg between two stops.
type Walk struct {
	Duration *int `json:"duration,omitempty"`
}

// Section is one leg of a connection, either a ride or a walk.
type Section struct {
	Journey   *Journey    `json:"journey,omitempty"`
	Walk      *Walk       `json:"walk,omitempty"`
	Departure *Checkpoint `json:"departure,omitempty"`
	Arrival   *Checkpoint `json:"arrival,omitempty"`
}

// Service describes how regularly a connection runs.
type Service struct {
	Regular   string `json:"regular,omitempty"`
	Irregular string `json:"irregular,omitempty"`
}

// Connection is one routing option between two stations. Duration uses the
// upstream "ddhh:mm:ss" notation, e.g. "00d01:06:00".
type Connection struct {
	From        *Checkpoint `json:"from,omitempty"`
	To          *Checkpoint `json:"to,omitempty"`
	Duration    string      `json:"duration,omitempty"`
	Transfers   *int        `json:"transfers,omitempty"`
	Service     *Service    `json:"service,omitempty"`
	Products    []string    `json:"products,omitempty"`
	Capacity1st *int        `json:"capacity1st,omitempty"`
	Capacity2nd *int        `json:"capacity2nd,omitempty"`
	Sections    []Section   `json:"sections,omitempty"`
}

// ConnectionsResponse is the envelope of /v1/connections.
type ConnectionsResponse struct {
	Connections []Connection `json:"connections"`
	From        *Location    `json:"from,omitempty"`
	To          *Location    `json:"to,omitempty"`
}
