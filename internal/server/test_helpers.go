package server

import (
	"time"

	"github.com/publicai/civic-mcp/pkg/publicwiki"
)

// NewMockedCivicServer creates a CivicServer with pre-populated caches to avoid HTTP requests during testing.
// This ensures unit tests run fast and don't depend on external network connectivity.
func NewMockedCivicServer() *CivicServer {
	server := NewCivicServer()

	now := time.Now()
	expiry := now.Add(24 * time.Hour) // Long expiry to last through tests

	// Mock Cargo table schemas
	server.cache.mu.Lock()
	server.cache.TableFields["Tools"] = &CacheEntry{
		Data: map[string]publicwiki.CargoField{
			"description":   {Type: "Wikitext"},
			"community":     {Type: "List (,) of String"},
			"has_resources": {Type: "Boolean"},
		},
		ExpiresAt: expiry,
	}

	server.cache.TableFields["UpcomingEventsResources"] = &CacheEntry{
		Data: map[string]publicwiki.CargoField{
			"tool":        {Type: "Page"},
			"country":     {Type: "String"},
			"region":      {Type: "String"},
			"event_name":  {Type: "String"},
			"start_date":  {Type: "Date"},
			"end_date":    {Type: "Date"},
			"venue":       {Type: "String"},
			"url":         {Type: "URL"},
			"description": {Type: "Wikitext"},
		},
		ExpiresAt: expiry,
	}

	server.cache.TableFields["SuicideHotlineResources"] = &CacheEntry{
		Data: map[string]publicwiki.CargoField{
			"tool":         {Type: "Page"},
			"country":      {Type: "String"},
			"region":       {Type: "String"},
			"phone_number": {Type: "String"},
			"hours":        {Type: "String"},
			"languages":    {Type: "List (,) of String"},
		},
		ExpiresAt: expiry,
	}
	server.cache.mu.Unlock()

	return server
}
