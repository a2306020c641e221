package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/publicai/civic-mcp/pkg/publicwiki"
)

const (
	wikiBaseURL = "https://wiki.publicai.co"
	wikiAPIURL  = wikiBaseURL + "/w/api.php"

	// toolsTableFields aliases _pageName to Page; Cargo reports the other
	// columns under their own names, with underscores turned into spaces.
	toolsTableFields = "_pageName=Page,description,community,has_resources"

	// anonymousCSRFToken is what meta=tokens hands out to unauthenticated
	// sessions. Edits carrying it are either rejected or attributed to the
	// server's IP, so it switches wiki_add_resource into dry-run mode.
	anonymousCSRFToken = `+\`
)

func (s *CivicServer) registerWikiTools() {
	s.server.AddTool(mcp.Tool{
		Name:        "wiki_query_tools",
		Description: "Query the community-maintained tool registry on wiki.publicai.co. Each tool page describes a civic resource (hotlines, events, housing launches, ...) and whether it carries structured location-specific resources. Filter by community (e.g., 'Switzerland', 'Singapore', 'Lorong AI') to list that community's tools, or look up a single tool by name to check its description and whether resources exist for it. Tool pages returned here feed wiki_get_page_text, wiki_get_table_fields, and wiki_add_resource.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"community": map[string]interface{}{
					"type":        "string",
					"description": "Community name to filter by (e.g., 'Switzerland', 'Singapore'). Omitted together with 'tool', the full registry is listed.",
				},
				"tool": map[string]interface{}{
					"type":        "string",
					"description": "Tool name or canonical page id (e.g., 'SuicideHotline' or 'Tool:SuicideHotline') to look up a single tool. Takes precedence over 'community'.",
				},
				"limit": map[string]interface{}{
					"type":        "string",
					"description": "Maximum number of tools to return (default: 500, max: 500).",
				},
			},
		},
	}, s.handleQueryTools)

	s.server.AddTool(mcp.Tool{
		Name:        "wiki_get_table_fields",
		Description: "Retrieve the schema of a Cargo table on wiki.publicai.co: the field names and their declared types. Resource tables follow the '{Tool}Resources' naming convention (e.g., 'SuicideHotlineResources' for Tool:SuicideHotline). Use this before wiki_add_resource to learn which fields a resource entry accepts, or to understand the structure of community-maintained data. Schemas are cached server-side.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"table": map[string]interface{}{
					"type":        "string",
					"description": "Cargo table name (e.g., 'Tools', 'SuicideHotlineResources', 'UpcomingEventsResources').",
				},
			},
			Required: []string{"table"},
		},
	}, s.handleGetTableFields)

	s.server.AddTool(mcp.Tool{
		Name:        "wiki_get_page_text",
		Description: "Fetch the rendered content of a wiki.publicai.co page via the MediaWiki parse API. Returns the page HTML and a canonical page URL. Useful for tools without structured resources, where the page itself carries the guidance (instructions, contact information, explanatory text). Page names come from wiki_query_tools results.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"page": map[string]interface{}{
					"type":        "string",
					"description": "Full page name including namespace (e.g., 'Tool:SuicideHotline').",
				},
			},
			Required: []string{"page"},
		},
	}, s.handleGetPageText)

	s.server.AddTool(mcp.Tool{
		Name:        "wiki_add_resource",
		Description: "Add a new structured resource entry to a tool's resource page on wiki.publicai.co. Validates the provided fields against the tool's '{Tool}Resources' Cargo schema, generates a '{{{Tool}Resource}}' template call, and safely prepends it to the 'Resource:{Tool}/{country}[/{region}]' page through the MediaWiki edit API with a CSRF token. Without an authenticated wiki session the tool runs dry: it reports the generated wikitext and target page so the entry can be applied manually.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"tool": map[string]interface{}{
					"type":        "string",
					"description": "Tool name or canonical page id (e.g., 'UpcomingEvents' or 'Tool:UpcomingEvents').",
				},
				"country": map[string]interface{}{
					"type":        "string",
					"description": "Country the resource applies to (e.g., 'Singapore', 'Switzerland').",
				},
				"fields_json": map[string]interface{}{
					"type":        "string",
					"description": "JSON object with the resource fields, e.g. '{\"event_name\": \"Art Fair\", \"start_date\": \"2026-03-15\", \"venue\": \"National Museum\"}'. Valid field names come from wiki_get_table_fields on the tool's resource table.",
				},
				"region": map[string]interface{}{
					"type":        "string",
					"description": "Optional region within the country (e.g., 'ZH' for Zurich).",
				},
			},
			Required: []string{"tool", "country", "fields_json"},
		},
	}, s.handleAddResource)
}

// wikiTool is one reshaped row of the Tools registry.
type wikiTool struct {
	Page         string `json:"page"`
	Description  string `json:"description,omitempty"`
	Community    string `json:"community,omitempty"`
	HasResources bool   `json:"has_resources"`
}

func toolFromCargoRow(row map[string]string) wikiTool {
	return wikiTool{
		Page:        row["Page"],
		Description: row["description"],
		Community:   row["community"],
		// Cargo returns column names with underscores replaced by spaces
		HasResources: row["has resources"] == "1",
	}
}

// escapeCargoValue escapes quotes inside a Cargo where-clause literal.
func escapeCargoValue(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `'`, `\'`)
	value = strings.ReplaceAll(value, `"`, `\"`)
	return value
}

// cargoQuery runs one action=cargoquery call and unwraps the row maps.
func (s *CivicServer) cargoQuery(ctx context.Context, tables, fields, where string, limit int) ([]map[string]string, error) {
	params := map[string]string{
		"action": "cargoquery",
		"format": "json",
		"tables": tables,
		"fields": fields,
		"limit":  fmt.Sprintf("%d", limit),
	}
	if where != "" {
		params["where"] = where
	}

	data, err := s.makeAPIRequest(ctx, wikiAPIURL, params)
	if err != nil {
		return nil, err
	}

	var response publicwiki.CargoQueryResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse cargo query response: %w", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("cargo query rejected: %s (%s)", response.Error.Info, response.Error.Code)
	}

	rows := make([]map[string]string, 0, len(response.CargoQuery))
	for _, item := range response.CargoQuery {
		rows = append(rows, item.Title)
	}
	return rows, nil
}

// getCachedTableFields returns the Cargo schema for table from the reference
// cache, fetching it on miss. Empty schemas (unknown tables) are not cached
// so a table created later becomes visible immediately.
func (s *CivicServer) getCachedTableFields(ctx context.Context, table string) (map[string]publicwiki.CargoField, error) {
	s.cache.mu.RLock()
	if entry, ok := s.cache.TableFields[table]; ok && time.Now().Before(entry.ExpiresAt) {
		fields := entry.Data.(map[string]publicwiki.CargoField)
		s.cache.mu.RUnlock()
		return fields, nil
	}
	s.cache.mu.RUnlock()

	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()

	// Double-check in case another goroutine fetched while we waited for the lock
	if entry, ok := s.cache.TableFields[table]; ok && time.Now().Before(entry.ExpiresAt) {
		return entry.Data.(map[string]publicwiki.CargoField), nil
	}

	data, err := s.makeAPIRequest(ctx, wikiAPIURL, map[string]string{
		"action": "cargofields",
		"format": "json",
		"table":  table,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch table schema: %w", err)
	}

	var response publicwiki.CargoFieldsResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return nil, fmt.Errorf("failed to parse table schema: %w", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("cargofields rejected: %s (%s)", response.Error.Info, response.Error.Code)
	}

	if len(response.CargoFields) > 0 {
		s.cache.TableFields[table] = &CacheEntry{
			Data:      response.CargoFields,
			ExpiresAt: time.Now().Add(24 * time.Hour),
		}
	}
	return response.CargoFields, nil
}

func (s *CivicServer) handleQueryTools(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	community := request.GetString("community", "")
	tool := request.GetString("tool", "")
	limit := parseLimit(request.GetString("limit", ""), 500, 500)

	var where string
	switch {
	case tool != "":
		page := publicwiki.NormalizeToolPage(tool)
		where = fmt.Sprintf("_pageName='%s'", escapeCargoValue(page))
		limit = 1
	case community != "":
		where = fmt.Sprintf(`community HOLDS "%s"`, escapeCargoValue(community))
	}

	rows, err := s.cargoQuery(ctx, "Tools", toolsTableFields, where, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query the tool registry on wiki.publicai.co: %v. Please try again.", err)), nil
	}

	tools := make([]wikiTool, 0, len(rows))
	for _, row := range rows {
		tools = append(tools, toolFromCargoRow(row))
	}

	if len(tools) == 0 {
		summary := "No tools found"
		if tool != "" {
			summary = fmt.Sprintf("Tool '%s' not found in the registry", publicwiki.NormalizeToolPage(tool))
		} else if community != "" {
			summary = fmt.Sprintf("No tools registered for community '%s'", community)
		}
		response := StandardResponse{
			Operation:   "wiki_query_tools",
			Status:      statusNotFound,
			Summary:     summary,
			NextActions: []string{"Call wiki_query_tools without filters to list the full registry"},
		}
		return mcp.NewToolResultText(response.Format()), nil
	}

	response := StandardResponse{
		Operation: "wiki_query_tools",
		Status:    statusOK,
		Summary:   fmt.Sprintf("%d tools found", len(tools)),
		Data: map[string]interface{}{
			"tools": tools,
		},
		NextActions: []string{
			"Call wiki_get_page_text with a tool page for its full content",
			"Call wiki_get_table_fields on '{Tool}Resources' to inspect a tool's resource schema",
		},
	}
	return mcp.NewToolResultText(response.Format()), nil
}

func (s *CivicServer) handleGetTableFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table := request.GetString("table", "")
	if table == "" {
		return mcp.NewToolResultError("The 'table' parameter is required. Resource tables are named '{Tool}Resources', e.g. 'SuicideHotlineResources'."), nil
	}

	fields, err := s.getCachedTableFields(ctx, table)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch the schema of Cargo table '%s': %v. Please try again.", table, err)), nil
	}

	if len(fields) == 0 {
		response := StandardResponse{
			Operation: "wiki_get_table_fields",
			Status:    statusNotFound,
			Summary:   fmt.Sprintf("Cargo table '%s' not found or has no fields", table),
			NextActions: []string{
				"Call wiki_query_tools to check whether the tool has resources",
				"Resource tables follow the '{Tool}Resources' naming convention",
			},
		}
		return mcp.NewToolResultText(response.Format()), nil
	}

	fieldTypes := make(map[string]string, len(fields))
	names := make([]string, 0, len(fields))
	for name, field := range fields {
		fieldTypes[name] = field.Type
		names = append(names, name)
	}
	sort.Strings(names)

	response := StandardResponse{
		Operation: "wiki_get_table_fields",
		Status:    statusOK,
		Summary:   fmt.Sprintf("Table '%s' has %d fields", table, len(fields)),
		Data: map[string]interface{}{
			"table":       table,
			"field_names": names,
			"field_types": fieldTypes,
		},
	}
	return mcp.NewToolResultText(response.Format()), nil
}

func (s *CivicServer) handleGetPageText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := request.GetString("page", "")
	if page == "" {
		return mcp.NewToolResultError("The 'page' parameter is required. Get page names from wiki_query_tools results (e.g., 'Tool:SuicideHotline')."), nil
	}

	data, err := s.makeAPIRequest(ctx, wikiAPIURL, map[string]string{
		"action": "parse",
		"format": "json",
		"page":   page,
		"prop":   "text",
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch page '%s' from wiki.publicai.co: %v. Please try again.", page, err)), nil
	}

	var parsed publicwiki.ParseResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse the wiki API response: %v.", err)), nil
	}
	if parsed.Error != nil || parsed.Parse == nil {
		summary := fmt.Sprintf("Page '%s' not found", page)
		if parsed.Error != nil {
			summary = fmt.Sprintf("Page '%s' not available: %s", page, parsed.Error.Info)
		}
		response := StandardResponse{
			Operation:   "wiki_get_page_text",
			Status:      statusNotFound,
			Summary:     summary,
			NextActions: []string{"Call wiki_query_tools to find valid tool pages"},
		}
		return mcp.NewToolResultText(response.Format()), nil
	}

	title := parsed.Parse.Title
	if title == "" {
		title = page
	}
	response := StandardResponse{
		Operation: "wiki_get_page_text",
		Status:    statusOK,
		Summary:   fmt.Sprintf("Content of '%s'", title),
		Data: map[string]interface{}{
			"page":     title,
			"page_id":  parsed.Parse.PageID,
			"content":  parsed.Parse.Text["*"],
			"page_url": publicwiki.PageURL(wikiBaseURL, page),
		},
	}
	return mcp.NewToolResultText(response.Format()), nil
}

// parseResourceJSON decodes the resource field map, repairing missing closing
// braces before giving up; truncated JSON is the most common caller mistake.
func parseResourceJSON(raw string) (map[string]interface{}, error) {
	var data map[string]interface{}
	err := json.Unmarshal([]byte(raw), &data)
	if err == nil {
		return data, nil
	}

	openBraces := strings.Count(raw, "{")
	closeBraces := strings.Count(raw, "}")
	if openBraces > closeBraces {
		fixed := raw + strings.Repeat("}", openBraces-closeBraces)
		var repaired map[string]interface{}
		if repairErr := json.Unmarshal([]byte(fixed), &repaired); repairErr == nil {
			return repaired, nil
		}
	}
	return nil, err
}

// formatTemplateValue renders a decoded JSON value as wikitext parameter text.
func formatTemplateValue(value interface{}) string {
	if value == nil {
		return ""
	}
	if text, ok := value.(string); ok {
		return text
	}
	return fmt.Sprintf("%v", value)
}

func (s *CivicServer) handleAddResource(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tool := request.GetString("tool", "")
	country := request.GetString("country", "")
	fieldsJSON := request.GetString("fields_json", "")
	region := request.GetString("region", "")

	if tool == "" || country == "" || fieldsJSON == "" {
		return mcp.NewToolResultError("The 'tool', 'country', and 'fields_json' parameters are all required. Use wiki_get_table_fields to learn the valid fields first."), nil
	}

	resourceData, err := parseResourceJSON(fieldsJSON)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Invalid JSON in 'fields_json': %v. Ensure it is a valid JSON object like '{\"event_name\": \"Art Fair\"}'.", err)), nil
	}

	page := publicwiki.NormalizeToolPage(tool)
	toolName := publicwiki.ToolName(page)
	table := publicwiki.ResourceTableName(toolName)
	templateName := publicwiki.TemplateName(toolName)

	schema, err := s.getCachedTableFields(ctx, table)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to fetch the resource schema for '%s': %v. Please try again.", table, err)), nil
	}
	if len(schema) == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("Resource table '%s' not found; '%s' may not support resources. Use wiki_query_tools to find tools with resources.", table, page)), nil
	}

	templateParams := map[string]string{
		"tool":    page,
		"country": country,
	}
	if region != "" {
		templateParams["region"] = region
	}
	for key, value := range resourceData {
		templateParams[key] = formatTemplateValue(value)
	}

	var invalidFields []string
	for field := range templateParams {
		if _, ok := schema[field]; !ok {
			invalidFields = append(invalidFields, field)
		}
	}
	if len(invalidFields) > 0 {
		sort.Strings(invalidFields)
		validFields := make([]string, 0, len(schema))
		for field := range schema {
			validFields = append(validFields, field)
		}
		sort.Strings(validFields)
		return mcp.NewToolResultError(fmt.Sprintf("Invalid field(s) for table '%s': %s. Valid fields: %s.",
			table, strings.Join(invalidFields, ", "), strings.Join(validFields, ", "))), nil
	}

	wikitext := publicwiki.BuildTemplateCall(templateName, templateParams)
	resourcePage := publicwiki.ResourcePageName(toolName, country, region)

	tokenData, err := s.makeAPIRequest(ctx, wikiAPIURL, map[string]string{
		"action": "query",
		"meta":   "tokens",
		"format": "json",
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to obtain an edit token from wiki.publicai.co: %v. Please try again.", err)), nil
	}

	var tokens publicwiki.TokenResponse
	if err := json.Unmarshal(tokenData, &tokens); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse the token response: %v.", err)), nil
	}
	if tokens.Query == nil || tokens.Query.Tokens["csrftoken"] == "" {
		return mcp.NewToolResultError("The wiki did not issue an edit token. The API may be unavailable; please try again."), nil
	}

	csrfToken := tokens.Query.Tokens["csrftoken"]
	if csrfToken == anonymousCSRFToken {
		response := StandardResponse{
			Operation: "wiki_add_resource",
			Status:    statusDryRun,
			Summary:   fmt.Sprintf("Not authenticated with the wiki; generated the %s entry without saving", templateName),
			Data: map[string]interface{}{
				"resource_page":     resourcePage,
				"resource_page_url": publicwiki.PageURL(wikiBaseURL, resourcePage),
				"template_name":     templateName,
				"wikitext":          strings.TrimSpace(wikitext),
			},
			Note: "Edits require an authenticated wiki session. The generated wikitext can be prepended to the resource page manually.",
		}
		return mcp.NewToolResultText(response.Format()), nil
	}

	form := url.Values{}
	form.Set("action", "edit")
	form.Set("format", "json")
	form.Set("title", resourcePage)
	form.Set("prependtext", wikitext)
	form.Set("summary", fmt.Sprintf("Added new %s resource via MCP", toolName))
	form.Set("token", csrfToken)

	editData, err := s.makeFormRequest(ctx, wikiAPIURL, form)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to submit the edit to wiki.publicai.co: %v. Generated wikitext: %s", err, strings.TrimSpace(wikitext))), nil
	}

	var edit publicwiki.EditResponse
	if err := json.Unmarshal(editData, &edit); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to parse the edit response: %v.", err)), nil
	}
	if edit.Edit == nil || edit.Edit.Result != "Success" {
		detail := "unknown error"
		if edit.Error != nil {
			detail = fmt.Sprintf("%s (%s)", edit.Error.Info, edit.Error.Code)
		} else if edit.Edit != nil {
			detail = edit.Edit.Result
		}
		return mcp.NewToolResultError(fmt.Sprintf("The wiki rejected the edit: %s. Generated wikitext: %s", detail, strings.TrimSpace(wikitext))), nil
	}

	response := StandardResponse{
		Operation: "wiki_add_resource",
		Status:    statusOK,
		Summary:   fmt.Sprintf("Added a %s entry to %s", templateName, resourcePage),
		Data: map[string]interface{}{
			"resource_page":     resourcePage,
			"resource_page_url": publicwiki.PageURL(wikiBaseURL, resourcePage),
			"template_name":     templateName,
			"added_content":     strings.TrimSpace(wikitext),
			"revision_id":       edit.Edit.NewRevID,
		},
	}
	return mcp.NewToolResultText(response.Format()), nil
}
