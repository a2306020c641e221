package server

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/publicai/civic-mcp/pkg/swissvotes"
)

func (s *CivicServer) registerVotingTools() {
	s.server.AddTool(mcp.Tool{
		Name:        "swiss_get_federal_votes",
		Description: "Retrieve the current snapshot of upcoming Swiss federal votes (Volksinitiativen and referendums). Returns snapshot metadata (last update time, data version, sources) and a per-vote summary with vote id, official number, title, voting date, and ballot type. The snapshot is produced by the swissvotes.ch extraction pipeline and served from disk, so results are instant and stable between pipeline runs. Use this first to discover which votes exist, then swiss_get_vote_details for full records.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
		},
	}, s.handleGetFederalVotes)

	s.server.AddTool(mcp.Tool{
		Name:        "swiss_get_vote_details",
		Description: "Retrieve the complete record of one Swiss federal vote, including the official title, voting date, legal form, policy areas, party recommendations (Parteiparolen), parliament positions, signature counts, links to the official voting text and Bundesrat message PDFs, and the extracted voting brochure texts. Essential for answering detailed questions about a specific initiative or referendum. Get vote ids from swiss_get_federal_votes or swiss_search_votes first.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"vote_id": map[string]interface{}{
					"type":        "string",
					"description": "Vote identifier from the snapshot (e.g., '680'). Use swiss_get_federal_votes to list available ids.",
				},
			},
			Required: []string{"vote_id"},
		},
	}, s.handleGetVoteDetails)

	s.server.AddTool(mcp.Tool{
		Name:        "swiss_search_votes",
		Description: "Search upcoming Swiss federal votes by topic. Performs case-insensitive substring matching over the vote title, official title, keyword (Schlagwort), and policy areas (Politikbereich). When nothing matches, fuzzy suggestions based on German-normalized similarity are returned instead, so queries like 'Naturschuz' or 'Umwelt' still lead somewhere useful. Returns matching vote summaries with ids for follow-up calls.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search term, matched case-insensitively against titles, keywords, and policy areas (e.g., 'Umwelt', 'Referendum', 'Energie').",
				},
				"limit": map[string]interface{}{
					"type":        "string",
					"description": "Maximum number of matches to return (default: 10, max: 50).",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleSearchVotes)

	s.server.AddTool(mcp.Tool{
		Name:        "swiss_get_brochure_text",
		Description: "Retrieve the extracted plain text of the official federal voting brochure (Abstimmungsbüchlein) for one vote in a chosen language. The pipeline extracts the brochure PDFs in German, French, and Italian where available; this tool returns the pre-extracted text without any network access. Useful for quoting the official explanations, the Bundesrat's position, and the committee arguments verbatim.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"vote_id": map[string]interface{}{
					"type":        "string",
					"description": "Vote identifier from the snapshot (e.g., '680').",
				},
				"language": map[string]interface{}{
					"type":        "string",
					"description": "Brochure language code: 'de' (default), 'fr', or 'it'. Availability depends on what the pipeline could extract.",
				},
			},
			Required: []string{"vote_id"},
		},
	}, s.handleGetBrochureText)
}

// voteSummary is the compact per-vote row returned by the listing and search tools.
type voteSummary struct {
	VoteID         string `json:"vote_id"`
	OfficialNumber string `json:"official_number,omitempty"`
	Title          string `json:"title,omitempty"`
	Date           string `json:"date,omitempty"`
	BallotType     string `json:"ballot_type,omitempty"`
}

func summarizeVote(record *swissvotes.VoteRecord) voteSummary {
	title := record.TitleDE
	if title == "" {
		title = record.OffiziellerTitel
	}
	return voteSummary{
		VoteID:         record.VoteID,
		OfficialNumber: record.OfficialNumber,
		Title:          title,
		Date:           record.Abstimmungsdatum,
		BallotType:     record.Rechtsform,
	}
}

// loadDataset reads the voting snapshot from disk. The snapshot is an
// immutable artifact between pipeline runs, so every call reads the file
// rather than going through a cache that could serve a replaced snapshot.
func (s *CivicServer) loadDataset() (*swissvotes.Dataset, error) {
	ds, err := swissvotes.ReadDataset(s.config.DatasetPath)
	if err != nil {
		s.logger.Error("Failed to load voting dataset",
			slog.String("path", s.config.DatasetPath),
			slog.Any("error", err))
		return nil, err
	}
	return ds, nil
}

func (s *CivicServer) findVote(ds *swissvotes.Dataset, voteID string) *swissvotes.VoteRecord {
	for i := range ds.FederalInitiatives {
		if ds.FederalInitiatives[i].VoteID == voteID {
			return &ds.FederalInitiatives[i]
		}
	}
	return nil
}

func (s *CivicServer) availableVoteIDs(ds *swissvotes.Dataset) []string {
	ids := make([]string, 0, len(ds.FederalInitiatives))
	for i := range ds.FederalInitiatives {
		ids = append(ids, ds.FederalInitiatives[i].VoteID)
	}
	return ids
}

func (s *CivicServer) handleGetFederalVotes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ds, err := s.loadDataset()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load the voting dataset: %v. Run the swissvotes-extract pipeline or point the server at an existing snapshot with -dataset.", err)), nil
	}

	summaries := make([]voteSummary, 0, len(ds.FederalInitiatives))
	for i := range ds.FederalInitiatives {
		summaries = append(summaries, summarizeVote(&ds.FederalInitiatives[i]))
	}

	response := StandardResponse{
		Operation: "swiss_get_federal_votes",
		Status:    statusOK,
		Summary: fmt.Sprintf("%d upcoming federal votes (data version %s, updated %s)",
			len(summaries), ds.Metadata.DataVersion, ds.Metadata.LastUpdated.Time.Format("2006-01-02")),
		Data: map[string]interface{}{
			"metadata": ds.Metadata,
			"votes":    summaries,
		},
		NextActions: []string{
			"Call swiss_get_vote_details with a vote_id for the full record",
			"Call swiss_search_votes to filter votes by topic",
		},
	}
	return mcp.NewToolResultText(response.Format()), nil
}

func (s *CivicServer) handleGetVoteDetails(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	voteID := request.GetString("vote_id", "")
	if voteID == "" {
		return mcp.NewToolResultError("The 'vote_id' parameter is required. Get vote ids from swiss_get_federal_votes results."), nil
	}

	ds, err := s.loadDataset()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load the voting dataset: %v. Run the swissvotes-extract pipeline or point the server at an existing snapshot with -dataset.", err)), nil
	}

	record := s.findVote(ds, voteID)
	if record == nil {
		response := StandardResponse{
			Operation: "swiss_get_vote_details",
			Status:    statusNotFound,
			Summary:   fmt.Sprintf("No vote with id '%s' in the current snapshot", voteID),
			NextActions: []string{
				fmt.Sprintf("Available vote ids: %s", strings.Join(s.availableVoteIDs(ds), ", ")),
				"Call swiss_get_federal_votes for the full listing",
			},
		}
		return mcp.NewToolResultText(response.Format()), nil
	}

	title := record.TitleDE
	if title == "" {
		title = record.OffiziellerTitel
	}
	response := StandardResponse{
		Operation: "swiss_get_vote_details",
		Status:    statusOK,
		Summary:   fmt.Sprintf("Vote %s: %s", record.VoteID, title),
		Data:      record,
	}
	return mcp.NewToolResultText(response.Format()), nil
}

// voteMatchesQuery reports whether the lower-cased query appears in any of
// the searchable fields of the record.
func voteMatchesQuery(record *swissvotes.VoteRecord, queryLower string) bool {
	fields := []string{
		record.TitleDE,
		record.OffiziellerTitel,
		record.Schlagwort,
		record.Politikbereich,
	}
	for _, field := range fields {
		if field != "" && strings.Contains(strings.ToLower(field), queryLower) {
			return true
		}
	}
	return false
}

// searchCandidates collects the distinct searchable terms of the snapshot
// for fuzzy suggestions. Policy areas are split into their individual parts.
func searchCandidates(ds *swissvotes.Dataset) []string {
	seen := make(map[string]bool)
	var candidates []string
	add := func(term string) {
		term = strings.TrimSpace(term)
		if term == "" || seen[term] {
			return
		}
		seen[term] = true
		candidates = append(candidates, term)
	}

	for i := range ds.FederalInitiatives {
		record := &ds.FederalInitiatives[i]
		add(record.TitleDE)
		add(record.OffiziellerTitel)
		add(record.Schlagwort)
		for _, area := range strings.Split(record.Politikbereich, ";") {
			add(area)
		}
	}
	return candidates
}

func (s *CivicServer) handleSearchVotes(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query := request.GetString("query", "")
	if query == "" {
		return mcp.NewToolResultError("The 'query' parameter is required. Provide a topic like 'Umwelt' or part of a vote title."), nil
	}
	limit := parseLimit(request.GetString("limit", ""), 10, 50)

	ds, err := s.loadDataset()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load the voting dataset: %v. Run the swissvotes-extract pipeline or point the server at an existing snapshot with -dataset.", err)), nil
	}

	queryLower := strings.ToLower(query)
	var matches []voteSummary
	total := 0
	for i := range ds.FederalInitiatives {
		if !voteMatchesQuery(&ds.FederalInitiatives[i], queryLower) {
			continue
		}
		total++
		if len(matches) < limit {
			matches = append(matches, summarizeVote(&ds.FederalInitiatives[i]))
		}
	}

	if total == 0 {
		suggestions := []string{"Call swiss_get_federal_votes for the full listing"}
		for i, match := range fuzzyMatchText(query, searchCandidates(ds), 0.4) {
			if i >= 5 {
				break
			}
			suggestions = append(suggestions, fmt.Sprintf("Did you mean '%s'? (%.0f%% match)", match.Text, match.Score*100))
		}
		response := StandardResponse{
			Operation:   "swiss_search_votes",
			Status:      statusNotFound,
			Summary:     fmt.Sprintf("No votes match '%s'", query),
			NextActions: suggestions,
		}
		return mcp.NewToolResultText(response.Format()), nil
	}

	summary := fmt.Sprintf("%d votes match '%s'", total, query)
	if total > len(matches) {
		summary += fmt.Sprintf(" (showing first %d)", len(matches))
	}
	response := StandardResponse{
		Operation: "swiss_search_votes",
		Status:    statusOK,
		Summary:   summary,
		Data: map[string]interface{}{
			"total_matches": total,
			"votes":         matches,
		},
		NextActions: []string{"Call swiss_get_vote_details with a vote_id for the full record"},
	}
	return mcp.NewToolResultText(response.Format()), nil
}

func (s *CivicServer) handleGetBrochureText(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	voteID := request.GetString("vote_id", "")
	if voteID == "" {
		return mcp.NewToolResultError("The 'vote_id' parameter is required. Get vote ids from swiss_get_federal_votes results."), nil
	}
	language := request.GetString("language", "de")

	ds, err := s.loadDataset()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to load the voting dataset: %v. Run the swissvotes-extract pipeline or point the server at an existing snapshot with -dataset.", err)), nil
	}

	record := s.findVote(ds, voteID)
	if record == nil {
		response := StandardResponse{
			Operation: "swiss_get_brochure_text",
			Status:    statusNotFound,
			Summary:   fmt.Sprintf("No vote with id '%s' in the current snapshot", voteID),
			NextActions: []string{
				fmt.Sprintf("Available vote ids: %s", strings.Join(s.availableVoteIDs(ds), ", ")),
			},
		}
		return mcp.NewToolResultText(response.Format()), nil
	}

	text, ok := record.BrochureTexts[language]
	if !ok {
		available := make([]string, 0, len(record.BrochureTexts))
		for lang := range record.BrochureTexts {
			available = append(available, lang)
		}
		sort.Strings(available)

		summary := fmt.Sprintf("No '%s' brochure text for vote %s", language, voteID)
		next := []string{"Call swiss_get_vote_details for the rest of the record"}
		if len(available) > 0 {
			next = append([]string{fmt.Sprintf("Available languages: %s", strings.Join(available, ", "))}, next...)
		} else {
			summary = fmt.Sprintf("Vote %s has no extracted brochure texts (the brochure may not be published yet)", voteID)
		}
		response := StandardResponse{
			Operation:   "swiss_get_brochure_text",
			Status:      statusNotFound,
			Summary:     summary,
			NextActions: next,
		}
		return mcp.NewToolResultText(response.Format()), nil
	}

	response := StandardResponse{
		Operation: "swiss_get_brochure_text",
		Status:    statusOK,
		Summary:   fmt.Sprintf("Brochure text for vote %s in '%s' (%d characters)", voteID, language, len(text)),
		Data: map[string]interface{}{
			"vote_id":  record.VoteID,
			"language": language,
			"text":     text,
		},
	}
	return mcp.NewToolResultText(response.Format()), nil
}
