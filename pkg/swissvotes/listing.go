package swissvotes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/publicai/civic-mcp/pkg/common"
)

// Listing-table column positions. The table carries more columns than the
// pipeline reads; access is bounds-checked by the minimum-cell guard below.
const (
	colDate       = 1
	colBallotType = 2
	colResult     = 4
	colYesShare   = 5
	colTurnout    = 6

	minListingCells = 7
)

// placeholderPercent is what the listing shows in the yes-share and turnout
// columns while a vote has no outcome yet.
const placeholderPercent = "%"

// DiscoverUpcomingVotes fetches the first listing page and returns the
// identifiers of every row passing the configured filter, in page order,
// deduplicated first-occurrence-wins. A failed or non-200 listing fetch is
// the one fatal error of a pipeline run; malformed rows are skipped silently.
func (s *Scraper) DiscoverUpcomingVotes(ctx context.Context) ([]string, error) {
	listingURL := s.cfg.BaseURL + "/votes?page=0"
	doc, err := s.fetchDocument(ctx, listingURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vote listing: %w", err)
	}

	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	var ids []string
	seen := make(map[string]bool)

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < minListingCells {
			return
		}

		if joinedText(cells.Eq(colBallotType), "") != s.cfg.BallotType {
			return
		}

		if s.cfg.Filter == FilterUpcoming {
			if joinedText(cells.Eq(colResult), "") != "" ||
				joinedText(cells.Eq(colYesShare), "") != placeholderPercent ||
				joinedText(cells.Eq(colTurnout), "") != placeholderPercent {
				return
			}
			voteDate, err := common.ParseSwissDate(joinedText(cells.Eq(colDate), ""))
			if err != nil || voteDate.Before(today) {
				return
			}
		}

		href, ok := firstHref(cells.Eq(cells.Length() - 1))
		if !ok || !strings.Contains(href, "/vote/") {
			return
		}
		id := strings.Split(href, "/vote/")[1]
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		ids = append(ids, id)
	})

	s.logger.Debug("Listing scan finished",
		slog.String("url", listingURL),
		slog.String("filter", s.cfg.Filter.String()),
		slog.Int("discovered", len(ids)))

	return ids, nil
}
