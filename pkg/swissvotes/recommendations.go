package swissvotes

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// parseRecommendations turns a recommendation cell into "<stance>: <party>"
// strings. The primary path walks dt/dd pairs inside dl.recommendation
// blocks: each dt sets the current stance and every dd that follows it is
// emitted under that stance until the next dt. The stance resets between
// blocks, so a dd before the first dt of its block is dropped. Cells without
// such blocks fall back to "label: comma,separated,list" text lines. Never
// fails; an unparseable cell yields no entries.
func parseRecommendations(cell *goquery.Selection) []string {
	var entries []string

	dls := cell.Find("dl.recommendation")
	dls.Each(func(_ int, dl *goquery.Selection) {
		stance := ""
		dl.Find("dt, dd").Each(func(_ int, elem *goquery.Selection) {
			switch goquery.NodeName(elem) {
			case "dt":
				stance = joinedText(elem, " ")
			case "dd":
				if stance != "" {
					entries = append(entries, stance+": "+joinedText(elem, " "))
				}
			}
		})
	})
	if dls.Length() > 0 {
		return entries
	}

	for _, line := range strings.Split(joinedText(cell, "\n"), "\n") {
		label, parties, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		label = strings.TrimSpace(label)
		for _, party := range strings.Split(parties, ",") {
			if party = strings.TrimSpace(party); party != "" {
				entries = append(entries, label+": "+party)
			}
		}
	}
	return entries
}
