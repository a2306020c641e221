package swissvotes

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// extractMode is how a matched label's value cell is turned into a field.
type extractMode int

const (
	// modeText copies the cell's visible text.
	modeText extractMode = iota
	// modeHref prefers the first anchor's href over the visible text.
	modeHref
	// modeSpans joins the cell's span texts with "; ", falling back to the
	// visible text when the cell has no spans.
	modeSpans
	// modeParolen runs the party-recommendation parser on the cell.
	modeParolen
)

// labelRule binds one detail-page label to its extraction mode and target
// field. Exactly one of set/setList is non-nil, matching the mode.
type labelRule struct {
	mode    extractMode
	set     func(*VoteRecord, string)
	setList func(*VoteRecord, []string)
}

// labelRules is the fixed label dictionary for the detail-page table scan.
// Labels are matched case-sensitively; anything not listed here is ignored.
var labelRules = map[string]labelRule{
	"Offizieller Titel":   {mode: modeText, set: func(r *VoteRecord, v string) { r.OffiziellerTitel = v }},
	"Schlagwort":          {mode: modeText, set: func(r *VoteRecord, v string) { r.Schlagwort = v }},
	"Abstimmungsdatum":    {mode: modeText, set: func(r *VoteRecord, v string) { r.Abstimmungsdatum = v }},
	"Abstimmungsnummer":   {mode: modeText, set: func(r *VoteRecord, v string) { r.Abstimmungsnummer = v }},
	"Rechtsform":          {mode: modeText, set: func(r *VoteRecord, v string) { r.Rechtsform = v }},
	"Politikbereich":      {mode: modeSpans, set: func(r *VoteRecord, v string) { r.Politikbereich = v }},
	"Beschreibung Année Politique Suisse": {mode: modeHref, set: func(r *VoteRecord, v string) { r.BeschreibungAPSURL = v }},
	"Abstimmungstext":       {mode: modeHref, set: func(r *VoteRecord, v string) { r.AbstimmungstextPDF = v }},
	"Offizielle Chronologie": {mode: modeHref, set: func(r *VoteRecord, v string) { r.OffizielleChronologieURL = v }},
	"Urheber:innen":          {mode: modeText, set: func(r *VoteRecord, v string) { r.Urheberinnen = v }},
	"Vorprüfung":             {mode: modeHref, set: func(r *VoteRecord, v string) { r.VorpruefungPDF = v }},
	"Unterschriften":         {mode: modeText, set: func(r *VoteRecord, v string) { r.Unterschriften = v }},
	"Sammeldauer":            {mode: modeText, set: func(r *VoteRecord, v string) { r.Sammeldauer = v }},
	"Zustandekommen":         {mode: modeHref, set: func(r *VoteRecord, v string) { r.ZustandekommenPDF = v }},
	"Botschaft des Bundesrats": {mode: modeHref, set: func(r *VoteRecord, v string) { r.BotschaftBundesratPDF = v }},
	"Geschäftsnummer":          {mode: modeText, set: func(r *VoteRecord, v string) { r.Geschaeftsnummer = v }},
	"Parlamentsberatung":       {mode: modeHref, set: func(r *VoteRecord, v string) { r.ParlamentsberatungURL = v }},
	"Behandlungsdauer Parlament": {mode: modeText, set: func(r *VoteRecord, v string) { r.BehandlungsdauerParlament = v }},
	"Position des Parlaments":    {mode: modeText, set: func(r *VoteRecord, v string) { r.PositionParlament = v }},
	"Position des Nationalrats":  {mode: modeText, set: func(r *VoteRecord, v string) { r.PositionNationalrat = v }},
	"Position des Ständerats":    {mode: modeText, set: func(r *VoteRecord, v string) { r.PositionStaenderat = v }},
	"Offizielles Abstimmungsbüchlein": {mode: modeHref, set: func(r *VoteRecord, v string) { r.AbstimmungsbuechleinPDF = v }},
	"Position des Bundesrats":         {mode: modeText, set: func(r *VoteRecord, v string) { r.PositionBundesrat = v }},
	"Online-Informationen der Behörden": {mode: modeHref, set: func(r *VoteRecord, v string) { r.OnlineInformationenURL = v }},
	"Parteiparolen":                     {mode: modeParolen, setList: func(r *VoteRecord, v []string) { r.Parteiparolen = v }},
	"Wählendenanteil des Ja-Lagers":     {mode: modeHref, set: func(r *VoteRecord, v string) { r.WaehlendenanteilJaLager = v }},
	"Weitere Parolen":                   {mode: modeParolen, setList: func(r *VoteRecord, v []string) { r.WeitereParolen = v }},
	"Abweichende Sektionen":             {mode: modeParolen, setList: func(r *VoteRecord, v []string) { r.AbweichendeSektionen = v }},
	"Kampagnenfinanzierung":             {mode: modeHref, set: func(r *VoteRecord, v string) { r.KampagnenfinanzierungURL = v }},
}

// FetchVoteRecord fetches one vote's detail page and extracts its fields.
// Fields whose label never appears stay empty and are omitted from JSON
// output. When the same label appears twice the last occurrence wins. A
// failed or non-200 page fetch returns an error; the caller skips the vote.
func (s *Scraper) FetchVoteRecord(ctx context.Context, voteID string) (*VoteRecord, error) {
	detailURL := fmt.Sprintf("%s/vote/%s", s.cfg.BaseURL, voteID)
	doc, err := s.fetchDocument(ctx, detailURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vote page: %w", err)
	}

	rec := &VoteRecord{
		VoteID:         strings.SplitN(voteID, ".", 2)[0],
		OfficialNumber: voteID,
		DetailsURL:     detailURL,
	}
	s.extractFields(doc, rec)

	if h1 := doc.Find("h1").First(); h1.Length() > 0 {
		rec.TitleDE = joinedText(h1, "")
	}

	if rec.AbstimmungsbuechleinPDF != "" {
		s.logger.Debug("Extracting brochure text",
			slog.String("vote_id", voteID),
			slog.String("url", rec.AbstimmungsbuechleinPDF))
		if texts := s.ExtractBrochureText(ctx, rec.AbstimmungsbuechleinPDF); len(texts) > 0 {
			rec.BrochureTexts = texts
		}
	}

	return rec, nil
}

// extractFields scans every two-cell row of every table on the page against
// the label dictionary.
func (s *Scraper) extractFields(doc *goquery.Document, rec *VoteRecord) {
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.ChildrenFiltered("th, td")
			if cells.Length() != 2 {
				return
			}
			labelCell := cells.Eq(0)
			valueCell := cells.Eq(1)

			// Section headers: a th spanning the row or paired with an
			// empty value cell.
			if goquery.NodeName(labelCell) == "th" {
				if _, spans := labelCell.Attr("colspan"); spans || strings.TrimSpace(valueCell.Text()) == "" {
					return
				}
			}

			rule, ok := labelRules[joinedText(labelCell, " ")]
			if !ok {
				return
			}

			switch rule.mode {
			case modeText:
				rule.set(rec, joinedText(valueCell, " "))
			case modeHref:
				if href, found := firstHref(valueCell); found {
					rule.set(rec, href)
				} else {
					rule.set(rec, joinedText(valueCell, " "))
				}
			case modeSpans:
				spans := valueCell.Find("span")
				if spans.Length() > 0 {
					var parts []string
					spans.Each(func(_ int, span *goquery.Selection) {
						parts = append(parts, joinedText(span, " "))
					})
					rule.set(rec, strings.Join(parts, "; "))
				} else {
					rule.set(rec, joinedText(valueCell, " "))
				}
			case modeParolen:
				rule.setList(rec, parseRecommendations(valueCell))
			}
		})
	})
}
