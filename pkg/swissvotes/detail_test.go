package swissvotes

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync"
	"testing"
)

// detailPage is a trimmed copy of a vote detail page: label/value tables,
// section headers, repeated labels and a few rows the extractor must ignore.
const detailPage = `<html><body>
<h1>Für eine Zukunft unserer Natur</h1>
<table>
	<tr><th colspan="2">Basisangaben</th><td></td></tr>
	<tr><th>Weiterführende Links</th><td>  </td></tr>
	<tr><th>Offizieller Titel</th><td>Eidgenössische Volksinitiative «Für eine Zukunft unserer Natur»</td></tr>
	<tr><th>Schlagwort</th><td>Umwelt</td></tr>
	<tr><th>Abstimmungsdatum</th><td>07.03.2027</td></tr>
	<tr><th>Abstimmungsnummer</th><td>680</td></tr>
	<tr><th>Rechtsform</th><td>Volksinitiative</td></tr>
	<tr><th>Politikbereich</th><td><span>Umwelt</span> <span>Landwirtschaft</span></td></tr>
	<tr><th>Abstimmungstext</th><td><a href="https://www.admin.ch/text-680.pdf">Abstimmungstext</a></td></tr>
	<tr><th>Urheber:innen</th><td>Trägerverein Zukunft Natur</td></tr>
	<tr><th>Unterschriften</th><td>105'000 gültige</td></tr>
	<tr><th>Geschäftsnummer</th><td>24.059</td></tr>
</table>
<table>
	<tr><th>Botschaft des Bundesrats</th><td><a href="https://www.admin.ch/botschaft-680.pdf">Botschaft</a></td></tr>
	<tr><th>Position des Nationalrats</th><td>Ablehnung (120:70)</td></tr>
	<tr><th>Parlamentsberatung</th><td>noch offen</td></tr>
	<tr><th>Parteiparolen</th><td><dl class="recommendation"><dt>Ja</dt><dd>GPS</dd><dd>SP</dd><dt>Nein</dt><dd>SVP</dd></dl></td></tr>
	<tr><th>Wählendenanteil des Ja-Lagers</th><td><a href="https://swissvotes.ch/share-680">41.5%</a></td></tr>
	<tr><th>Anzahl Bemerkungen</th><td>7</td></tr>
	<tr><th>Schlagwort</th><td>Naturschutz</td></tr>
</table>
</body></html>`

func newDetailServer(t *testing.T, votePath, page string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != votePath {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	}))
}

func TestFetchVoteRecord(t *testing.T) {
	t.Parallel()

	srv := newDetailServer(t, "/vote/680.00.html", detailPage)
	defer srv.Close()

	scraper := NewScraper(WithBaseURL(srv.URL))
	rec, err := scraper.FetchVoteRecord(context.Background(), "680.00.html")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	expected := &VoteRecord{
		VoteID:                  "680",
		OfficialNumber:          "680.00.html",
		DetailsURL:              srv.URL + "/vote/680.00.html",
		OffiziellerTitel:        "Eidgenössische Volksinitiative «Für eine Zukunft unserer Natur»",
		Schlagwort:              "Naturschutz",
		Abstimmungsdatum:        "07.03.2027",
		Abstimmungsnummer:       "680",
		Rechtsform:              "Volksinitiative",
		Politikbereich:          "Umwelt; Landwirtschaft",
		AbstimmungstextPDF:      "https://www.admin.ch/text-680.pdf",
		Urheberinnen:            "Trägerverein Zukunft Natur",
		Unterschriften:          "105'000 gültige",
		Geschaeftsnummer:        "24.059",
		BotschaftBundesratPDF:   "https://www.admin.ch/botschaft-680.pdf",
		PositionNationalrat:     "Ablehnung (120:70)",
		ParlamentsberatungURL:   "noch offen",
		Parteiparolen:           []string{"Ja: GPS", "Ja: SP", "Nein: SVP"},
		WaehlendenanteilJaLager: "https://swissvotes.ch/share-680",
		TitleDE:                 "Für eine Zukunft unserer Natur",
	}

	if !reflect.DeepEqual(rec, expected) {
		t.Errorf("Extracted record does not match.\nExpected: %+v\nGot:      %+v", expected, rec)
	}
}

// TestFetchVoteRecordRepeatable parses the same unmodified page twice and
// expects identical results.
func TestFetchVoteRecordRepeatable(t *testing.T) {
	t.Parallel()

	srv := newDetailServer(t, "/vote/680.00.html", detailPage)
	defer srv.Close()

	scraper := NewScraper(WithBaseURL(srv.URL))
	first, err := scraper.FetchVoteRecord(context.Background(), "680.00.html")
	if err != nil {
		t.Fatalf("Unexpected error on first fetch: %v", err)
	}
	second, err := scraper.FetchVoteRecord(context.Background(), "680.00.html")
	if err != nil {
		t.Fatalf("Unexpected error on second fetch: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Repeated extraction diverged.\nFirst:  %+v\nSecond: %+v", first, second)
	}
}

func TestFetchVoteRecordNotFound(t *testing.T) {
	t.Parallel()

	srv := newDetailServer(t, "/vote/680.00.html", detailPage)
	defer srv.Close()

	scraper := NewScraper(WithBaseURL(srv.URL))
	if _, err := scraper.FetchVoteRecord(context.Background(), "999.00.html"); err == nil {
		t.Error("Expected an error for a missing detail page")
	}
}

// TestFetchVoteRecordBrochureFailuresIsolated serves a detail page whose
// brochure link points at a server that has no PDFs. The record must still be
// built, all language variants must have been tried, and no brochure text may
// be attached.
func TestFetchVoteRecordBrochureFailuresIsolated(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var pdfRequests []string

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page := fmt.Sprintf(`<html><body><h1>Test</h1><table>
		<tr><th>Offizieller Titel</th><td>Testinitiative</td></tr>
		<tr><th>Offizielles Abstimmungsbüchlein</th><td><a href="%s/static/brochure-de.pdf">Büchlein</a></td></tr>
	</table></body></html>`, srv.URL)

	mux.HandleFunc("/vote/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, page)
	})
	mux.HandleFunc("/static/", func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		pdfRequests = append(pdfRequests, r.URL.Path)
		mu.Unlock()
		http.NotFound(w, r)
	})

	scraper := NewScraper(WithBaseURL(srv.URL))
	rec, err := scraper.FetchVoteRecord(context.Background(), "680.00.html")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if rec.AbstimmungsbuechleinPDF != srv.URL+"/static/brochure-de.pdf" {
		t.Errorf("Unexpected brochure link: %q", rec.AbstimmungsbuechleinPDF)
	}
	if len(rec.BrochureTexts) != 0 {
		t.Errorf("Expected no brochure texts, got %v", rec.BrochureTexts)
	}

	mu.Lock()
	defer mu.Unlock()
	expected := []string{"/static/brochure-de.pdf", "/static/brochure-fr.pdf", "/static/brochure-it.pdf"}
	if !reflect.DeepEqual(pdfRequests, expected) {
		t.Errorf("Expected all language variants to be probed, got %v", pdfRequests)
	}
}
