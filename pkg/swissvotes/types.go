// Package swissvotes implements the batch pipeline that turns the swissvotes.ch
// vote listing and vote detail pages into the federal-initiatives JSON snapshot
// served by the civic-mcp voting tools.
package swissvotes

import (
	"github.com/publicai/civic-mcp/pkg/common"
)

// VoteRecord is one scraped federal vote. Field names mirror the German labels
// on the detail page; the JSON keys are the external contract shared with the
// validator and the serving layer. Fields the page did not provide are omitted
// from the JSON output entirely.
type VoteRecord struct {
	VoteID         string `json:"vote_id,omitempty"`
	OfficialNumber string `json:"official_number,omitempty"`
	DetailsURL     string `json:"details_url,omitempty"`

	OffiziellerTitel          string `json:"offizieller_titel,omitempty"`
	Schlagwort                string `json:"schlagwort,omitempty"`
	Abstimmungsdatum          string `json:"abstimmungsdatum,omitempty"`
	Abstimmungsnummer         string `json:"abstimmungsnummer,omitempty"`
	Rechtsform                string `json:"rechtsform,omitempty"`
	Politikbereich            string `json:"politikbereich,omitempty"`
	BeschreibungAPSURL        string `json:"beschreibung_annee_politique_suisse_url,omitempty"`
	AbstimmungstextPDF        string `json:"abstimmungstext_pdf,omitempty"`
	OffizielleChronologieURL  string `json:"offizielle_chronologie_url,omitempty"`
	Urheberinnen              string `json:"urheberinnen,omitempty"`
	VorpruefungPDF            string `json:"vorpruefung_pdf,omitempty"`
	Unterschriften            string `json:"unterschriften,omitempty"`
	Sammeldauer               string `json:"sammeldauer,omitempty"`
	ZustandekommenPDF         string `json:"zustandekommen_pdf,omitempty"`
	BotschaftBundesratPDF     string `json:"botschaft_des_bundesrats_pdf,omitempty"`
	Geschaeftsnummer          string `json:"geschaeftsnummer,omitempty"`
	ParlamentsberatungURL     string `json:"parlamentsberatung_url,omitempty"`
	BehandlungsdauerParlament string `json:"behandlungsdauer_parlament,omitempty"`
	PositionParlament         string `json:"position_parlament,omitempty"`
	PositionNationalrat       string `json:"position_nationalrat,omitempty"`
	PositionStaenderat        string `json:"position_staenderat,omitempty"`
	AbstimmungsbuechleinPDF   string `json:"abstimmungsbuechlein_pdf,omitempty"`
	PositionBundesrat         string `json:"position_bundesrat,omitempty"`
	OnlineInformationenURL    string `json:"online_informationen_behoerden_url,omitempty"`

	Parteiparolen           []string `json:"parteiparolen,omitempty"`
	WaehlendenanteilJaLager string   `json:"waehlendenanteil_ja_lager,omitempty"`
	WeitereParolen          []string `json:"weitere_parolen,omitempty"`
	AbweichendeSektionen    []string `json:"abweichende_sektionen,omitempty"`
	KampagnenfinanzierungURL string  `json:"kampagnenfinanzierung_url,omitempty"`

	TitleDE string `json:"title_de,omitempty"`

	// BrochureTexts maps a language code ("de", "fr", "it") to the extracted
	// plain text of that language's official voting brochure. Languages whose
	// brochure could not be fetched or parsed are absent.
	BrochureTexts map[string]string `json:"brochure_texts,omitempty"`
}

// DatasetMetadata describes one snapshot generation.
type DatasetMetadata struct {
	LastUpdated common.APITime `json:"last_updated"`
	DataVersion string         `json:"data_version"`
	Sources     []string       `json:"sources"`
}

// Dataset is the snapshot envelope written by the pipeline and read back by
// the validator and the voting tools. The record list always lives under
// "federal_initiatives"; no other key is written or accepted.
type Dataset struct {
	Metadata           DatasetMetadata        `json:"metadata"`
	FederalInitiatives []VoteRecord           `json:"federal_initiatives"`
	UsageMetrics       map[string]interface{} `json:"usage_metrics"`
}
