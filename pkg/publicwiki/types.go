// Package publicwiki provides typed bindings and page-name helpers for the
// wiki.publicai.co MediaWiki API, including its Cargo query extension.
package publicwiki

// APIError is the MediaWiki error envelope attached to failed actions.
type APIError struct {
	Code string `json:"code,omitempty"`
	Info string `json:"info,omitempty"`
}

// CargoQueryItem wraps one result row; Cargo nests every row under "title".
type CargoQueryItem struct {
	Title map[string]string `json:"title"`
}

// CargoQueryResponse is the envelope of action=cargoquery.
type CargoQueryResponse struct {
	CargoQuery []CargoQueryItem `json:"cargoquery"`
	Error      *APIError        `json:"error,omitempty"`
}

// CargoField describes one column of a Cargo table.
type CargoField struct {
	Type string `json:"type"`
}

// CargoFieldsResponse is the envelope of action=cargofields.
type CargoFieldsResponse struct {
	CargoFields map[string]CargoField `json:"cargofields"`
	Error       *APIError             `json:"error,omitempty"`
}

// ParseResult carries a rendered page; the HTML body sits under text["*"].
type ParseResult struct {
	Title  string            `json:"title,omitempty"`
	PageID int               `json:"pageid,omitempty"`
	Text   map[string]string `json:"text,omitempty"`
}

// ParseResponse is the envelope of action=parse.
type ParseResponse struct {
	Parse *ParseResult `json:"parse,omitempty"`
	Error *APIError    `json:"error,omitempty"`
}

// TokenQuery holds the tokens map of a meta=tokens query; the CSRF token for
// edits sits under "csrftoken".
type TokenQuery struct {
	Tokens map[string]string `json:"tokens"`
}

// TokenResponse is the envelope of action=query&meta=tokens.
type TokenResponse struct {
	Query *TokenQuery `json:"query,omitempty"`
	Error *APIError   `json:"error,omitempty"`
}

// EditResult reports the outcome of a page edit. Result is "Success" when
// the edit was applied.
type EditResult struct {
	Result   string `json:"result,omitempty"`
	PageID   int    `json:"pageid,omitempty"`
	Title    string `json:"title,omitempty"`
	OldRevID int    `json:"oldrevid,omitempty"`
	NewRevID int    `json:"newrevid,omitempty"`
}

// EditResponse is the envelope of action=edit.
type EditResponse struct {
	Edit  *EditResult `json:"edit,omitempty"`
	Error *APIError   `json:"error,omitempty"`
}
