package model

import (
	"encoding/json"
	"strings"
)

// PageResult is the record created for a single fetched URL.
// It is built exactly once per canonical URL, is immutable after creation,
// and is owned by the Sitemap it is inserted into.
type PageResult struct {
	// URL is the canonical URL (query and fragment removed).
	URL string

	// StatusCode is the HTTP response status code.
	// Zero means the fetch failed before any response was received
	// (connection error, timeout); such results carry no extracted links.
	StatusCode int

	// ContentType is the MIME type reported by the server.
	// It is "error" for failed fetches.
	ContentType string

	// Keywords maps each requested keyword to its occurrence count in the
	// page text. Keywords with zero occurrences are omitted.
	Keywords map[string]int
}

// Failed reports whether the fetch produced no HTTP response at all.
func (p *PageResult) Failed() bool {
	return p.StatusCode == 0
}

// IsHTML reports whether the content type indicates HTML.
func (p *PageResult) IsHTML() bool {
	return strings.Contains(p.ContentType, "html")
}

// IsJSON reports whether the content type indicates JSON.
func (p *PageResult) IsJSON() bool {
	return strings.Contains(p.ContentType, "json")
}

// pageResultJSON is the wire form of PageResult used in JSON reports.
// The code field holds either the numeric status or the string "error",
// matching the persisted report layout.
type pageResultJSON struct {
	Code        any            `json:"code"`
	ContentType string         `json:"content_type"`
	URL         string         `json:"url"`
	Keywords    map[string]int `json:"keywords"`
}

// MarshalJSON encodes the result with "error" in place of a status code
// when the fetch never produced a response.
func (p *PageResult) MarshalJSON() ([]byte, error) {
	out := pageResultJSON{
		ContentType: p.ContentType,
		URL:         p.URL,
		Keywords:    p.Keywords,
	}
	if p.Failed() {
		out.Code = "error"
	} else {
		out.Code = p.StatusCode
	}
	if out.Keywords == nil {
		out.Keywords = map[string]int{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (p *PageResult) UnmarshalJSON(data []byte) error {
	var in pageResultJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	p.ContentType = in.ContentType
	p.URL = in.URL
	p.Keywords = in.Keywords
	if code, ok := in.Code.(float64); ok {
		p.StatusCode = int(code)
	} else {
		p.StatusCode = 0
	}
	return nil
}
