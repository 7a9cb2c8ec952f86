package crawler

import "net/url"

// Canonicalize normalizes a URL to its deduplication key by stripping the
// query string and fragment. Scheme, host, and path are left untouched, so
// the function is idempotent. An unparsable URL is returned unchanged; it
// will fail at fetch time and be recorded as a failed page.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}
