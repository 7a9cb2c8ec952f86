// Package fetch implements the HTTP fetch contract consumed by the crawl
// engine.
//
// A Client chooses GET when the URL's path extension is textual, markup,
// or empty, and HEAD otherwise, so large binaries are probed without being
// downloaded. Failures are encoded in the Response rather than returned as
// errors: a transport failure yields a zero status code, a non-2xx status
// is recorded with Done unset. The User-Agent is chosen per request by an
// injected AgentPolicy (fixed, custom, or random-from-list).
package fetch
