// Package transport implements an http.RoundTripper that attaches the stored
// bearer token to outgoing requests and, when the server answers
// `401 Unauthorized` while a refresh token is available, refreshes the
// session once and replays the request once.
//
// A second 401 is handed back to the caller untouched; the RoundTripper never
// refreshes twice for the same request. With WithOrigin, tokens are only sent
// to that scheme and host, so redirects to other hosts never carry them.
package transport
