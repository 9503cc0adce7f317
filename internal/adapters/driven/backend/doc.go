// Package backend is the HTTP client for the omniq backend API.
//
// Every expected failure (non-2xx status, malformed body, network error) is
// folded at this boundary into the closed result types of the domain
// package. Only image generation and the logout-visibility check return
// errors to their callers.
//
// The client is built from an explicit Config; there is no package-level
// HTTP client. A bearer token set with SetToken is attached to every request
// through an oauth2 transport, and an optional token bucket throttles
// outgoing requests.
package backend
