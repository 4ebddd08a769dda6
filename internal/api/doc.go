// Package api exposes score sessions and matching games over HTTP. Handlers
// decode and validate JSON requests, call the session manager or the game
// service, and map service errors to status codes without leaking internals.
package api
