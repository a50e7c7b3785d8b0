// Package http exposes the scheduling engine over a thin JSON transport.
// Handlers decode requests, delegate to the application services, and map
// service errors onto status codes; no business rules live here.
package http
