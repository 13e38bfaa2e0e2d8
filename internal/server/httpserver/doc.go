// Package httpserver provides the HTTP plumbing of the development server.
//
// It wraps stdlib net/http with a middleware chain in the order
// Recover, RequestID, RateLimit, Audit, Auth, plus JSON helpers that
// write error bodies as {"detail": "..."}, the shape the client parses.
package httpserver
