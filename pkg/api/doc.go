// Package api provides the HTTP server and request handlers.
//
// # Overview
//
// The server exposes three route groups:
//
//   - /auth: registration, login, and API token management
//   - /posts: post CRUD with role-based visibility filtering
//   - /posts/{id}/comments and /comments: comment listing, creation,
//     and deletion
//
// Read endpoints for posts run authentication in optional mode so
// anonymous callers can browse published content; every other endpoint
// requires a bearer token. Authorization decisions are delegated to the
// access package and their outcomes recorded as metrics.
package api
