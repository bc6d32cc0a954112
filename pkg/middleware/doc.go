// Package middleware provides HTTP middleware for authentication and
// role enforcement.
//
// AuthMiddleware resolves bearer tokens to a caller identity and stores
// it in the request context. In optional mode unauthenticated requests
// pass through as anonymous, which the public read endpoints rely on;
// write endpoints run it in required mode. RequireRoles adds a
// coarse-grained role gate in front of a handler; fine-grained decisions
// stay with the access package.
package middleware
