// Package access implements role-based access control and visibility
// filtering for Byline posts and comments.
//
// # Overview
//
// Every decision in this package is a pure function of an explicit caller
// context and already-fetched entity state. There is no ambient "current
// user", no storage access, and no hidden state: handlers fetch, decide,
// then act.
//
// # Roles
//
// Roles form a fixed, closed set with hierarchical effective permissions
// but no inheritance in data:
//
//	RoleReader - read published posts, comment on them
//	RoleWriter - Reader rights plus create posts and manage their own
//	RoleAdmin  - Writer rights over every post
//
// A nil *Caller represents an anonymous request and is treated as an
// unauthenticated Reader-equivalent with no ownership relation to any
// entity.
//
// # Visibility
//
// BuildListingPredicate computes the restriction a post listing must
// apply for a caller; CanDisclose gates single-post fetches. Both feed
// the same Predicate/status semantics so list and fetch can never
// disagree about what a caller may see.
//
// # Authorization
//
// AuthorizePostWrite and AuthorizeCommentWrite consult explicit
// role x action permission tables (postMatrix, commentMatrix) plus an
// ownership refinement. Comment creation additionally enforces the
// cross-entity precondition that the parent post is published.
//
// # Error taxonomy
//
// Decisions return one of four sentinel errors, mapped to HTTP status
// codes by HTTPStatus:
//
//	ErrUnauthenticated - 401, required identity absent
//	ErrAccessDenied    - 403, insufficient role or ownership
//	ErrNotFound        - 404, target or parent entity does not exist
//	ErrInvalidState    - 400, related entity state precondition not met
package access
