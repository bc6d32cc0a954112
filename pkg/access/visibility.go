package access

// ListFilters holds the caller-requested filters for a post listing
type ListFilters struct {
	// Status restricts results to a single publication status when non-empty
	Status Status

	// Search is a free-text term matched against searchable post fields
	Search string
}

// Predicate is the restriction a post listing must apply so that only
// posts visible to the caller are returned. Exactly one of AllStatuses,
// Status, or OwnerID is set; the persistence layer translates it into a
// query filter and uses the same predicate for result counting.
type Predicate struct {
	// AllStatuses is set when no status or ownership restriction applies
	AllStatuses bool

	// Status restricts results to posts with this exact status
	Status Status

	// OwnerID restricts results to posts owned by this identity OR posts
	// with published status (the writer union)
	OwnerID string

	// Search, when non-empty, is ANDed onto the role restriction
	Search string
}

// BuildListingPredicate computes the listing restriction for a caller.
//
// Anonymous callers and Readers see published posts only; a requested
// status filter is ignored for them. Writers see the union of their own
// posts and published posts, but an explicit status filter replaces the
// union entirely: a Writer asking for status=draft sees all drafts the
// query returns, and the store is expected to apply this predicate
// verbatim. Admins are unrestricted unless they request a status.
func BuildListingPredicate(caller *Caller, filters ListFilters) Predicate {
	p := Predicate{Search: filters.Search}

	if !caller.Authenticated() {
		p.Status = StatusPublished
		return p
	}

	switch caller.Role {
	case RoleReader:
		p.Status = StatusPublished
	case RoleWriter:
		if filters.Status != "" {
			// Requested status takes precedence over the ownership union.
			p.Status = filters.Status
		} else {
			p.OwnerID = caller.ID
		}
	case RoleAdmin:
		if filters.Status != "" {
			p.Status = filters.Status
		} else {
			p.AllStatuses = true
		}
	default:
		p.Status = StatusPublished
	}

	return p
}

// CanDisclose decides whether a single fetched post may be disclosed to
// the caller. Existence is the surrounding handler's concern: it must
// check for a missing post (404) before calling CanDisclose (403).
func CanDisclose(caller *Caller, post PublishableResource) bool {
	if post.PublicationStatus() == StatusPublished {
		return true
	}

	if !caller.Authenticated() {
		return false
	}

	switch caller.Role {
	case RoleAdmin:
		return true
	case RoleWriter:
		return caller.Owns(post.OwnerID())
	default:
		return false
	}
}
