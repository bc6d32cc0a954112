package access

// grant is a single cell of the permission matrix
type grant int

const (
	denied   grant = iota
	allowed        // allowed regardless of ownership
	ownOnly        // allowed only when the caller owns the entity
)

// postMatrix is the role x action permission table for posts. Create has
// no ownership dimension (a new post has no prior owner); update and
// delete are owner-scoped for Writers and unconditional for Admins.
var postMatrix = map[Role]map[Action]grant{
	RoleReader: {
		ActionCreate: denied,
		ActionUpdate: denied,
		ActionDelete: denied,
	},
	RoleWriter: {
		ActionCreate: allowed,
		ActionUpdate: ownOnly,
		ActionDelete: ownOnly,
	},
	RoleAdmin: {
		ActionCreate: allowed,
		ActionUpdate: allowed,
		ActionDelete: allowed,
	},
}

// commentMatrix is the role x action permission table for comments. Any
// authenticated caller may comment; deletion is owner-only for every
// role. Admins deliberately get no delete override here, asymmetric with
// posts. Flagged with stakeholders as a probable inconsistency; kept
// until they decide otherwise.
var commentMatrix = map[Role]map[Action]grant{
	RoleReader: {
		ActionCreate: allowed,
		ActionDelete: ownOnly,
	},
	RoleWriter: {
		ActionCreate: allowed,
		ActionDelete: ownOnly,
	},
	RoleAdmin: {
		ActionCreate: allowed,
		ActionDelete: ownOnly,
	},
}

// AuthorizePostWrite decides whether the caller may perform a mutating
// action on a post. For ActionCreate, post may be nil.
func AuthorizePostWrite(caller *Caller, action Action, post Resource) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}

	switch postMatrix[caller.Role][action] {
	case allowed:
		return nil
	case ownOnly:
		if post != nil && caller.Owns(post.OwnerID()) {
			return nil
		}
	}

	return ErrAccessDenied
}

// AuthorizeCommentWrite decides whether the caller may perform a mutating
// action on a comment under the given parent post.
//
// Creation carries a cross-entity precondition: the parent post must
// exist (ErrNotFound otherwise) and be published (ErrInvalidState
// otherwise — a precondition failure, not a denial). The precondition is
// checked once against the fetched parent, not transactionally; a
// concurrent unpublish between check and insert is accepted.
func AuthorizeCommentWrite(caller *Caller, action Action, comment Resource, parent PublishableResource) error {
	if !caller.Authenticated() {
		return ErrUnauthenticated
	}

	switch commentMatrix[caller.Role][action] {
	case allowed:
		if action == ActionCreate {
			if parent == nil {
				return ErrNotFound
			}
			if parent.PublicationStatus() != StatusPublished {
				return ErrInvalidState
			}
		}
		return nil
	case ownOnly:
		if comment != nil && caller.Owns(comment.OwnerID()) {
			return nil
		}
	}

	return ErrAccessDenied
}
