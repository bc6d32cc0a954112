package access

// Role represents a caller's role in the system
type Role string

const (
	RoleReader Role = "Reader" // Can read published posts and comment on them
	RoleWriter Role = "Writer" // Can create posts and manage their own
	RoleAdmin  Role = "Admin"  // Can manage all posts
)

// Valid reports whether the role is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleReader, RoleWriter, RoleAdmin:
		return true
	}
	return false
}

// Status represents the publication status of a post
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
)

// Valid reports whether the status is one of the known statuses
func (s Status) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Action represents an action that can be performed on a resource
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Caller holds the authenticated caller context for a single request.
// A nil *Caller means the request is anonymous.
type Caller struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// Authenticated reports whether the caller carries a verified identity
func (c *Caller) Authenticated() bool {
	return c != nil && c.ID != ""
}

// Owns reports whether the caller is the owner of the given entity
func (c *Caller) Owns(ownerID string) bool {
	return c.Authenticated() && c.ID == ownerID
}

// Resource is an entity with a single owning identity
type Resource interface {
	OwnerID() string
}

// PublishableResource is a resource with a publication status
type PublishableResource interface {
	Resource
	PublicationStatus() Status
}
