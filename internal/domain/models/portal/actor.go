package portal

// Actor is the authenticated caller of an operation.
// It is passed explicitly to every service call; nothing reads it from
// ambient request state below the handler layer.
type Actor struct {
	ID   string `json:"id"`
	Role Role   `json:"role"`
}

// IsAdmin reports whether the actor has the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
