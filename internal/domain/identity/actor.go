package identity

// Actor is the user performing an action, as seen by authorization checks
type Actor struct {
	UserID     string
	Role       Role
	LocationID string
}

// IsAdmin reports whether the actor holds the administrative role
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// String renders the actor for audit log messages
func (a Actor) String() string {
	return a.UserID + " (" + string(a.Role) + ")"
}
