package identity

// Role is the capability tier of a user
type Role string

const (
	RoleAdmin         Role = "ADMIN"
	RoleBranchManager Role = "BRANCH_MANAGER"
	RoleFieldWorker   Role = "FIELD_WORKER"
)

// IsValid checks if the role is a valid Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleBranchManager, RoleFieldWorker:
		return true
	}
	return false
}

// String returns the string representation of Role
func (r Role) String() string {
	return string(r)
}

// AllRoles returns every role in descending authority
func AllRoles() []Role {
	return []Role{RoleAdmin, RoleBranchManager, RoleFieldWorker}
}
