// Package roles maps a privilege tier to the capabilities it grants.
// All functions are pure: a role value alone decides the answer.
package roles

// Role is a privilege tier, ordered by level.
type Role string

const (
	RoleViewer     Role = "viewer"
	RoleEditor     Role = "editor"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

var roleLevels = map[Role]int{
	RoleViewer:     0,
	RoleEditor:     1,
	RoleAdmin:      2,
	RoleSuperadmin: 3,
}

// ParseRole resolves a stored role string, defaulting to viewer for unknown
// or empty values (lowest privilege until the profile is loaded).
func ParseRole(s string) Role {
	r := Role(s)
	if _, ok := roleLevels[r]; !ok {
		return RoleViewer
	}
	return r
}

// Level returns the privilege level of a role. Unknown roles rank as viewer.
func (r Role) Level() int {
	if lvl, ok := roleLevels[r]; ok {
		return lvl
	}
	return roleLevels[RoleViewer]
}

// AtLeast reports whether r holds at least the privilege of other.
func (r Role) AtLeast(other Role) bool {
	return r.Level() >= other.Level()
}

// CanEditDirectly reports whether a role may mutate locations without going
// through the suggestion workflow.
func CanEditDirectly(r Role) bool {
	return r.AtLeast(RoleEditor)
}

// CanModerate reports whether a role may approve/reject suggestions,
// hard-delete locations, or reset the map.
func CanModerate(r Role) bool {
	return r.AtLeast(RoleAdmin)
}

// CanChangeRole reports whether actor may change target's role. Only a
// superadmin may, and never their own.
func CanChangeRole(actor Role, actorID, targetID string) bool {
	return actor == RoleSuperadmin && actorID != targetID
}

// Actor is the acting identity a service checks policy against. The role is
// resolved from the profile record, defaulting to viewer while unresolved.
type Actor struct {
	ID       string
	Username string
	Role     Role
}
