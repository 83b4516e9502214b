package models

import "fmt"

// Role is a user's access level in the channel. Roles are totally ordered:
// read < write < admin.
type Role string

const (
	ReadRole  Role = "read"
	WriteRole Role = "write"
	AdminRole Role = "admin"
)

// DefaultRole is assigned to every freshly provisioned user.
const DefaultRole = ReadRole

var roleRank = map[Role]int{
	ReadRole:  0,
	WriteRole: 1,
	AdminRole: 2,
}

// Rank returns the position of r in the hierarchy. ok is false for an empty
// or unknown role.
func (r Role) Rank() (rank int, ok bool) {
	rank, ok = roleRank[r]
	return
}

func (r Role) Valid() bool {
	_, ok := roleRank[r]
	return ok
}

// Satisfies reports whether r grants at least the access of required.
// Unknown roles on either side never satisfy anything.
func (r Role) Satisfies(required Role) bool {
	have, ok := r.Rank()
	if !ok {
		return false
	}
	need, ok := required.Rank()
	if !ok {
		return false
	}
	return have >= need
}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
