package domain

import (
	"sort"

	"github.com/bwmarrin/snowflake"
	"github.com/cockroachdb/errors"
)

type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleReader    Role = "READER"
	RoleTreasurer Role = "TREASURER"
	RolePresident Role = "PRESIDENT"
)

var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrUserNotFound    = errors.New("user_not_found")
	ErrUnknownCode     = errors.New("unknown_permission_code")
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleReader, RoleTreasurer, RolePresident:
		return true
	}
	return false
}

func Roles() []Role {
	return []Role{RoleAdmin, RoleReader, RoleTreasurer, RolePresident}
}

// Actor is the authenticated caller of a domain operation together with
// the capabilities resolved for it. Every service method that changes or
// reveals committee data takes one.
type Actor struct {
	UserID      snowflake.ID
	Name        string
	Role        Role
	permissions map[Permission]struct{}
}

func NewActor(userID snowflake.ID, name string, role Role, perms []Permission) Actor {
	set := make(map[Permission]struct{}, len(perms))
	for _, p := range perms {
		set[p] = struct{}{}
	}
	return Actor{UserID: userID, Name: name, Role: role, permissions: set}
}

// SystemActor is used by the CLI and bootstrap code.
func SystemActor() Actor {
	perms := make([]Permission, 0, len(Catalog()))
	for _, e := range Catalog() {
		perms = append(perms, e.Code)
	}
	return NewActor(0, "system", RoleAdmin, perms)
}

func (a Actor) Authenticated() bool {
	return a.Role != ""
}

func (a Actor) Can(p Permission) bool {
	_, ok := a.permissions[p]
	return ok
}

func (a Actor) Require(p Permission) error {
	if !a.Authenticated() {
		return ErrUnauthenticated
	}
	if !a.Can(p) {
		return errors.Wrapf(ErrForbidden, "missing %s", p)
	}
	return nil
}

// Permissions returns the capability set sorted by code.
func (a Actor) Permissions() []Permission {
	out := make([]Permission, 0, len(a.permissions))
	for p := range a.permissions {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
