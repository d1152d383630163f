/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package directory

import (
	"github.com/sealdb/neoacl/rights"

	"github.com/google/uuid"
)

// Grants is the privilege state attached to a user or role: the rights
// tree, the parallel tree of rights held with grant option, and the
// granted roles (with the subset granted with admin option).
type Grants struct {
	Rights               *rights.Tree
	GrantOption          *rights.Tree
	Roles                []uuid.UUID
	RolesWithAdminOption []uuid.UUID
}

func newGrants() Grants {
	return Grants{
		Rights:      rights.NewTree(),
		GrantOption: rights.NewTree(),
	}
}

func (g *Grants) clone() Grants {
	c := Grants{
		Rights:      g.Rights.Clone(),
		GrantOption: g.GrantOption.Clone(),
	}
	c.Roles = append(c.Roles, g.Roles...)
	c.RolesWithAdminOption = append(c.RolesWithAdminOption, g.RolesWithAdminOption...)
	return c
}

func (g *Grants) HasRole(id uuid.UUID) bool {
	for _, r := range g.Roles {
		if r == id {
			return true
		}
	}
	return false
}

func (g *Grants) HasRoleWithAdminOption(id uuid.UUID) bool {
	for _, r := range g.RolesWithAdminOption {
		if r == id {
			return true
		}
	}
	return false
}

// User is a principal privileges can be attached to. Published users
// are immutable: every mutation clones, edits the clone and swaps it
// in, so a reader holding an old snapshot never sees a torn tree.
type User struct {
	ID     uuid.UUID
	Name   string
	Grants Grants
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	return &User{ID: u.ID, Name: u.Name, Grants: u.Grants.clone()}
}

// Role is a named bundle of grants a user (or another role) can enable.
// Same immutability rules as User.
type Role struct {
	ID     uuid.UUID
	Name   string
	Grants Grants
}

// Clone returns a deep copy of the role.
func (r *Role) Clone() *Role {
	return &Role{ID: r.ID, Name: r.Name, Grants: r.Grants.clone()}
}
