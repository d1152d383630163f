/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package resolver

import (
	"github.com/sealdb/neoacl/directory"

	"github.com/google/uuid"
	"github.com/sealdb/mysqlstack/xlog"
)

// EnabledRolesInfo is the flattened, transitively expanded role set a
// principal has active: every enabled role id, the subset held with
// admin option, and role names for rendering.
type EnabledRolesInfo struct {
	Current         []uuid.UUID
	Enabled         []uuid.UUID
	WithAdminOption map[uuid.UUID]bool
	Names           map[uuid.UUID]string
}

// IsEnabled returns true if the role is in the expanded set.
func (i *EnabledRolesInfo) IsEnabled(id uuid.UUID) bool {
	for _, e := range i.Enabled {
		if e == id {
			return true
		}
	}
	return false
}

// expandRoles walks the role grant graph breadth-first from the
// directly enabled roles, collecting every transitively granted role
// and its published snapshot. Roles granted with admin option to an
// enabled role are enabled with admin option too. A role id the
// directory no longer knows is skipped: the session degrades to running
// without it instead of failing. The visited set makes the walk
// terminate even on a cyclic graph.
func expandRoles(log *xlog.Log, dir directory.Directory, owner *directory.Grants, current []uuid.UUID) ([]*directory.Role, *EnabledRolesInfo) {
	info := &EnabledRolesInfo{
		WithAdminOption: make(map[uuid.UUID]bool),
		Names:           make(map[uuid.UUID]string),
	}

	type pending struct {
		id          uuid.UUID
		isCurrent   bool
		adminOption bool
	}
	var queue []pending
	for _, id := range current {
		adminOption := owner != nil && owner.HasRoleWithAdminOption(id)
		queue = append(queue, pending{id: id, isCurrent: true, adminOption: adminOption})
	}

	var roles []*directory.Role
	visited := make(map[uuid.UUID]bool)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if visited[next.id] {
			if next.adminOption {
				info.WithAdminOption[next.id] = true
			}
			continue
		}
		role, ok := dir.LookupRole(next.id)
		if !ok {
			log.Warning("resolver.enabled.role[%v].not.found.skipped", next.id)
			continue
		}
		visited[next.id] = true

		roles = append(roles, role)
		info.Enabled = append(info.Enabled, next.id)
		if next.isCurrent {
			info.Current = append(info.Current, next.id)
		}
		if next.adminOption {
			info.WithAdminOption[next.id] = true
		}
		info.Names[next.id] = role.Name

		for _, granted := range role.Grants.Roles {
			queue = append(queue, pending{
				id:          granted,
				adminOption: role.Grants.HasRoleWithAdminOption(granted),
			})
		}
	}
	return roles, info
}
