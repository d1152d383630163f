/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"github.com/sealdb/neoacl/directory"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/sealdb/mysqlstack/xlog"
)

// RoleszHandler impl.
func RoleszHandler(log *xlog.Log, dir *directory.Memory) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		roleszHandler(log, dir, w, r)
	}
	return f
}

func roleszHandler(log *xlog.Log, dir *directory.Memory, w rest.ResponseWriter, r *rest.Request) {
	var roles []principalInfo
	for _, id := range dir.FindAllRoles() {
		role, ok := dir.LookupRole(id)
		if !ok {
			continue
		}
		roles = append(roles, principalInfo{
			ID:    role.ID.String(),
			Name:  role.Name,
			Roles: roleNames(dir, role.Grants.Roles),
		})
	}
	w.WriteJson(roles)
}
