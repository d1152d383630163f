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
	"github.com/google/uuid"
	"github.com/sealdb/mysqlstack/xlog"
)

type principalInfo struct {
	ID    string   `json:"id"`
	Name  string   `json:"name"`
	Roles []string `json:"roles"`
}

// UserszHandler impl.
func UserszHandler(log *xlog.Log, dir *directory.Memory) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		userszHandler(log, dir, w, r)
	}
	return f
}

func userszHandler(log *xlog.Log, dir *directory.Memory, w rest.ResponseWriter, r *rest.Request) {
	var users []principalInfo
	for _, id := range dir.FindAllUsers() {
		user, ok := dir.LookupUser(id)
		if !ok {
			continue
		}
		users = append(users, principalInfo{
			ID:    user.ID.String(),
			Name:  user.Name,
			Roles: roleNames(dir, user.Grants.Roles),
		})
	}
	w.WriteJson(users)
}

func roleNames(dir *directory.Memory, ids []uuid.UUID) []string {
	var names []string
	for _, id := range ids {
		if name, ok := dir.ResolveName(id); ok {
			names = append(names, name)
		}
	}
	return names
}
