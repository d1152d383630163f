/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"net/http"

	"github.com/sealdb/neoacl/directory"
	"github.com/sealdb/neoacl/privilege"
	"github.com/sealdb/neoacl/rights"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/sealdb/mysqlstack/xlog"
)

type grantInfo struct {
	Privileges     []string `json:"privileges"`
	PartialRevokes []string `json:"partial-revokes,omitempty"`
	Database       string   `json:"database,omitempty"`
	Table          string   `json:"table,omitempty"`
	Column         string   `json:"column,omitempty"`
	GrantOption    bool     `json:"grant-option,omitempty"`
}

// GrantszHandler impl.
// Reconstructs the grants of one user or role, addressed by name.
func GrantszHandler(log *xlog.Log, dir *directory.Memory, reg *privilege.Registry) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		grantszHandler(log, dir, reg, w, r)
	}
	return f
}

func grantszHandler(log *xlog.Log, dir *directory.Memory, reg *privilege.Registry, w rest.ResponseWriter, r *rest.Request) {
	name := r.PathParam("name")

	var grants *directory.Grants
	if user, ok := dir.FindUser(name); ok {
		grants = &user.Grants
	} else if role, ok := dir.FindRole(name); ok {
		grants = &role.Grants
	} else {
		log.Error("api.v1.grantsz.unknown.entity[%s]", name)
		rest.Error(w, "unknown user or role: "+name, http.StatusNotFound)
		return
	}

	infos := grantRows(reg, grants.Rights, false)
	infos = append(infos, grantRows(reg, grants.GrantOption, true)...)
	w.WriteJson(infos)
}

func grantRows(reg *privilege.Registry, tree *rights.Tree, grantOption bool) []grantInfo {
	var infos []grantInfo
	for _, elem := range tree.Enumerate() {
		info := grantInfo{
			Privileges:  reg.KeywordsFor(elem.Bits),
			Database:    elem.Database,
			Table:       elem.Table,
			Column:      elem.Column,
			GrantOption: grantOption,
		}
		if !elem.PartialRevokeBits.IsEmpty() {
			info.PartialRevokes = reg.KeywordsFor(elem.PartialRevokeBits)
		}
		infos = append(infos, info)
	}
	return infos
}
