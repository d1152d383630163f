/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"github.com/sealdb/neoacl/privilege"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/sealdb/mysqlstack/xlog"
)

// PrivilegeszHandler impl.
// Lists the privilege vocabulary.
func PrivilegeszHandler(log *xlog.Log, reg *privilege.Registry) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		privilegeszHandler(log, reg, w, r)
	}
	return f
}

func privilegeszHandler(log *xlog.Log, reg *privilege.Registry, w rest.ResponseWriter, r *rest.Request) {
	w.WriteJson(reg.Keywords())
}
