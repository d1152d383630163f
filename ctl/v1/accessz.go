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
	"github.com/sealdb/neoacl/resolver"

	"github.com/ant0ine/go-json-rest/rest"
	"github.com/google/uuid"
	"github.com/sealdb/mysqlstack/xlog"
)

type accessProbe struct {
	User               string   `json:"user"`
	Roles              []string `json:"roles"`
	Privileges         []string `json:"privileges"`
	Database           string   `json:"database"`
	Table              string   `json:"table"`
	Column             string   `json:"column"`
	Readonly           int      `json:"readonly"`
	AllowDDL           bool     `json:"allow-ddl"`
	AllowIntrospection bool     `json:"allow-introspection"`
	GrantOption        bool     `json:"grant-option"`
}

type accessProbeReply struct {
	Granted bool     `json:"granted"`
	User    string   `json:"user"`
	Roles   []string `json:"roles,omitempty"`
}

// AccesszHandler impl.
// Resolves a session for the posted parameters and runs one privilege
// check against it, the way a query would.
func AccesszHandler(log *xlog.Log, dir *directory.Memory, reg *privilege.Registry, rsv *resolver.Resolver) rest.HandlerFunc {
	f := func(w rest.ResponseWriter, r *rest.Request) {
		accesszHandler(log, dir, reg, rsv, w, r)
	}
	return f
}

func accesszHandler(log *xlog.Log, dir *directory.Memory, reg *privilege.Registry, rsv *resolver.Resolver, w rest.ResponseWriter, r *rest.Request) {
	probe := accessProbe{}
	if err := r.DecodeJsonPayload(&probe); err != nil {
		log.Error("api.v1.accessz.decode.body.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, ok := dir.FindUser(probe.User)
	if !ok {
		log.Error("api.v1.accessz.unknown.user[%s]", probe.User)
		rest.Error(w, "unknown user: "+probe.User, http.StatusNotFound)
		return
	}

	bits, err := reg.BitsForMany(probe.Privileges...)
	if err != nil {
		log.Error("api.v1.accessz.parse.privileges.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var roles []uuid.UUID
	for _, name := range probe.Roles {
		role, ok := dir.FindRole(name)
		if !ok {
			log.Error("api.v1.accessz.unknown.role[%s]", name)
			rest.Error(w, "unknown role: "+name, http.StatusNotFound)
			return
		}
		roles = append(roles, role.ID)
	}

	access, err := rsv.Resolve(resolver.Params{
		UserID:             user.ID,
		Roles:              roles,
		Readonly:           probe.Readonly,
		AllowDDL:           probe.AllowDDL,
		AllowIntrospection: probe.AllowIntrospection,
		CurrentDatabase:    probe.Database,
	})
	if err != nil {
		log.Error("api.v1.accessz.resolve.error:%+v", err)
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	path := probePath(probe)
	check := access.Check
	if probe.GrantOption {
		check = access.CheckGrantOption
	}
	if err := check(bits, path...); err != nil {
		if denied, ok := err.(*resolver.AccessDeniedError); ok {
			rest.Error(w, denied.SQLError().Error(), http.StatusForbidden)
			return
		}
		rest.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	reply := accessProbeReply{Granted: true, User: access.UserName()}
	for _, id := range access.EnabledRoles().Enabled {
		reply.Roles = append(reply.Roles, access.EnabledRoles().Names[id])
	}
	w.WriteJson(&reply)
}

func probePath(probe accessProbe) []string {
	var path []string
	if probe.Database == "" {
		return path
	}
	path = append(path, probe.Database)
	if probe.Table == "" {
		return path
	}
	path = append(path, probe.Table)
	if probe.Column != "" {
		path = append(path, probe.Column)
	}
	return path
}
