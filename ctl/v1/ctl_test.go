/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package v1

import (
	"github.com/sealdb/neoacl/config"
	"github.com/sealdb/neoacl/directory"
	"github.com/sealdb/neoacl/privilege"
	"github.com/sealdb/neoacl/resolver"

	"github.com/sealdb/mysqlstack/xlog"
)

func mockACL() (*xlog.Log, *directory.Memory, *privilege.Registry, *resolver.Resolver) {
	log := xlog.NewStdLog(xlog.Level(xlog.PANIC))
	reg := privilege.NewRegistry()
	conf := config.DefaultAccessConfig()
	dir := directory.NewMemory(log, reg, conf)
	rsv := resolver.NewResolver(log, reg, conf, dir)
	return log, dir, reg, rsv
}
