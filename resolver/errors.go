/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package resolver

import (
	"fmt"
	"strings"

	"github.com/sealdb/neoacl/privilege"

	"github.com/sealdb/mysqlstack/sqldb"
)

// AccessDeniedError carries the minimal missing privilege set and the
// object path, enough to render "not enough privileges, need GRANT
// SELECT, INSERT ON db.table".
type AccessDeniedError struct {
	User        string
	Missing     privilege.BitMask
	Keywords    []string
	Path        []string
	GrantOption bool
}

func (e *AccessDeniedError) Error() string {
	what := strings.Join(e.Keywords, ", ")
	if e.GrantOption {
		what += " WITH GRANT OPTION"
	}
	return fmt.Sprintf("%s: not enough privileges. to perform this operation you should have GRANT %s ON %s",
		e.User, what, FormatPath(e.Path))
}

// SQLError renders the denial as the MySQL wire error.
func (e *AccessDeniedError) SQLError() *sqldb.SQLError {
	return sqldb.NewSQLError(sqldb.ER_SPECIFIC_ACCESS_DENIED_ERROR, e.Error())
}

// FormatPath renders zero to three path segments the way grant targets
// are written: "*.*", "db.*", "db.table" or "db.table(column)".
func FormatPath(path []string) string {
	switch len(path) {
	case 0:
		return "*.*"
	case 1:
		return path[0] + ".*"
	case 2:
		return path[0] + "." + path[1]
	default:
		return fmt.Sprintf("%s.%s(%s)", path[0], path[1], path[2])
	}
}
