/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package privilege

// Level is the object granularity a privilege applies to, ordered from
// the coarsest (global) to the finest (column). A leaf privilege's level
// is the finest scope it may legally be granted at.
type Level int

const (
	GlobalLevel Level = iota
	DatabaseLevel
	TableLevel
	ColumnLevel
)

// LevelOfPath maps a (database, table, column) path length to the level
// a grant at that path targets.
func LevelOfPath(segments int) Level {
	switch segments {
	case 0:
		return GlobalLevel
	case 1:
		return DatabaseLevel
	case 2:
		return TableLevel
	default:
		return ColumnLevel
	}
}

func (l Level) String() string {
	switch l {
	case GlobalLevel:
		return "global"
	case DatabaseLevel:
		return "database"
	case TableLevel:
		return "table"
	case ColumnLevel:
		return "column"
	}
	return "unknown"
}
