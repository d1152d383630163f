/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package rights

import (
	"sort"

	"github.com/sealdb/neoacl/privilege"
)

// Element is one row of an enumerated tree: the explicit grants and
// recorded partial revokes at a single path. Used by SHOW GRANTS style
// consumers to reconstruct grant statements; rendering is theirs.
type Element struct {
	Bits              privilege.BitMask `json:"bits"`
	PartialRevokeBits privilege.BitMask `json:"partial-revoke-bits"`
	Database          string            `json:"database"`
	Table             string            `json:"table"`
	Column            string            `json:"column"`
}

// Enumerate lists every node carrying explicit grants or partial
// revokes, ordered by path for deterministic output.
func (t *Tree) Enumerate() []Element {
	if t.root == nil {
		return nil
	}
	var elements []Element
	var path [3]string
	var walk func(n *node, depth int)
	walk = func(n *node, depth int) {
		if n.grants != 0 || n.partialRevokes != 0 {
			e := Element{Bits: n.grants, PartialRevokeBits: n.partialRevokes}
			if depth > 0 {
				e.Database = path[0]
			}
			if depth > 1 {
				e.Table = path[1]
			}
			if depth > 2 {
				e.Column = path[2]
			}
			elements = append(elements, e)
		}
		if depth == len(path) {
			return
		}
		names := make([]string, 0, len(n.children))
		for name := range n.children {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			path[depth] = name
			walk(n.children[name], depth+1)
		}
	}
	walk(t.root, 0)
	return elements
}
