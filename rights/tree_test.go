/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package rights

import (
	"testing"

	"github.com/sealdb/neoacl/privilege"

	"github.com/stretchr/testify/assert"
)

var testReg = privilege.NewRegistry()

func bits(t *testing.T, keywords ...string) privilege.BitMask {
	b, err := testReg.BitsForMany(keywords...)
	assert.Nil(t, err)
	return b
}

func TestTreeGrant(t *testing.T) {
	sel := bits(t, "SELECT")
	ins := bits(t, "INSERT")

	tree := NewTree()
	assert.True(t, tree.IsEmpty())
	assert.Equal(t, privilege.BitMask(0), tree.Access("db1", "t1"))

	assert.True(t, tree.Grant(sel, "db1"))
	assert.True(t, tree.IsGranted(sel, "db1"))
	assert.True(t, tree.IsGranted(sel, "db1", "t1"))
	assert.True(t, tree.IsGranted(sel, "db1", "t1", "c1"))
	assert.False(t, tree.IsGranted(sel, "db2"))
	assert.False(t, tree.IsGranted(ins, "db1"))

	// Idempotence: a second identical grant changes nothing.
	assert.False(t, tree.Grant(sel, "db1"))
	second := tree.Clone()
	second.Grant(sel, "db1")
	assert.True(t, tree.Equal(second))
}

func TestTreeGrantGlobal(t *testing.T) {
	sel := bits(t, "SELECT")

	tree := NewTree()
	assert.True(t, tree.Grant(sel))
	assert.True(t, tree.IsGranted(sel))
	assert.True(t, tree.IsGranted(sel, "anydb", "anytable"))
}

func TestTreeRevoke(t *testing.T) {
	sel := bits(t, "SELECT")
	ins := bits(t, "INSERT")

	tree := NewTree()
	tree.Grant(sel|ins, "db1", "t1")
	assert.True(t, tree.Revoke(ins, false, "db1", "t1"))
	assert.True(t, tree.IsGranted(sel, "db1", "t1"))
	assert.False(t, tree.IsGranted(ins, "db1", "t1"))

	// Non-partial revoke touches explicit grants only: revoking at a
	// narrower path than the grant is a no-op.
	assert.False(t, tree.Revoke(sel, false, "db1", "t1", "c1"))
	assert.True(t, tree.IsGranted(sel, "db1", "t1", "c1"))

	// Revoking everything empties and prunes the tree.
	assert.True(t, tree.Revoke(sel, false, "db1", "t1"))
	assert.True(t, tree.IsEmpty())
}

func TestTreeRevokeGrantRestores(t *testing.T) {
	sel := bits(t, "SELECT")
	ins := bits(t, "INSERT")

	tree := NewTree()
	tree.Grant(sel|ins, "db1")
	before := tree.Access("db1")

	assert.True(t, tree.Revoke(sel, false, "db1"))
	assert.True(t, tree.Grant(sel, "db1"))
	assert.Equal(t, before, tree.Access("db1"))
	assert.True(t, tree.IsGranted(ins, "db1"))
}

func TestTreePartialRevokeIsolation(t *testing.T) {
	sel := bits(t, "SELECT")

	tree := NewTree()
	tree.Grant(sel, "db1")
	assert.True(t, tree.Revoke(sel, true, "db1", "t1"))

	// t1 lost SELECT, its sibling kept it.
	assert.Equal(t, privilege.BitMask(0), tree.Access("db1", "t1")&sel)
	assert.Equal(t, sel, tree.Access("db1", "t2")&sel)
	assert.Equal(t, sel, tree.Access("db1")&sel)

	// The revoke is recorded, not silently dropped.
	elements := tree.Enumerate()
	assert.Equal(t, 2, len(elements))
	assert.Equal(t, sel, elements[0].Bits)
	assert.Equal(t, "db1", elements[0].Database)
	assert.Equal(t, sel, elements[1].PartialRevokeBits)
	assert.Equal(t, "t1", elements[1].Table)
}

func TestTreePartialRevokeRestoration(t *testing.T) {
	sel := bits(t, "SELECT")

	tree := NewTree()
	tree.Grant(sel, "db1")
	tree.Revoke(sel, true, "db1", "t1")

	// Re-granting at the table cancels exactly that table's revoke.
	assert.True(t, tree.Grant(sel, "db1", "t1"))
	assert.True(t, tree.IsGranted(sel, "db1", "t1"))
	assert.True(t, tree.IsGranted(sel, "db1", "t2"))

	// Cancelling the partial revoke restores pure inheritance: the
	// node becomes redundant and is pruned.
	assert.Equal(t, 1, len(tree.Enumerate()))
}

func TestTreePartialRevokeDeep(t *testing.T) {
	sel := bits(t, "SELECT")

	tree := NewTree()
	tree.Grant(sel)
	tree.Revoke(sel, true, "db1")

	assert.False(t, tree.IsGranted(sel, "db1"))
	assert.False(t, tree.IsGranted(sel, "db1", "t1"))
	assert.True(t, tree.IsGranted(sel, "db2", "t1"))
	assert.True(t, tree.IsGranted(sel))
}

func TestTreeGrantPropagatesBelowRevoke(t *testing.T) {
	sel := bits(t, "SELECT")
	ins := bits(t, "INSERT")

	tree := NewTree()
	tree.Grant(sel, "db1")
	tree.Revoke(sel, true, "db1", "t1")
	tree.Grant(ins, "db1", "t1", "c1")

	// A broader grant reaches every descendant, including subtrees
	// shadowed by a partial revoke of another bit.
	tree.Grant(ins, "db1")
	assert.True(t, tree.IsGranted(ins, "db1", "t1"))
	assert.True(t, tree.IsGranted(ins, "db1", "t1", "c1"))
	assert.False(t, tree.IsGranted(sel, "db1", "t1"))
}

func TestTreeMergeCommutative(t *testing.T) {
	sel := bits(t, "SELECT")
	ins := bits(t, "INSERT")
	del := bits(t, "DELETE")

	r1 := NewTree()
	r1.Grant(sel, "db1")
	r1.Revoke(sel, true, "db1", "t1")
	r1.Grant(del, "db1", "t3", "c1")

	r2 := NewTree()
	r2.Grant(ins, "db1", "t1")
	r2.Grant(sel, "db2")

	ab := NewTree()
	ab.Merge(r1)
	ab.Merge(r2)

	ba := NewTree()
	ba.Merge(r2)
	ba.Merge(r1)

	paths := [][]string{
		{}, {"db1"}, {"db2"},
		{"db1", "t1"}, {"db1", "t2"}, {"db1", "t3"}, {"db2", "t1"},
		{"db1", "t1", "c1"}, {"db1", "t3", "c1"},
	}
	for _, path := range paths {
		assert.Equal(t, ab.Access(path...), ba.Access(path...), path)
	}
}

func TestTreeMergeDeepInheritance(t *testing.T) {
	sel := bits(t, "SELECT")
	ins := bits(t, "INSERT")

	// The user tree has a deep node; the role grants broadly. The deep
	// node must absorb the role's access too.
	user := NewTree()
	user.Grant(ins, "db1", "t1", "c1")

	role := NewTree()
	role.Grant(sel)

	user.Merge(role)
	assert.True(t, user.IsGranted(sel, "db1", "t1", "c1"))
	assert.True(t, user.IsGranted(sel|ins, "db1", "t1", "c1"))
	assert.True(t, user.IsGranted(sel, "db9"))
}

func TestTreeMergeKeepsPartialRevokeSemantics(t *testing.T) {
	sel := bits(t, "SELECT")

	user := NewTree()
	user.Grant(sel, "db1")
	user.Revoke(sel, true, "db1", "t1")

	// A role granting SELECT on exactly that table lifts the revoke in
	// the merged result.
	role := NewTree()
	role.Grant(sel, "db1", "t1")

	merged := user.Clone()
	merged.Merge(role)
	assert.True(t, merged.IsGranted(sel, "db1", "t1"))
	assert.True(t, merged.IsGranted(sel, "db1", "t2"))

	// The user's own tree is untouched.
	assert.False(t, user.IsGranted(sel, "db1", "t1"))
}

func TestTreeMergeIntoEmpty(t *testing.T) {
	sel := bits(t, "SELECT")

	role := NewTree()
	role.Grant(sel, "db1")

	merged := NewTree()
	merged.Merge(role)
	assert.True(t, merged.IsGranted(sel, "db1"))

	// Deep copy: mutating the merge result leaves the role alone.
	merged.Grant(sel, "db2")
	assert.False(t, role.IsGranted(sel, "db2"))
}

func TestTreeEqualAndClone(t *testing.T) {
	sel := bits(t, "SELECT")
	ins := bits(t, "INSERT")

	a := NewTree()
	a.Grant(sel, "db1")
	a.Revoke(sel, true, "db1", "t1")

	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Grant(ins, "db1")
	assert.False(t, a.Equal(b))

	assert.True(t, NewTree().Equal(NewTree()))
	assert.False(t, a.Equal(NewTree()))
}

func TestTreeEnumerate(t *testing.T) {
	sel := bits(t, "SELECT")
	ins := bits(t, "INSERT")

	tree := NewTree()
	tree.Grant(sel|ins)
	tree.Grant(ins, "db1", "t1")
	tree.Revoke(ins, true, "db2")

	elements := tree.Enumerate()
	assert.Equal(t, 3, len(elements))

	assert.Equal(t, sel|ins, elements[0].Bits)
	assert.Equal(t, "", elements[0].Database)

	// Granting an already inherited bit still records it explicitly.
	assert.Equal(t, "db1", elements[1].Database)
	assert.Equal(t, "t1", elements[1].Table)
	assert.Equal(t, ins, elements[1].Bits)
	assert.Equal(t, privilege.BitMask(0), elements[1].PartialRevokeBits)

	assert.Equal(t, "db2", elements[2].Database)
	assert.Equal(t, ins, elements[2].PartialRevokeBits)

	assert.Nil(t, NewTree().Enumerate())
}
