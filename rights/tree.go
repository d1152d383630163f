/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package rights

import (
	"github.com/sealdb/neoacl/privilege"
)

// node is one path segment of the rights tree: root is the global
// scope, then database, table, column. Invariants: grants is a subset
// of access; access == (inherited &^ partialRevokes) | grants; a node
// with no grants, no partial revokes and no children is redundant and
// gets pruned.
type node struct {
	name           string
	inherited      privilege.BitMask
	grants         privilege.BitMask
	partialRevokes privilege.BitMask
	access         privilege.BitMask
	children       map[string]*node
}

// Tree stores the access rights of one user or role, keyed by
// (database, table, column) path segments. Mutation is not safe for
// concurrent use; published entities clone before mutating and swap.
type Tree struct {
	root *node
}

// NewTree returns an empty tree: no access at any path.
func NewTree() *Tree {
	return &Tree{}
}

// Grant makes bits accessible at path and everywhere below it. A grant
// of bits hidden by a prior partial revoke cancels the revoke instead
// of recording a new explicit grant. Returns true if the tree changed.
// Level legality of bits is the caller's concern, checked against the
// registry before calling.
func (t *Tree) Grant(bits privilege.BitMask, path ...string) bool {
	if bits.IsEmpty() {
		return false
	}
	if t.root == nil {
		t.root = &node{}
	}
	changed := t.root.grant(bits, path)
	if t.root.empty() {
		t.root = nil
	}
	return changed
}

// Revoke removes bits at path. With partialAllowed, bits visible only
// through an ancestor's grant are recorded as partial revokes, blocking
// inheritance for this subtree without touching the broader grant;
// otherwise only explicitly granted bits can be removed. Returns true
// if the tree changed.
func (t *Tree) Revoke(bits privilege.BitMask, partialAllowed bool, path ...string) bool {
	if bits.IsEmpty() || t.root == nil {
		return false
	}
	changed := t.root.revoke(bits, partialAllowed, path)
	if t.root.empty() {
		t.root = nil
	}
	return changed
}

// Access returns the effective mask at path: the deepest existing
// node's access, a missing node inheriting from its nearest existing
// ancestor.
func (t *Tree) Access(path ...string) privilege.BitMask {
	if t.root == nil {
		return 0
	}
	n := t.root
	for _, name := range path {
		child := n.children[name]
		if child == nil {
			return n.access
		}
		n = child
	}
	return n.access
}

// IsGranted returns true if every bit is effective at path.
func (t *Tree) IsGranted(bits privilege.BitMask, path ...string) bool {
	return t.Access(path...).Contains(bits)
}

// IsEmpty returns true if the tree grants nothing and records no
// partial revokes.
func (t *Tree) IsEmpty() bool {
	return t.root == nil
}

// Merge folds another tree into this one, used to combine an enabled
// role's rights into a principal's effective rights. Access masks union
// per path; grants and partial revokes are re-derived afterwards, so
// repeated merges are commutative in their effect on access.
func (t *Tree) Merge(other *Tree) {
	if other == nil || other.root == nil {
		return
	}
	if t.root == nil {
		t.root = other.root.clone()
		return
	}
	t.root.mergeAccess(other.root)
	t.root.inherited = 0
	t.root.recalcFromAccess()
	if t.root.empty() {
		t.root = nil
	}
}

// Equal compares explicit grants and partial revokes per path.
func (t *Tree) Equal(other *Tree) bool {
	if t.root == nil || other == nil || other.root == nil {
		return t.root == nil && (other == nil || other.root == nil)
	}
	return t.root.equal(other.root)
}

// Clone returns a deep copy sharing no nodes with the original.
func (t *Tree) Clone() *Tree {
	if t == nil || t.root == nil {
		return NewTree()
	}
	return &Tree{root: t.root.clone()}
}

func (n *node) grant(bits privilege.BitMask, path []string) bool {
	if len(path) == 0 {
		newBits := bits &^ n.grants
		if newBits == 0 {
			return false
		}
		n.grants |= newBits &^ n.partialRevokes
		n.partialRevokes &^= bits
		n.recalcAccess()
		return true
	}
	child := n.getChild(path[0])
	changed := child.grant(bits, path[1:])
	n.pruneChild(path[0])
	return changed
}

func (n *node) revoke(bits privilege.BitMask, partialAllowed bool, path []string) bool {
	if len(path) == 0 {
		if partialAllowed {
			// Anything visible here can be revoked, even if granted by
			// an ancestor.
			bits &= n.access
		} else {
			bits &= n.grants
		}
		if bits == 0 {
			return false
		}
		if partialAllowed {
			n.partialRevokes |= bits &^ n.grants
		}
		n.grants &^= bits
		n.recalcAccess()
		return true
	}
	var child *node
	if partialAllowed {
		child = n.getChild(path[0])
	} else {
		child = n.children[path[0]]
		if child == nil {
			return false
		}
	}
	changed := child.revoke(bits, partialAllowed, path[1:])
	n.pruneChild(path[0])
	return changed
}

func (n *node) getChild(name string) *node {
	if child := n.children[name]; child != nil {
		return child
	}
	if n.children == nil {
		n.children = make(map[string]*node)
	}
	child := &node{
		name:      name,
		inherited: n.access,
		access:    n.access,
	}
	n.children[name] = child
	return child
}

func (n *node) pruneChild(name string) {
	child := n.children[name]
	if child == nil || !child.empty() {
		return
	}
	delete(n.children, name)
	if len(n.children) == 0 {
		n.children = nil
	}
}

func (n *node) empty() bool {
	return n.grants == 0 && n.partialRevokes == 0 && len(n.children) == 0
}

// recalcAccess re-derives the effective mask here and pushes it down to
// every descendant, pruning descendants made redundant.
func (n *node) recalcAccess() {
	n.partialRevokes &= n.inherited
	n.access = (n.inherited &^ n.partialRevokes) | n.grants
	for name, child := range n.children {
		child.inherited = n.access
		child.recalcAccess()
		n.pruneChild(name)
	}
}

// mergeAccess unions the other subtree's access into this one. Paths
// present only in other get nodes created here; paths present only here
// absorb other's nearest ancestor access all the way down.
func (n *node) mergeAccess(other *node) {
	for name, otherChild := range other.children {
		n.getChild(name).mergeAccess(otherChild)
	}
	n.access |= other.access
	for name, child := range n.children {
		if other.children[name] == nil {
			child.addAccess(other.access)
		}
	}
}

func (n *node) addAccess(bits privilege.BitMask) {
	n.access |= bits
	for _, child := range n.children {
		child.addAccess(bits)
	}
}

// recalcFromAccess rebuilds grants and partial revokes from the merged
// access masks: inherited coverage is authoritative after a merge and
// grants become a derived quantity.
func (n *node) recalcFromAccess() {
	n.grants = n.access &^ n.inherited
	n.partialRevokes = n.inherited &^ n.access
	for name, child := range n.children {
		child.inherited = n.access
		child.recalcFromAccess()
		n.pruneChild(name)
	}
}

func (n *node) equal(other *node) bool {
	if n.grants != other.grants || n.partialRevokes != other.partialRevokes {
		return false
	}
	if len(n.children) != len(other.children) {
		return false
	}
	for name, child := range n.children {
		otherChild := other.children[name]
		if otherChild == nil || !child.equal(otherChild) {
			return false
		}
	}
	return true
}

func (n *node) clone() *node {
	c := &node{
		name:           n.name,
		inherited:      n.inherited,
		grants:         n.grants,
		partialRevokes: n.partialRevokes,
		access:         n.access,
	}
	if n.children != nil {
		c.children = make(map[string]*node, len(n.children))
		for name, child := range n.children {
			c.children[name] = child.clone()
		}
	}
	return c
}
