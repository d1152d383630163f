/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package privilege

// BitMask is a fixed-width set of privilege bits. One bit per leaf
// privilege, at most 64 leaves.
type BitMask uint64

// Contains returns true if every bit of other is set in m.
func (m BitMask) Contains(other BitMask) bool {
	return m&other == other
}

// IsEmpty returns true if no bit is set.
func (m BitMask) IsEmpty() bool {
	return m == 0
}
