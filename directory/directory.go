/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package directory

import (
	"github.com/google/uuid"
)

// Directory is the read side of the entity store the resolver consumes:
// lookups by id and change subscriptions. Implementations must be
// thread-safe; Lookup* return published immutable snapshots.
type Directory interface {
	LookupUser(id uuid.UUID) (*User, bool)
	LookupRole(id uuid.UUID) (*Role, bool)
	ResolveName(id uuid.UUID) (string, bool)

	// Subscribe registers fn to run whenever a change to the entity is
	// committed. fn runs on the committing goroutine and must not
	// block. The returned subscription stays live until Close.
	Subscribe(id uuid.UUID, fn func(id uuid.UUID)) *Subscription
}

// Subscription is a handle on a registered change callback.
type Subscription struct {
	close func()
}

// Close unregisters the callback. Safe to call more than once.
func (s *Subscription) Close() {
	if s.close != nil {
		s.close()
		s.close = nil
	}
}
