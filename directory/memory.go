/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package directory

import (
	"sort"
	"sync"

	"github.com/sealdb/neoacl/config"
	"github.com/sealdb/neoacl/privilege"

	"github.com/google/uuid"
	"github.com/juju/errors"
	"github.com/sealdb/mysqlstack/xlog"
)

// ErrRoleCycle is returned when a role grant would make a role its own
// ancestor.
var ErrRoleCycle = errors.New("role.grant.would.create.a.cycle")

// Memory is the in-memory entity directory. The GRANT/REVOKE statement
// layer mutates it; the resolver reads it and subscribes to changes.
// Every mutation clones the published entity, edits the clone and swaps
// it in under the lock, then notifies subscribers on the committing
// goroutine.
type Memory struct {
	log     *xlog.Log
	reg     *privilege.Registry
	conf    *config.AccessConfig
	mu      sync.RWMutex
	users   map[uuid.UUID]*User
	roles   map[uuid.UUID]*Role
	subs    map[uuid.UUID]map[uint64]func(id uuid.UUID)
	nextSub uint64
}

// NewMemory creates an empty directory.
func NewMemory(log *xlog.Log, reg *privilege.Registry, conf *config.AccessConfig) *Memory {
	return &Memory{
		log:   log,
		reg:   reg,
		conf:  conf,
		users: make(map[uuid.UUID]*User),
		roles: make(map[uuid.UUID]*Role),
		subs:  make(map[uuid.UUID]map[uint64]func(id uuid.UUID)),
	}
}

// CreateUser adds a user with no grants. The name must be unused.
func (m *Memory) CreateUser(name string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findByNameLocked(name) != uuid.Nil {
		return nil, errors.Errorf("directory.entity.name.already.exists[%s]", name)
	}
	user := &User{ID: uuid.New(), Name: name, Grants: newGrants()}
	m.users[user.ID] = user
	m.log.Info("directory.create.user[%s].id[%v]", name, user.ID)
	return user, nil
}

// CreateRole adds a role with no grants. The name must be unused.
func (m *Memory) CreateRole(name string) (*Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findByNameLocked(name) != uuid.Nil {
		return nil, errors.Errorf("directory.entity.name.already.exists[%s]", name)
	}
	role := &Role{ID: uuid.New(), Name: name, Grants: newGrants()}
	m.roles[role.ID] = role
	m.log.Info("directory.create.role[%s].id[%v]", name, role.ID)
	return role, nil
}

// Drop removes a user or role and notifies its subscribers. Dangling
// references from other entities' role lists are left in place; readers
// treat a vanished role as disabled.
func (m *Memory) Drop(id uuid.UUID) error {
	m.mu.Lock()
	if _, ok := m.users[id]; ok {
		delete(m.users, id)
	} else if _, ok := m.roles[id]; ok {
		delete(m.roles, id)
	} else {
		m.mu.Unlock()
		return errors.Errorf("directory.unknown.entity[%v]", id)
	}
	subs := m.subscribersLocked(id)
	m.mu.Unlock()
	m.notify(id, subs)
	return nil
}

// LookupUser returns the published snapshot of a user.
func (m *Memory) LookupUser(id uuid.UUID) (*User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	return user, ok
}

// LookupRole returns the published snapshot of a role.
func (m *Memory) LookupRole(id uuid.UUID) (*Role, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.roles[id]
	return role, ok
}

// FindUser looks a user up by name.
func (m *Memory) FindUser(name string) (*User, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Name == name {
			return user, true
		}
	}
	return nil, false
}

// FindRole looks a role up by name.
func (m *Memory) FindRole(name string) (*Role, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, role := range m.roles {
		if role.Name == name {
			return role, true
		}
	}
	return nil, false
}

// FindAllUsers returns the ids of all users, sorted for deterministic
// iteration.
func (m *Memory) FindAllUsers() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// FindAllRoles returns the ids of all roles, sorted.
func (m *Memory) FindAllRoles() []uuid.UUID {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]uuid.UUID, 0, len(m.roles))
	for id := range m.roles {
		ids = append(ids, id)
	}
	sortIDs(ids)
	return ids
}

// ResolveName returns the name of a user or role.
func (m *Memory) ResolveName(id uuid.UUID) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if user, ok := m.users[id]; ok {
		return user.Name, true
	}
	if role, ok := m.roles[id]; ok {
		return role.Name, true
	}
	return "", false
}

// Subscribe registers fn to run on every committed change to id.
func (m *Memory) Subscribe(id uuid.UUID, fn func(id uuid.UUID)) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.nextSub
	m.nextSub++
	if m.subs[id] == nil {
		m.subs[id] = make(map[uint64]func(id uuid.UUID))
	}
	m.subs[id][n] = fn
	return &Subscription{close: func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs[id], n)
		if len(m.subs[id]) == 0 {
			delete(m.subs, id)
		}
	}}
}

// Grant adds bits to the entity's rights at path, after checking the
// bits are legal at the path's level. With withGrantOption, the
// parallel grant-option tree is updated too.
func (m *Memory) Grant(id uuid.UUID, bits privilege.BitMask, withGrantOption bool, path ...string) error {
	if err := m.reg.CheckGrantable(bits, privilege.LevelOfPath(len(path))); err != nil {
		return err
	}
	return m.update(id, func(g *Grants) error {
		g.Rights.Grant(bits, path...)
		if withGrantOption {
			g.GrantOption.Grant(bits, path...)
		}
		return nil
	})
}

// Revoke removes bits from the entity's rights at path. Revoking a
// right also drops its grant option. Partial revokes must be enabled in
// the config.
func (m *Memory) Revoke(id uuid.UUID, bits privilege.BitMask, partial bool, path ...string) error {
	if partial && !m.conf.PartialRevokes {
		return errors.Errorf("partial.revokes.are.disabled.by.config")
	}
	return m.update(id, func(g *Grants) error {
		g.Rights.Revoke(bits, partial, path...)
		g.GrantOption.Revoke(bits, partial, path...)
		return nil
	})
}

// RevokeGrantOption removes only the grant option for bits, keeping the
// rights themselves.
func (m *Memory) RevokeGrantOption(id uuid.UUID, bits privilege.BitMask, partial bool, path ...string) error {
	if partial && !m.conf.PartialRevokes {
		return errors.Errorf("partial.revokes.are.disabled.by.config")
	}
	return m.update(id, func(g *Grants) error {
		g.GrantOption.Revoke(bits, partial, path...)
		return nil
	})
}

// GrantRole grants a role to a user or to another role. Granting to a
// role refuses cycles: a role must never become its own ancestor. The
// cycle check and the swap happen under one lock.
func (m *Memory) GrantRole(granteeID, roleID uuid.UUID, adminOption bool) error {
	apply := func(g *Grants) {
		if !g.HasRole(roleID) {
			g.Roles = append(g.Roles, roleID)
		}
		if adminOption && !g.HasRoleWithAdminOption(roleID) {
			g.RolesWithAdminOption = append(g.RolesWithAdminOption, roleID)
		}
	}

	m.mu.Lock()
	if _, ok := m.roles[roleID]; !ok {
		m.mu.Unlock()
		return errors.Errorf("directory.unknown.role[%v]", roleID)
	}
	if user, ok := m.users[granteeID]; ok {
		clone := user.Clone()
		apply(&clone.Grants)
		m.users[granteeID] = clone
	} else if role, ok := m.roles[granteeID]; ok {
		if m.reachesLocked(roleID, granteeID) {
			m.mu.Unlock()
			return errors.Trace(ErrRoleCycle)
		}
		clone := role.Clone()
		apply(&clone.Grants)
		m.roles[granteeID] = clone
	} else {
		m.mu.Unlock()
		return errors.Errorf("directory.unknown.entity[%v]", granteeID)
	}
	subs := m.subscribersLocked(granteeID)
	m.mu.Unlock()
	m.notify(granteeID, subs)
	return nil
}

// RevokeRole removes a role grant from a user or role.
func (m *Memory) RevokeRole(granteeID, roleID uuid.UUID) error {
	return m.update(granteeID, func(g *Grants) error {
		g.Roles = removeID(g.Roles, roleID)
		g.RolesWithAdminOption = removeID(g.RolesWithAdminOption, roleID)
		return nil
	})
}

// update clones the published entity, applies fn and swaps the clone
// in, then notifies subscribers outside the lock.
func (m *Memory) update(id uuid.UUID, fn func(g *Grants) error) error {
	m.mu.Lock()
	if user, ok := m.users[id]; ok {
		clone := user.Clone()
		if err := fn(&clone.Grants); err != nil {
			m.mu.Unlock()
			return err
		}
		m.users[id] = clone
	} else if role, ok := m.roles[id]; ok {
		clone := role.Clone()
		if err := fn(&clone.Grants); err != nil {
			m.mu.Unlock()
			return err
		}
		m.roles[id] = clone
	} else {
		m.mu.Unlock()
		return errors.Errorf("directory.unknown.entity[%v]", id)
	}
	subs := m.subscribersLocked(id)
	m.mu.Unlock()
	m.notify(id, subs)
	return nil
}

// reachesLocked reports whether dst is reachable from src over role
// grants. Caller holds at least the read lock.
func (m *Memory) reachesLocked(src, dst uuid.UUID) bool {
	if src == dst {
		return true
	}
	visited := map[uuid.UUID]bool{src: true}
	queue := []uuid.UUID{src}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		role, ok := m.roles[id]
		if !ok {
			continue
		}
		for _, next := range role.Grants.Roles {
			if next == dst {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

func (m *Memory) subscribersLocked(id uuid.UUID) []func(id uuid.UUID) {
	fns := make([]func(id uuid.UUID), 0, len(m.subs[id]))
	for _, fn := range m.subs[id] {
		fns = append(fns, fn)
	}
	return fns
}

func (m *Memory) notify(id uuid.UUID, fns []func(id uuid.UUID)) {
	for _, fn := range fns {
		fn(id)
	}
}

func (m *Memory) findByNameLocked(name string) uuid.UUID {
	for id, user := range m.users {
		if user.Name == name {
			return id
		}
	}
	for id, role := range m.roles {
		if role.Name == name {
			return id
		}
	}
	return uuid.Nil
}

func sortIDs(ids []uuid.UUID) {
	sort.Slice(ids, func(i, j int) bool {
		return ids[i].String() < ids[j].String()
	})
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, x := range ids {
		if x != id {
			out = append(out, x)
		}
	}
	return out
}
