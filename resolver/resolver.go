/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package resolver

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/sealdb/neoacl/config"
	"github.com/sealdb/neoacl/directory"
	"github.com/sealdb/neoacl/privilege"
	"github.com/sealdb/neoacl/rights"

	"github.com/google/uuid"
	"github.com/sealdb/mysqlstack/xlog"
	"golang.org/x/sync/singleflight"
)

// Resolver turns session parameters into SessionAccess snapshots. Equal
// parameter sets within the TTL share one snapshot; concurrent misses
// for the same key collapse into a single build. Directory changes to a
// principal or any of its enabled roles evict the dependent entries
// immediately, ahead of the TTL.
type Resolver struct {
	log  *xlog.Log
	reg  *privilege.Registry
	conf *config.AccessConfig
	dir  directory.Directory

	readonlyMask      privilege.BitMask
	ddlMask           privilege.BitMask
	introspectionMask privilege.BitMask
	showMask          privilege.BitMask

	group  singleflight.Group
	builds uint64
	now    func() time.Time

	mu      sync.Mutex
	closed  bool
	cache   map[string]*cacheEntry
	watches map[uuid.UUID]*watch
}

type cacheEntry struct {
	access  *SessionAccess
	expires time.Time
	deps    []uuid.UUID
}

// watch is one directory subscription plus the cache keys that depend
// on the watched entity. A watch with no keys left is dropped and its
// subscription closed.
type watch struct {
	sub  *directory.Subscription
	keys map[string]bool
}

// NewResolver creates a resolver over the given directory.
func NewResolver(log *xlog.Log, reg *privilege.Registry, conf *config.AccessConfig, dir directory.Directory) *Resolver {
	return &Resolver{
		log:  log,
		reg:  reg,
		conf: conf,
		dir:  dir,
		readonlyMask: staticMask(reg,
			"SHOW", "SELECT", "KILL QUERY", "INTROSPECTION"),
		ddlMask: staticMask(reg,
			"CREATE", "DROP", "ALTER", "TRUNCATE"),
		introspectionMask: staticMask(reg, "INTROSPECTION"),
		showMask:          staticMask(reg, "SHOW"),
		now:               time.Now,
		cache:             make(map[string]*cacheEntry),
		watches:           make(map[uuid.UUID]*watch),
	}
}

// Resolve returns the snapshot for params, building it on a cache miss.
func (r *Resolver) Resolve(params Params) (*SessionAccess, error) {
	p := params.Normalized()
	key := p.Key()

	r.mu.Lock()
	if entry, ok := r.cache[key]; ok && r.now().Before(entry.expires) {
		r.mu.Unlock()
		metricCacheHits.Inc()
		return entry.access, nil
	}
	r.mu.Unlock()

	access, err, _ := r.group.Do(key, func() (interface{}, error) {
		r.mu.Lock()
		if entry, ok := r.cache[key]; ok && r.now().Before(entry.expires) {
			r.mu.Unlock()
			metricCacheHits.Inc()
			return entry.access, nil
		}
		r.mu.Unlock()
		return r.build(p, key)
	})
	if err != nil {
		return nil, err
	}
	return access.(*SessionAccess), nil
}

// Builds returns how many snapshots have been built since creation.
func (r *Resolver) Builds() uint64 {
	return atomic.LoadUint64(&r.builds)
}

// Invalidate evicts every cache entry depending on the entity and drops
// its subscription. Normally driven by directory notifications; exposed
// for the admin API.
func (r *Resolver) Invalidate(id uuid.UUID) {
	r.mu.Lock()
	w := r.watches[id]
	if w == nil {
		r.mu.Unlock()
		return
	}
	var stale []*directory.Subscription
	for key := range w.keys {
		stale = append(stale, r.removeEntryLocked(key, nil)...)
	}
	// Detaching the last key already drops the watch; catch the case of
	// a watch that held no keys yet.
	if w := r.watches[id]; w != nil {
		delete(r.watches, id)
		stale = append(stale, w.sub)
	}
	r.mu.Unlock()
	for _, sub := range stale {
		sub.Close()
	}
	r.log.Info("resolver.invalidate.entity[%v]", id)
}

// Close evicts all entries and drops every subscription.
func (r *Resolver) Close() {
	r.mu.Lock()
	r.closed = true
	watches := r.watches
	r.cache = make(map[string]*cacheEntry)
	r.watches = make(map[uuid.UUID]*watch)
	r.mu.Unlock()
	for _, w := range watches {
		w.sub.Close()
	}
}

func (r *Resolver) build(p Params, key string) (*SessionAccess, error) {
	atomic.AddUint64(&r.builds, 1)
	metricBuilds.Inc()

	// Watch the principal before reading its state: a change committed
	// after the read then finds the subscription and evicts this entry.
	userWatch, _ := r.ensureWatch(p.UserID)

	access, roles := r.newSession(p)

	// Roles are discovered by the read itself, so their subscriptions
	// may be made late. A role subscribed after its snapshot was merged
	// is re-read; if the published snapshot moved in between, the build
	// result is served but not cached.
	fresh := userWatch != nil
	deps := map[uuid.UUID]*watch{p.UserID: userWatch}
	for _, role := range roles {
		w, created := r.ensureWatch(role.ID)
		deps[role.ID] = w
		if w == nil {
			fresh = false
			continue
		}
		if created {
			if cur, ok := r.dir.LookupRole(role.ID); !ok || cur != role {
				fresh = false
			}
		}
	}

	r.mu.Lock()
	// A dep watch replaced or removed since the read means a change was
	// committed mid-build; the snapshot may be stale, do not cache it.
	if r.closed || !fresh || !r.watchesIntactLocked(deps) {
		r.mu.Unlock()
		return access, nil
	}
	var stale []*directory.Subscription
	stale = append(stale, r.removeEntryLocked(key, deps)...)
	stale = append(stale, r.evictLocked(deps)...)
	depIDs := make([]uuid.UUID, 0, len(deps))
	for id, w := range deps {
		depIDs = append(depIDs, id)
		w.keys[key] = true
	}
	r.cache[key] = &cacheEntry{
		access:  access,
		expires: r.now().Add(time.Duration(r.conf.CacheTTLSeconds) * time.Second),
		deps:    depIDs,
	}
	r.mu.Unlock()
	for _, sub := range stale {
		sub.Close()
	}
	return access, nil
}

// ensureWatch returns the watch for id, subscribing if none exists.
// created reports that this call made the subscription, i.e. after any
// state read the caller already performed.
func (r *Resolver) ensureWatch(id uuid.UUID) (w *watch, created bool) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, false
	}
	if w := r.watches[id]; w != nil {
		r.mu.Unlock()
		return w, false
	}
	r.mu.Unlock()

	// The directory takes its own lock and notifies on the committing
	// goroutine, so subscribe without holding ours.
	sub := r.dir.Subscribe(id, func(changed uuid.UUID) {
		r.Invalidate(changed)
	})
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		sub.Close()
		return nil, false
	}
	if w := r.watches[id]; w != nil {
		r.mu.Unlock()
		sub.Close()
		return w, false
	}
	w = &watch{sub: sub, keys: make(map[string]bool)}
	r.watches[id] = w
	r.mu.Unlock()
	return w, true
}

func (r *Resolver) watchesIntactLocked(deps map[uuid.UUID]*watch) bool {
	for id, w := range deps {
		if r.watches[id] != w {
			return false
		}
	}
	return true
}

// removeEntryLocked evicts one cache entry and detaches its key from
// every watch it depends on. Watches left with no keys are dropped,
// except those in keep (a build about to reuse them); the caller closes
// the returned subscriptions outside the lock.
func (r *Resolver) removeEntryLocked(key string, keep map[uuid.UUID]*watch) []*directory.Subscription {
	entry := r.cache[key]
	if entry == nil {
		return nil
	}
	delete(r.cache, key)
	var stale []*directory.Subscription
	for _, dep := range entry.deps {
		w := r.watches[dep]
		if w == nil {
			continue
		}
		delete(w.keys, key)
		if len(w.keys) == 0 && keep[dep] != w {
			delete(r.watches, dep)
			stale = append(stale, w.sub)
		}
	}
	return stale
}

// evictLocked keeps the cache under the configured bound: expired
// entries go first, then an arbitrary entry if still full.
func (r *Resolver) evictLocked(keep map[uuid.UUID]*watch) []*directory.Subscription {
	max := r.conf.CacheMaxEntries
	if max <= 0 || len(r.cache) < max {
		return nil
	}
	var stale []*directory.Subscription
	now := r.now()
	for key, entry := range r.cache {
		if !now.Before(entry.expires) {
			stale = append(stale, r.removeEntryLocked(key, keep)...)
		}
	}
	for key := range r.cache {
		if len(r.cache) < max {
			break
		}
		stale = append(stale, r.removeEntryLocked(key, keep)...)
	}
	return stale
}

// newSession computes the effective rights for params from the current
// directory state.
func (r *Resolver) newSession(p Params) (*SessionAccess, []*directory.Role) {
	access := &SessionAccess{
		log:       r.log,
		reg:       r.reg,
		params:    p,
		flagsMask: r.flagsMask(p),
		rolesInfo: &EnabledRolesInfo{
			WithAdminOption: make(map[uuid.UUID]bool),
			Names:           make(map[uuid.UUID]string),
		},
	}

	user, ok := r.dir.LookupUser(p.UserID)
	if !ok {
		// An unknown principal gets an empty snapshot: every check
		// denies until the directory change re-resolves the session.
		r.log.Warning("resolver.unknown.user[%v].resolved.with.no.access", p.UserID)
		access.rights = rights.NewTree()
		access.grantOption = rights.NewTree()
		return access, nil
	}
	access.userName = user.Name

	// Only roles actually granted to the user can be enabled.
	current := make([]uuid.UUID, 0, len(p.Roles))
	for _, id := range p.Roles {
		if !user.Grants.HasRole(id) {
			r.log.Warning("resolver.role[%v].not.granted.to.user[%s].skipped", id, user.Name)
			continue
		}
		current = append(current, id)
	}

	roles, rolesInfo := expandRoles(r.log, r.dir, &user.Grants, current)
	access.rolesInfo = rolesInfo

	access.rights = user.Grants.Rights.Clone()
	access.grantOption = user.Grants.GrantOption.Clone()
	for _, role := range roles {
		access.rights.Merge(role.Grants.Rights)
		access.grantOption.Merge(role.Grants.GrantOption)
	}

	// Access at a path implies seeing the catalog at that path, and
	// nowhere broader.
	for _, elem := range access.rights.Enumerate() {
		if elem.Bits.IsEmpty() {
			continue
		}
		access.rights.Grant(r.showMask, elementPath(elem)...)
	}
	return access, roles
}

// flagsMask translates the session flags into the mask every check is
// intersected with.
func (r *Resolver) flagsMask(p Params) privilege.BitMask {
	mask := r.reg.All()
	if p.Readonly > 0 {
		mask &= r.readonlyMask
	}
	if !p.AllowDDL {
		mask &^= r.ddlMask
	}
	if !p.AllowIntrospection {
		mask &^= r.introspectionMask
	}
	return mask
}

func elementPath(e rights.Element) []string {
	var path []string
	if e.Database == "" {
		return path
	}
	path = append(path, e.Database)
	if e.Table == "" {
		return path
	}
	path = append(path, e.Table)
	if e.Column != "" {
		path = append(path, e.Column)
	}
	return path
}

func staticMask(reg *privilege.Registry, keywords ...string) privilege.BitMask {
	bits, err := reg.BitsForMany(keywords...)
	if err != nil {
		panic(err)
	}
	return bits
}
