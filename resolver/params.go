/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package resolver

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Params identifies one resolved session: the principal, the enabled
// roles and every session flag that changes which checks must pass.
// Immutable once normalized; used as the snapshot cache key.
type Params struct {
	UserID             uuid.UUID
	Roles              []uuid.UUID
	Readonly           int
	AllowDDL           bool
	AllowIntrospection bool
	CurrentDatabase    string
	Interface          string
	Address            string
	QuotaKey           string
}

// Normalized returns a copy with the role set sorted and deduplicated,
// so equal parameter sets compare and hash equal.
func (p Params) Normalized() Params {
	if len(p.Roles) == 0 {
		p.Roles = nil
		return p
	}
	roles := make([]uuid.UUID, 0, len(p.Roles))
	seen := make(map[uuid.UUID]bool, len(p.Roles))
	for _, id := range p.Roles {
		if !seen[id] {
			seen[id] = true
			roles = append(roles, id)
		}
	}
	sort.Slice(roles, func(i, j int) bool {
		return roles[i].String() < roles[j].String()
	})
	p.Roles = roles
	return p
}

// Key renders the normalized params as a cache key. Free-form fields
// are quoted so a separator inside one of them cannot make two distinct
// parameter sets collide.
func (p Params) Key() string {
	var b strings.Builder
	b.WriteString(p.UserID.String())
	for _, id := range p.Roles {
		b.WriteByte(',')
		b.WriteString(id.String())
	}
	b.WriteByte(';')
	b.WriteString(strconv.Itoa(p.Readonly))
	b.WriteByte(';')
	b.WriteString(strconv.FormatBool(p.AllowDDL))
	b.WriteByte(';')
	b.WriteString(strconv.FormatBool(p.AllowIntrospection))
	b.WriteByte(';')
	b.WriteString(strconv.Quote(p.CurrentDatabase))
	b.WriteByte(';')
	b.WriteString(strconv.Quote(p.Interface))
	b.WriteByte(';')
	b.WriteString(strconv.Quote(p.Address))
	b.WriteByte(';')
	b.WriteString(strconv.Quote(p.QuotaKey))
	return b.String()
}

// Equal compares all fields, role sets included.
func (p Params) Equal(other Params) bool {
	return p.Compare(other) == 0
}

// Compare imposes a total order over params, field by field. Both sides
// are expected to be normalized.
func (p Params) Compare(other Params) int {
	if c := strings.Compare(p.UserID.String(), other.UserID.String()); c != 0 {
		return c
	}
	for i := 0; i < len(p.Roles) && i < len(other.Roles); i++ {
		if c := strings.Compare(p.Roles[i].String(), other.Roles[i].String()); c != 0 {
			return c
		}
	}
	if c := len(p.Roles) - len(other.Roles); c != 0 {
		return sign(c)
	}
	if c := p.Readonly - other.Readonly; c != 0 {
		return sign(c)
	}
	if c := compareBool(p.AllowDDL, other.AllowDDL); c != 0 {
		return c
	}
	if c := compareBool(p.AllowIntrospection, other.AllowIntrospection); c != 0 {
		return c
	}
	if c := strings.Compare(p.CurrentDatabase, other.CurrentDatabase); c != 0 {
		return c
	}
	if c := strings.Compare(p.Interface, other.Interface); c != 0 {
		return c
	}
	if c := strings.Compare(p.Address, other.Address); c != 0 {
		return c
	}
	return strings.Compare(p.QuotaKey, other.QuotaKey)
}

func sign(c int) int {
	if c < 0 {
		return -1
	}
	return 1
}

func compareBool(a, b bool) int {
	if a == b {
		return 0
	}
	if !a {
		return -1
	}
	return 1
}
