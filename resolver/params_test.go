/*
 * NeoACL
 *
 * Copyright 2021-2030 The NeoDB Authors.
 * Code is licensed under the GPLv3.
 *
 */

package resolver

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestParamsNormalized(t *testing.T) {
	r1 := uuid.New()
	r2 := uuid.New()

	p := Params{UserID: uuid.New(), Roles: []uuid.UUID{r2, r1, r2}}
	n := p.Normalized()

	assert.Equal(t, 2, len(n.Roles))
	assert.True(t, n.Roles[0].String() < n.Roles[1].String())
	// The original is untouched.
	assert.Equal(t, 3, len(p.Roles))

	// Role order does not matter once normalized.
	q := Params{UserID: p.UserID, Roles: []uuid.UUID{r1, r2}}
	assert.True(t, n.Equal(q.Normalized()))
	assert.Equal(t, n.Key(), q.Normalized().Key())
}

func TestParamsKeyDistinguishesFlags(t *testing.T) {
	base := Params{UserID: uuid.New(), AllowDDL: true}.Normalized()

	variants := []Params{
		{UserID: base.UserID, AllowDDL: true, Readonly: 1},
		{UserID: base.UserID},
		{UserID: base.UserID, AllowDDL: true, AllowIntrospection: true},
		{UserID: base.UserID, AllowDDL: true, CurrentDatabase: "db1"},
		{UserID: base.UserID, AllowDDL: true, QuotaKey: "q"},
		{UserID: uuid.New(), AllowDDL: true},
	}
	for _, v := range variants {
		v = v.Normalized()
		assert.NotEqual(t, base.Key(), v.Key())
		assert.False(t, base.Equal(v))
	}
}

func TestParamsKeySeparatorSafe(t *testing.T) {
	u := uuid.New()

	// A separator inside a free-form field must not make two distinct
	// parameter sets share a key.
	a := Params{UserID: u, CurrentDatabase: "a;b", Interface: "c"}.Normalized()
	b := Params{UserID: u, CurrentDatabase: "a", Interface: "b", Address: "c"}.Normalized()
	assert.NotEqual(t, a.Key(), b.Key())

	c := Params{UserID: u, QuotaKey: `q";x`}.Normalized()
	d := Params{UserID: u, Address: `q";x`}.Normalized()
	assert.NotEqual(t, c.Key(), d.Key())
}

func TestParamsCompareTotalOrder(t *testing.T) {
	u := uuid.New()
	a := Params{UserID: u}.Normalized()
	b := Params{UserID: u, Roles: []uuid.UUID{uuid.New()}}.Normalized()

	assert.Equal(t, 0, a.Compare(a))
	assert.Equal(t, -a.Compare(b), b.Compare(a))

	c := Params{UserID: u, Readonly: 2}.Normalized()
	assert.True(t, a.Compare(c) < 0)
}
