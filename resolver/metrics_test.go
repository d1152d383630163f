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

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	m := &dto.Metric{}
	assert.Nil(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func TestResolverMetrics(t *testing.T) {
	dir, r, reg := mockResolver()
	defer r.Close()
	sel, _ := reg.BitsFor("SELECT")
	ins, _ := reg.BitsFor("INSERT")

	user, _ := dir.CreateUser("u1")
	assert.Nil(t, dir.Grant(user.ID, sel, false, "db1"))

	builds := counterValue(t, metricBuilds)
	hits := counterValue(t, metricCacheHits)
	denials := counterValue(t, metricDenials)

	p := Params{UserID: user.ID}
	a, _ := r.Resolve(p)
	_, _ = r.Resolve(p)
	assert.Equal(t, builds+1, counterValue(t, metricBuilds))
	assert.Equal(t, hits+1, counterValue(t, metricCacheHits))

	assert.NotNil(t, a.Check(ins, "db1"))
	assert.Nil(t, a.Check(sel, "db1"))
	assert.Equal(t, denials+1, counterValue(t, metricDenials))
}
