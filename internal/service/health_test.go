package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubProbe struct{ err error }

func (p stubProbe) Ping(context.Context) error { return p.err }

func TestHealthService_Readiness(t *testing.T) {
	s := newHealthService(map[string]HealthProbe{
		"mongodb": stubProbe{},
		"redis":   stubProbe{},
	})
	assert.True(t, s.IsLive())

	ready, checks := s.Readiness(context.Background())
	assert.False(t, ready)
	assert.Equal(t, map[string]string{"app": "starting"}, checks)

	s.SetReady(true)
	ready, checks = s.Readiness(context.Background())
	assert.True(t, ready)
	assert.Equal(t, map[string]string{"mongodb": "ok", "redis": "ok"}, checks)

	s.probes["redis"] = stubProbe{err: errors.New("connection refused")}
	ready, checks = s.Readiness(context.Background())
	assert.False(t, ready)
	assert.Equal(t, "ok", checks["mongodb"])
	assert.Equal(t, "connection refused", checks["redis"])
}
