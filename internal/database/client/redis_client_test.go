package client

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRedisClient_KeyAndPing(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	c := NewRedisClientFrom(zap.NewNop(), rdb)
	assert.True(t, c.Enabled())
	assert.Equal(t, "imagegate:provider_rate_window", c.Key("provider_rate_window"))
	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}

func TestRedisClient_Disabled(t *testing.T) {
	c := &RedisClient{logger: zap.NewNop(), keyPrefix: "staging"}
	assert.False(t, c.Enabled())
	assert.Equal(t, "staging:a:b", c.Key("a", "b"))
	assert.NoError(t, c.Ping(context.Background()))
	assert.NoError(t, c.Close())
}
