// Package presence mirrors online status into Redis so other services can see it.
package presence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dkeye/Parley/internal/domain"
	"github.com/redis/go-redis/v9"
)

// key: im:presence:<user>, value: node id. The TTL bounds how long a crashed node
// can keep a user online; Presence.KeepAlive renews it.
func presenceKey(uid domain.UserID) string { return "im:presence:" + string(uid) }

// Only the node that owns the entry may delete it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type RedisMirror struct {
	rdb  *redis.Client
	node string
	ttl  time.Duration
}

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Node     string
}

func NewRedisMirror(ctx context.Context, c Config) (*RedisMirror, error) {
	rdb := redis.NewClient(&redis.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if c.TTL <= 0 {
		c.TTL = 2 * time.Minute
	}
	return &RedisMirror{rdb: rdb, node: c.Node, ttl: c.TTL}, nil
}

func (m *RedisMirror) TTL() time.Duration { return m.ttl }

func (m *RedisMirror) Online(ctx context.Context, uid domain.UserID) error {
	return m.rdb.Set(ctx, presenceKey(uid), m.node, m.ttl).Err()
}

func (m *RedisMirror) Offline(ctx context.Context, uid domain.UserID) error {
	return releaseScript.Run(ctx, m.rdb, []string{presenceKey(uid)}, m.node).Err()
}

// Lookup reports which node, if any, holds uid's connection.
func (m *RedisMirror) Lookup(ctx context.Context, uid domain.UserID) (string, bool, error) {
	node, err := m.rdb.Get(ctx, presenceKey(uid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return node, true, nil
}

func (m *RedisMirror) Close() error {
	return m.rdb.Close()
}
