package cache

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Snapshot cache for external readers of the live round. Optional: when no
// address is configured every call is a no-op.
var rdb *redis.Client

func Init(addr string) {
	if addr == "" {
		return
	}
	rdb = redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

func SetSnapshot(value string) {
	if rdb == nil {
		return
	}
	rdb.Set(context.Background(), "round:snapshot", value, 0)
}

func GetSnapshot() (string, error) {
	if rdb == nil {
		return "", redis.Nil
	}
	return rdb.Get(context.Background(), "round:snapshot").Result()
}
