package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	LockKeyPrefix = "lock:"
	LockTTL       = 3 * time.Second
)

// DistLock 分布式锁；用于在写库前预占社区 PIN，唯一索引仍是最终裁决
type DistLock struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewDistLock(rdb *redis.Client) *DistLock {
	return &DistLock{RDB: rdb, TTL: LockTTL}
}

var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// Acquire 抢锁成功时返回释放函数
func (l *DistLock) Acquire(ctx context.Context, name string) (func(), bool, error) {
	key := LockKeyPrefix + name
	token := uuid.NewString()
	ok, err := l.RDB.SetNX(ctx, key, token, l.TTL).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	release := func() {
		// 用lua保证只删除自己的锁
		_ = releaseScript.Run(context.Background(), l.RDB, []string{key}, token).Err()
	}
	return release, true, nil
}
