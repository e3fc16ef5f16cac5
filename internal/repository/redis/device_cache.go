package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"Care_Community/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	DeviceCachePrefix = "alexa:device:"
	DeviceCacheTTL    = 10 * time.Minute
)

// DeviceCache 缓存 device_id -> 租户上下文；配对不可变，但房间号和社区名可改，改名时由调用方 Delete
type DeviceCache struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewDeviceCache(rdb *redis.Client, ttl time.Duration) *DeviceCache {
	if ttl <= 0 {
		ttl = DeviceCacheTTL
	}
	return &DeviceCache{RDB: rdb, TTL: ttl}
}

// Get 第二个返回值表示是否命中
func (c *DeviceCache) Get(ctx context.Context, deviceID string) (*model.DeviceContext, bool, error) {
	raw, err := c.RDB.Get(ctx, DeviceCachePrefix+deviceID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var dc model.DeviceContext
	if err := json.Unmarshal(raw, &dc); err != nil {
		// 脏数据直接丢弃，回源重建
		_ = c.RDB.Del(ctx, DeviceCachePrefix+deviceID).Err()
		return nil, false, nil
	}
	return &dc, true, nil
}

func (c *DeviceCache) Set(ctx context.Context, deviceID string, dc *model.DeviceContext) error {
	raw, err := json.Marshal(dc)
	if err != nil {
		return err
	}
	return c.RDB.Set(ctx, DeviceCachePrefix+deviceID, raw, c.TTL).Err()
}

// Delete 批量失效，不存在的 key 忽略
func (c *DeviceCache) Delete(ctx context.Context, deviceIDs ...string) error {
	if len(deviceIDs) == 0 {
		return nil
	}
	keys := make([]string, len(deviceIDs))
	for i, id := range deviceIDs {
		keys[i] = DeviceCachePrefix + id
	}
	return c.RDB.Del(ctx, keys...).Err()
}
