package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/resto-next/internal/config"
	"github.com/resto-next/internal/logger"

	"github.com/redis/go-redis/v9"
)

var (
	rdb    *redis.Client
	prefix string
)

// InitRedis 初始化 Redis 连接。未启用时降级为直连数据库，不视为错误。
func InitRedis(cfg *config.RedisConfig) error {
	if cfg == nil || !cfg.Enabled {
		logger.Infow("redis_disabled")
		return nil
	}

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}

	rdb = client
	prefix = cfg.Prefix
	logger.Infow("redis_connected", "addr", addr, "db", cfg.DB)
	return nil
}

// Enabled Redis 是否可用
func Enabled() bool {
	return rdb != nil
}

// Client 返回底层客户端，仅限需要原生命令的场景使用
func Client() *redis.Client {
	return rdb
}

// Close 关闭连接
func Close() error {
	if rdb == nil {
		return nil
	}
	return rdb.Close()
}

func fullKey(key string) string {
	if prefix == "" {
		return key
	}
	return prefix + ":" + key
}

// GetJSON 读取并反序列化缓存，未命中返回 false
func GetJSON(key string, dest interface{}) (bool, error) {
	if rdb == nil {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	raw, err := rdb.Get(ctx, fullKey(key)).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化并写入缓存
func SetJSON(key string, value interface{}, ttl time.Duration) error {
	if rdb == nil {
		return nil
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return rdb.Set(ctx, fullKey(key), raw, ttl).Err()
}

// Del 删除缓存键
func Del(keys ...string) error {
	if rdb == nil || len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = fullKey(key)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return rdb.Del(ctx, full...).Err()
}
