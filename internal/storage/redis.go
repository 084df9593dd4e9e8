package storage

import (
	"context"
	"crypto/tls"

	"github.com/go-redis/redis/v8"
)

// scanBatchSize is the COUNT hint passed to SCAN; the cursor loop makes the
// actual batch size a server decision.
const scanBatchSize = 512

type RedisStorage struct {
	Client redis.UniversalClient
}

// NewRedis connects to a single node when one address is given, or to a
// cluster when several are. The connection is verified with a ping before
// the storage handle is handed out.
func NewRedis(addrs []string, password string, db int, useTLS bool) (*RedisStorage, error) {
	opts := &redis.UniversalOptions{
		Addrs:    addrs,
		Password: password,
		DB:       db,
	}
	if useTLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewUniversalClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisStorage{Client: client}, nil
}

func (rs *RedisStorage) ScanKeys(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := rs.Client.Scan(ctx, cursor, pattern, scanBatchSize).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (rs *RedisStorage) GetCounters(ctx context.Context, key string) (map[string]string, error) {
	return rs.Client.HGetAll(ctx, key).Result()
}

func (rs *RedisStorage) Close() error {
	return rs.Client.Close()
}
