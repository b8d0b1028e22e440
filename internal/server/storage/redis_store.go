package storage

import (
	"context"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/property-tycoon/internal/apperrors"
	"github.com/palemoky/property-tycoon/internal/game/event"
)

const (
	// Redis key 前缀
	eventsKeyPrefix = "game:events:"
	gamesKey        = "game:index"
)

// appendScript pushes ARGV[3..] when the list length equals ARGV[1].
// It returns the new length, or -(current+1) on a version mismatch.
var appendScript = redis.NewScript(`
local n = redis.call('LLEN', KEYS[1])
if n ~= tonumber(ARGV[1]) then
	return -(n + 1)
end
for i = 3, #ARGV do
	redis.call('RPUSH', KEYS[1], ARGV[i])
end
redis.call('SADD', KEYS[2], ARGV[2])
return n + #ARGV - 2
`)

// RedisStore 每局游戏一个 Redis 列表
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore 创建 Redis 存储
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (rs *RedisStore) Append(ctx context.Context, gameID string, expectedVersion int, events []event.Event) (int, error) {
	rows, err := encodeAll(events)
	if err != nil {
		return 0, err
	}

	args := make([]any, 0, len(rows)+2)
	args = append(args, expectedVersion, gameID)
	for _, row := range rows {
		args = append(args, row)
	}

	n, err := appendScript.Run(ctx, rs.client, []string{eventsKeyPrefix + gameID, gamesKey}, args...).Int()
	if err != nil {
		return 0, fmt.Errorf("追加事件失败: %w", err)
	}
	if n < 0 {
		current := -n - 1
		return current, apperrors.Conflict(expectedVersion, current)
	}
	return n, nil
}

func (rs *RedisStore) Load(ctx context.Context, gameID string) ([]event.Event, error) {
	rows, err := rs.client.LRange(ctx, eventsKeyPrefix+gameID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("读取事件失败: %w", err)
	}
	return decodeAll(rows)
}

func (rs *RedisStore) Version(ctx context.Context, gameID string) (int, error) {
	n, err := rs.client.LLen(ctx, eventsKeyPrefix+gameID).Result()
	return int(n), err
}

func (rs *RedisStore) ListGames(ctx context.Context) ([]string, error) {
	ids, err := rs.client.SMembers(ctx, gamesKey).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	return ids, nil
}

// Close 关闭底层连接
func (rs *RedisStore) Close() error {
	return rs.client.Close()
}
