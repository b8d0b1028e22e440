package storage

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
)

const standingsKeyPrefix = "game:standings:"

// Standing 排名条目
type Standing struct {
	Rank     int
	PlayerID string
	NetWorth int
}

// Standings 每局游戏的身价排名
type Standings interface {
	// Record 覆盖写入每个玩家的身价
	Record(ctx context.Context, gameID string, netWorth map[string]int) error
	// Top returns up to limit entries by descending net worth; limit <= 0
	// returns all.
	Top(ctx context.Context, gameID string, limit int) ([]Standing, error)
}

// RedisStandings 基于有序集合的排名
type RedisStandings struct {
	redis *redis.Client
}

// NewRedisStandings 创建 Redis 排名
func NewRedisStandings(client *redis.Client) *RedisStandings {
	return &RedisStandings{redis: client}
}

func (rs *RedisStandings) Record(ctx context.Context, gameID string, netWorth map[string]int) error {
	if len(netWorth) == 0 {
		return nil
	}
	members := make([]redis.Z, 0, len(netWorth))
	for id, w := range netWorth {
		members = append(members, redis.Z{Score: float64(w), Member: id})
	}
	return rs.redis.ZAdd(ctx, standingsKeyPrefix+gameID, members...).Err()
}

func (rs *RedisStandings) Top(ctx context.Context, gameID string, limit int) ([]Standing, error) {
	stop := int64(-1)
	if limit > 0 {
		stop = int64(limit - 1)
	}
	results, err := rs.redis.ZRevRangeWithScores(ctx, standingsKeyPrefix+gameID, 0, stop).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]Standing, 0, len(results))
	for i, z := range results {
		id, _ := z.Member.(string)
		entries = append(entries, Standing{Rank: i + 1, PlayerID: id, NetWorth: int(z.Score)})
	}
	return entries, nil
}

// MemoryStandings 内存排名
type MemoryStandings struct {
	mu    sync.RWMutex
	games map[string]map[string]int
}

// NewMemoryStandings 创建内存排名
func NewMemoryStandings() *MemoryStandings {
	return &MemoryStandings{games: make(map[string]map[string]int)}
}

func (ms *MemoryStandings) Record(_ context.Context, gameID string, netWorth map[string]int) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	scores := ms.games[gameID]
	if scores == nil {
		scores = make(map[string]int, len(netWorth))
		ms.games[gameID] = scores
	}
	for id, w := range netWorth {
		scores[id] = w
	}
	return nil
}

func (ms *MemoryStandings) Top(_ context.Context, gameID string, limit int) ([]Standing, error) {
	ms.mu.RLock()
	entries := make([]Standing, 0, len(ms.games[gameID]))
	for id, w := range ms.games[gameID] {
		entries = append(entries, Standing{PlayerID: id, NetWorth: w})
	}
	ms.mu.RUnlock()

	SortByNetWorth(entries)
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// SortByNetWorth 按身价降序，相同身价按玩家 ID 降序（与 ZREVRANGE 一致）
func SortByNetWorth(entries []Standing) {
	slices.SortFunc(entries, func(a, b Standing) int {
		if a.NetWorth != b.NetWorth {
			return b.NetWorth - a.NetWorth
		}
		return strings.Compare(b.PlayerID, a.PlayerID)
	})
}
