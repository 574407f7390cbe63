package checkpoint

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/anthanhphan/go-inflow-generator/internal/inflow/port"
)

const redisKeyPrefix = "inflowgen:checkpoint:"

// RedisStore keeps completed positions in one Redis set per run key, so
// several hosts generating into a shared case see the same progress.
type RedisStore struct {
	client redis.UniversalClient
}

var _ port.CheckpointStore = (*RedisStore)(nil)

func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Completed(ctx context.Context, runKey string) ([]int, error) {
	members, err := s.client.SMembers(ctx, redisKeyPrefix+runKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint: %w", err)
	}

	positions := make([]int, 0, len(members))
	for _, m := range members {
		pos, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		positions = append(positions, pos)
	}
	sort.Ints(positions)
	return positions, nil
}

func (s *RedisStore) MarkCompleted(ctx context.Context, runKey string, position int) error {
	if err := s.client.SAdd(ctx, redisKeyPrefix+runKey, strconv.Itoa(position)).Err(); err != nil {
		return fmt.Errorf("failed to record checkpoint: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
