package verification

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps codes in Redis hashes so they survive restarts and are shared between instances.
// Keys carry no TTL; expiry is decided from expires_at when the code is checked.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, prefix: "verification_code:"}
}

func (s *RedisStore) key(email string) string {
	return s.prefix + email
}

func (s *RedisStore) Put(ctx context.Context, email string, entry Entry) error {
	key := s.key(email)

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, map[string]interface{}{
		"code":       entry.Code,
		"expires_at": entry.ExpiresAt.UnixMilli(),
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store verification code: %w", err)
	}
	return nil
}

func (s *RedisStore) Consume(ctx context.Context, email, code string, now time.Time) error {
	key := s.key(email)

	var result error
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		values, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("failed to get verification code: %w", err)
		}

		entry, ok, err := parseEntry(values)
		if err != nil {
			return err
		}
		if result = check(entry, ok, code, now); result != nil {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		// another request consumed or replaced the code between the read and the delete
		return ErrNoPendingCode
	}
	if err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}
	return result
}

func parseEntry(values map[string]string) (Entry, bool, error) {
	if len(values) == 0 {
		return Entry{}, false, nil
	}
	ms, err := strconv.ParseInt(values["expires_at"], 10, 64)
	if err != nil {
		return Entry{}, false, fmt.Errorf("failed to parse expiration: %w", err)
	}
	return Entry{Code: values["code"], ExpiresAt: time.UnixMilli(ms)}, true, nil
}
