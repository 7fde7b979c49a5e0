package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/huahuacuna/fundacion-api/internal/core/domain"
)

// recordFailure bumps the failure counter of a live code and gives the
// counter the code's remaining lifetime. KEYS[1] is the code, KEYS[2] the counter.
var recordFailure = redis.NewScript(`
local ttl = redis.call('PTTL', KEYS[1])
if ttl <= 0 then
	return 0
end
local n = redis.call('INCR', KEYS[2])
redis.call('PEXPIRE', KEYS[2], ttl)
return n
`)

// ResetCodeStore keeps password recovery codes under
// fundacion:reset:<normalized email> and the wrong-guess count under
// fundacion:reset-failures:<normalized email>, both expiring with the code.
type ResetCodeStore struct {
	client *redis.Client
}

func NewResetCodeStore(client *redis.Client) *ResetCodeStore {
	return &ResetCodeStore{client: client}
}

// Save replaces any pending code for email and resets its failure count.
func (s *ResetCodeStore) Save(ctx context.Context, email, code string, ttl time.Duration) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, resetKey(email), code, ttl)
		pipe.Del(ctx, resetFailuresKey(email))
		return nil
	})
	if err != nil {
		return fmt.Errorf("save reset code: %w", err)
	}
	return nil
}

func (s *ResetCodeStore) Get(ctx context.Context, email string) (string, error) {
	code, err := s.client.Get(ctx, resetKey(email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", domain.ErrInvalidResetCode
	}
	if err != nil {
		return "", fmt.Errorf("get reset code: %w", err)
	}
	return code, nil
}

func (s *ResetCodeStore) RecordFailure(ctx context.Context, email string) (int, error) {
	n, err := recordFailure.Run(ctx, s.client, []string{resetKey(email), resetFailuresKey(email)}).Int()
	if err != nil {
		return 0, fmt.Errorf("record reset failure: %w", err)
	}
	return n, nil
}

func (s *ResetCodeStore) Delete(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, resetKey(email), resetFailuresKey(email)).Err(); err != nil {
		return fmt.Errorf("delete reset code: %w", err)
	}
	return nil
}
