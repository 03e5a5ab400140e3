// store/redis.go - Redis session store for multi-instance deployments
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/studioleflow/portal/internal/models"
)

var _ Store = (*Redis)(nil)

// toastTTL bounds how long an unread notification waits for its visitor
const toastTTL = 10 * time.Minute

type Redis struct {
	rdb *redis.Client
}

// NewRedis connects and pings the server
func NewRedis(ctx context.Context, addr, password string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return &Redis{rdb: rdb}, nil
}

func gateKey(scope string) string  { return "leflow:gate:" + scope }
func toastKey(scope string) string { return "leflow:toasts:" + scope }

func (s *Redis) MarkBypassed(ctx context.Context, scope, username string) error {
	return s.rdb.Set(ctx, gateKey(scope), username, 0).Err()
}

func (s *Redis) IsBypassed(ctx context.Context, scope string) (bool, error) {
	_, err := s.rdb.Get(ctx, gateKey(scope)).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Redis) PushToast(ctx context.Context, scope string, t models.Toast) error {
	payload, err := json.Marshal(t)
	if err != nil {
		return err
	}
	key := toastKey(scope)
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, toastTTL)
		return nil
	})
	return err
}

func (s *Redis) PopToasts(ctx context.Context, scope string) ([]models.Toast, error) {
	key := toastKey(scope)
	var lrange *redis.StringSliceCmd
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}

	raw := lrange.Val()
	if len(raw) == 0 {
		return nil, nil
	}
	toasts := make([]models.Toast, 0, len(raw))
	for _, item := range raw {
		var t models.Toast
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("decode toast: %w", err)
		}
		toasts = append(toasts, t)
	}
	return toasts, nil
}

func (s *Redis) Close() error {
	return s.rdb.Close()
}
