package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/vente_shop/services/cart/internal/models"
)

const (
	DefaultTTL = 30 * 24 * time.Hour
	maxRetries = 5
)

var ErrConflict = errors.New("cart modified concurrently")

// UpdateFunc receives the current line (nil when absent) and returns the
// line to store, or nil to delete it.
type UpdateFunc func(cur *models.Line) (*models.Line, error)

type Store interface {
	Lines(ctx context.Context, key string) ([]models.Line, error)
	Update(ctx context.Context, key, field string, fn UpdateFunc) error
	Clear(ctx context.Context, key string) error
}

// RedisStore keeps each cart in a hash: field "<type>:<id>" holds the JSON encoded line.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Lines(ctx context.Context, key string) ([]models.Line, error) {
	raw, err := s.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	return decodeLines(raw)
}

func decodeLines(raw map[string]string) ([]models.Line, error) {
	lines := make([]models.Line, 0, len(raw))
	for field, v := range raw {
		var l models.Line
		if err := json.Unmarshal([]byte(v), &l); err != nil {
			return nil, fmt.Errorf("decode cart line %s: %w", field, err)
		}
		lines = append(lines, l)
	}
	SortLines(lines)
	return lines, nil
}

// SortLines orders lines by type, then id.
func SortLines(lines []models.Line) {
	sort.Slice(lines, func(i, j int) bool {
		if lines[i].Type != lines[j].Type {
			return lines[i].Type < lines[j].Type
		}
		return lines[i].ID < lines[j].ID
	})
}

// Update runs fn under WATCH so concurrent writers to the same cart retry instead of losing updates.
func (s *RedisStore) Update(ctx context.Context, key, field string, fn UpdateFunc) error {
	txf := func(tx *redis.Tx) error {
		var cur *models.Line
		raw, err := tx.HGet(ctx, key, field).Bytes()
		switch {
		case err == nil:
			cur = &models.Line{}
			if err := json.Unmarshal(raw, cur); err != nil {
				return fmt.Errorf("decode cart line %s: %w", field, err)
			}
		case !errors.Is(err, redis.Nil):
			return err
		}

		next, err := fn(cur)
		if err != nil {
			return err
		}

		var data []byte
		if next != nil {
			if data, err = json.Marshal(next); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			if next == nil {
				p.HDel(ctx, key, field)
			} else {
				p.HSet(ctx, key, field, data)
			}
			p.Expire(ctx, key, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return ErrConflict
}

func (s *RedisStore) Clear(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}
