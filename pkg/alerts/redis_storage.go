package alerts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage is a Redis-backed implementation of the Storage interface for
// deployments that need alerts and history to survive a restart. Alerts are
// stored as JSON values, history as per-alert lists, with a set indexing the
// known ids.
type RedisStorage struct {
	client redis.UniversalClient
	prefix string
}

// RedisStorageOption configures a RedisStorage.
type RedisStorageOption func(*RedisStorage)

// WithKeyPrefix namespaces all keys, e.g. per environment. Default "alerts".
func WithKeyPrefix(prefix string) RedisStorageOption {
	return func(s *RedisStorage) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// NewRedisStorage creates a Redis-backed alert storage. The caller owns the
// client's lifecycle.
func NewRedisStorage(client redis.UniversalClient, opts ...RedisStorageOption) *RedisStorage {
	s := &RedisStorage{
		client: client,
		prefix: "alerts",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStorage) alertKey(id string) string   { return s.prefix + ":alert:" + id }
func (s *RedisStorage) historyKey(id string) string { return s.prefix + ":history:" + id }
func (s *RedisStorage) indexKey() string            { return s.prefix + ":index" }

func (s *RedisStorage) Save(ctx context.Context, alert Alert) error {
	raw, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert %s: %w", alert.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.alertKey(alert.ID), raw, 0)
	pipe.SAdd(ctx, s.indexKey(), alert.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store alert %s: %w", alert.ID, err)
	}
	return nil
}

func (s *RedisStorage) Find(ctx context.Context, id string) (*Alert, error) {
	raw, err := s.client.Get(ctx, s.alertKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAlertNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load alert %s: %w", id, err)
	}

	var alert Alert
	if err := json.Unmarshal(raw, &alert); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert %s: %w", id, err)
	}
	return &alert, nil
}

func (s *RedisStorage) FindAll(ctx context.Context) ([]Alert, error) {
	ids, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list alert ids: %w", err)
	}

	out := make([]Alert, 0, len(ids))
	for _, id := range ids {
		alert, err := s.Find(ctx, id)
		if errors.Is(err, ErrAlertNotFound) {
			// Index entry outlived its value; self-heal.
			s.client.SRem(ctx, s.indexKey(), id)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, *alert)
	}
	return out, nil
}

func (s *RedisStorage) FindDueScheduled(ctx context.Context, now time.Time) ([]Alert, error) {
	stored, err := s.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	var due []Alert
	for _, alert := range stored {
		if alert.Status != StatusScheduled {
			continue
		}
		if alert.ScheduledFor != nil && alert.ScheduledFor.After(now) {
			continue
		}
		due = append(due, alert)
	}
	return due, nil
}

func (s *RedisStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	stored, err := s.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, alert := range stored {
		if !alert.CreatedAt.Before(cutoff) {
			continue
		}
		pipe := s.client.TxPipeline()
		pipe.Del(ctx, s.alertKey(alert.ID), s.historyKey(alert.ID))
		pipe.SRem(ctx, s.indexKey(), alert.ID)
		if _, err := pipe.Exec(ctx); err != nil {
			return removed, fmt.Errorf("failed to delete alert %s: %w", alert.ID, err)
		}
		removed++
	}
	return removed, nil
}

func (s *RedisStorage) AppendHistory(ctx context.Context, alertID string, results []DeliveryResult) error {
	if len(results) == 0 {
		return nil
	}

	entries := make([]any, 0, len(results))
	for _, res := range results {
		raw, err := json.Marshal(res)
		if err != nil {
			return fmt.Errorf("failed to marshal delivery result: %w", err)
		}
		entries = append(entries, raw)
	}

	if err := s.client.RPush(ctx, s.historyKey(alertID), entries...).Err(); err != nil {
		return fmt.Errorf("failed to append history for alert %s: %w", alertID, err)
	}
	return nil
}

func (s *RedisStorage) FindHistory(ctx context.Context, alertID string) ([]DeliveryResult, error) {
	raws, err := s.client.LRange(ctx, s.historyKey(alertID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load history for alert %s: %w", alertID, err)
	}

	out := make([]DeliveryResult, 0, len(raws))
	for _, raw := range raws {
		var res DeliveryResult
		if err := json.Unmarshal([]byte(raw), &res); err != nil {
			return nil, fmt.Errorf("failed to unmarshal delivery result: %w", err)
		}
		out = append(out, res)
	}
	return out, nil
}
