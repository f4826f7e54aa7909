package alerts

import (
	"context"
	"sync"
	"time"
)

// MemoryStorage is an in-memory implementation of the Storage interface.
// This is the reference store: the dispatch contract only requires volatile
// in-process storage. Swap in a durable implementation (e.g. RedisStorage)
// without touching the Dispatcher's control flow.
type MemoryStorage struct {
	alerts  map[string]Alert
	history map[string][]DeliveryResult
	mu      sync.RWMutex
}

// NewMemoryStorage creates a new in-memory alert storage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		alerts:  make(map[string]Alert),
		history: make(map[string][]DeliveryResult),
	}
}

func (s *MemoryStorage) Save(ctx context.Context, alert Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts[alert.ID] = alert.clone()
	return nil
}

func (s *MemoryStorage) Find(ctx context.Context, id string) (*Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	alert, ok := s.alerts[id]
	if !ok {
		return nil, ErrAlertNotFound
	}
	// Deep copy so callers cannot mutate stored slices or timestamps.
	out := alert.clone()
	return &out, nil
}

func (s *MemoryStorage) FindAll(ctx context.Context) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Alert, 0, len(s.alerts))
	for _, alert := range s.alerts {
		out = append(out, alert.clone())
	}
	return out, nil
}

func (s *MemoryStorage) FindDueScheduled(ctx context.Context, now time.Time) ([]Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var due []Alert
	for _, alert := range s.alerts {
		if alert.Status != StatusScheduled {
			continue
		}
		if alert.ScheduledFor != nil && alert.ScheduledFor.After(now) {
			continue
		}
		due = append(due, alert.clone())
	}
	return due, nil
}

func (s *MemoryStorage) DeleteBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, alert := range s.alerts {
		if alert.CreatedAt.Before(cutoff) {
			delete(s.alerts, id)
			delete(s.history, id)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStorage) AppendHistory(ctx context.Context, alertID string, results []DeliveryResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history[alertID] = append(s.history[alertID], results...)
	return nil
}

func (s *MemoryStorage) FindHistory(ctx context.Context, alertID string) ([]DeliveryResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored := s.history[alertID]
	out := make([]DeliveryResult, len(stored))
	copy(out, stored)
	return out, nil
}
