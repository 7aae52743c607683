package cache

import (
	"context"
	"fmt"
	"strconv"
	"sync"
)

// InMemoryStore is a redis-compatible in-process store for local/dev use.
type InMemoryStore struct {
	mu     sync.Mutex
	values map[string]string
	lists  map[string][]string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		values: make(map[string]string),
		lists:  make(map[string][]string),
	}
}

func (s *InMemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok, nil
}

func (s *InMemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
	return nil
}

func (s *InMemoryStore) LPush(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = append([]string{value}, s.lists[key]...)
	return nil
}

func (s *InMemoryStore) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	lo, hi, ok := clampRange(start, stop, int64(len(list)))
	if !ok {
		return nil, nil
	}
	out := make([]string, hi-lo+1)
	copy(out, list[lo:hi+1])
	return out, nil
}

func (s *InMemoryStore) LTrim(_ context.Context, key string, start, stop int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.lists[key]
	lo, hi, ok := clampRange(start, stop, int64(len(list)))
	if !ok {
		delete(s.lists, key)
		return nil
	}
	s.lists[key] = list[lo : hi+1]
	return nil
}

func (s *InMemoryStore) Incr(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.incrLocked(key)
}

func (s *InMemoryStore) IncrementWithReset(_ context.Context, key string, threshold int64) (int64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count, err := s.incrLocked(key)
	if err != nil {
		return 0, false, err
	}
	if count >= threshold {
		s.values[key] = "0"
		return count, true, nil
	}
	return count, false, nil
}

func (s *InMemoryStore) Close() error { return nil }

func (s *InMemoryStore) incrLocked(key string) (int64, error) {
	var n int64
	if raw, ok := s.values[key]; ok {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %q is not an integer", key)
		}
		n = parsed
	}
	n++
	s.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

// clampRange resolves redis-style inclusive start/stop (negative = from tail)
// against a list of length n. ok is false when the range is empty.
func clampRange(start, stop, n int64) (int64, int64, bool) {
	if n == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n || stop < 0 {
		return 0, 0, false
	}
	return start, stop, true
}
