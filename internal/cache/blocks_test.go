package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memCache struct {
	mu   sync.Mutex
	data map[string]string
	fail error
}

func newMemCache() *memCache { return &memCache{data: map[string]string{}} }

func (m *memCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return "", m.fail
	}
	v, ok := m.data[key]
	if !ok {
		return "", ErrMiss
	}
	return v, nil
}

func (m *memCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	m.data[key] = value
	return nil
}

func (m *memCache) Del(_ context.Context, keys ...string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return n, nil
}

func (m *memCache) Close() error { return nil }

type countingSource struct {
	blocked  map[uint][]uint
	blockers map[uint][]uint
	calls    int
}

func (s *countingSource) BlockedBy(_ context.Context, id uint) ([]uint, error) {
	s.calls++
	return s.blocked[id], nil
}

func (s *countingSource) BlockersOf(_ context.Context, id uint) ([]uint, error) {
	s.calls++
	return s.blockers[id], nil
}

func TestBlockSetsReadThrough(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{blocked: map[uint][]uint{1: {2}}, blockers: map[uint][]uint{2: {1}}}
	sets := NewBlockSets(src, newMemCache(), time.Minute)

	for i := 0; i < 3; i++ {
		ids, err := sets.BlockedBy(ctx, 1)
		if err != nil || len(ids) != 1 || ids[0] != 2 {
			t.Fatalf("blocked by 1 = %v err=%v", ids, err)
		}
	}
	if src.calls != 1 {
		t.Fatalf("source hit %d times, want 1", src.calls)
	}

	// 空集合也要快取
	if ids, _ := sets.BlockersOf(ctx, 1); len(ids) != 0 {
		t.Fatalf("blockers of 1 = %v", ids)
	}
	_, _ = sets.BlockersOf(ctx, 1)
	if src.calls != 2 {
		t.Fatalf("empty set not cached, calls=%d", src.calls)
	}
}

func TestBlockSetsInvalidate(t *testing.T) {
	ctx := context.Background()
	src := &countingSource{blocked: map[uint][]uint{}, blockers: map[uint][]uint{}}
	sets := NewBlockSets(src, newMemCache(), time.Minute)

	_, _ = sets.BlockedBy(ctx, 1)
	_, _ = sets.BlockersOf(ctx, 2)

	src.blocked[1] = []uint{2}
	src.blockers[2] = []uint{1}
	if err := sets.Invalidate(ctx, 1, 2); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	if ids, _ := sets.BlockedBy(ctx, 1); len(ids) != 1 {
		t.Fatalf("stale blocked set after invalidate: %v", ids)
	}
	if ids, _ := sets.BlockersOf(ctx, 2); len(ids) != 1 {
		t.Fatalf("stale blockers set after invalidate: %v", ids)
	}
}

func TestBlockSetsFallsBackWhenCacheFails(t *testing.T) {
	ctx := context.Background()
	mc := newMemCache()
	mc.fail = errors.New("connection refused")
	src := &countingSource{blocked: map[uint][]uint{5: {6}}}
	sets := NewBlockSets(src, mc, time.Minute)

	ids, err := sets.BlockedBy(ctx, 5)
	if err != nil || len(ids) != 1 || ids[0] != 6 {
		t.Fatalf("fallback = %v err=%v", ids, err)
	}
}

// racingSource 第一次讀取時在回傳舊集合前完成一次封鎖與失效
type racingSource struct {
	blocked map[uint][]uint
	during  func()
}

func (s *racingSource) BlockedBy(_ context.Context, id uint) ([]uint, error) {
	ids := s.blocked[id]
	if d := s.during; d != nil {
		s.during = nil
		d()
	}
	return ids, nil
}

func (s *racingSource) BlockersOf(context.Context, uint) ([]uint, error) { return nil, nil }

func TestBlockSetsInvalidateDuringRead(t *testing.T) {
	ctx := context.Background()
	src := &racingSource{blocked: map[uint][]uint{}}
	sets := NewBlockSets(src, newMemCache(), time.Minute)
	src.during = func() {
		src.blocked[1] = []uint{2}
		if err := sets.Invalidate(ctx, 1, 2); err != nil {
			t.Fatalf("invalidate: %v", err)
		}
	}

	if ids, _ := sets.BlockedBy(ctx, 1); len(ids) != 0 {
		t.Fatalf("first read = %v, want the pre-block set", ids)
	}
	ids, err := sets.BlockedBy(ctx, 1)
	if err != nil || len(ids) != 1 || ids[0] != 2 {
		t.Fatalf("second read = %v err=%v, want [2]", ids, err)
	}
}
