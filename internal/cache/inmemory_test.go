package cache

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func TestInMemoryListPushRangeTrim(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	for i := 1; i <= 5; i++ {
		if err := s.LPush(ctx, "k", fmt.Sprintf("msg-%d", i)); err != nil {
			t.Fatalf("LPush() error = %v", err)
		}
	}

	got, err := s.LRange(ctx, "k", 0, -1)
	if err != nil {
		t.Fatalf("LRange() error = %v", err)
	}
	if len(got) != 5 || got[0] != "msg-5" || got[4] != "msg-1" {
		t.Fatalf("LRange() = %v, want newest-first msg-5..msg-1", got)
	}

	if err := s.LTrim(ctx, "k", 0, 2); err != nil {
		t.Fatalf("LTrim() error = %v", err)
	}
	got, err = s.LRange(ctx, "k", 0, -1)
	if err != nil {
		t.Fatalf("LRange() error = %v", err)
	}
	if len(got) != 3 || got[0] != "msg-5" || got[2] != "msg-3" {
		t.Fatalf("after trim = %v, want [msg-5 msg-4 msg-3]", got)
	}
}

func TestInMemoryLRangeOutOfBounds(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()
	if err := s.LPush(ctx, "k", "only"); err != nil {
		t.Fatalf("LPush() error = %v", err)
	}

	got, err := s.LRange(ctx, "k", 5, 9)
	if err != nil {
		t.Fatalf("LRange() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("LRange() past end = %v, want empty", got)
	}

	got, err = s.LRange(ctx, "missing", 0, -1)
	if err != nil {
		t.Fatalf("LRange() error = %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("LRange() missing key = %v, want empty", got)
	}
}

func TestInMemoryGetSetIncr(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	if _, ok, err := s.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok=%v err=%v, want absent", ok, err)
	}
	if err := s.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, ok, err := s.Get(ctx, "k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("Get() = %q ok=%v err=%v", v, ok, err)
	}

	for want := int64(1); want <= 3; want++ {
		n, err := s.Incr(ctx, "c")
		if err != nil {
			t.Fatalf("Incr() error = %v", err)
		}
		if n != want {
			t.Fatalf("Incr() = %d, want %d", n, want)
		}
	}
}

func TestIncrementWithResetCrossesOnce(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	for i := 1; i <= 4; i++ {
		count, triggered, err := s.IncrementWithReset(ctx, "c", 5)
		if err != nil {
			t.Fatalf("IncrementWithReset() error = %v", err)
		}
		if triggered || count != int64(i) {
			t.Fatalf("increment %d = (%d, %v), want (%d, false)", i, count, triggered, i)
		}
	}

	count, triggered, err := s.IncrementWithReset(ctx, "c", 5)
	if err != nil {
		t.Fatalf("IncrementWithReset() error = %v", err)
	}
	if !triggered || count != 5 {
		t.Fatalf("5th increment = (%d, %v), want (5, true)", count, triggered)
	}

	count, triggered, err = s.IncrementWithReset(ctx, "c", 5)
	if err != nil {
		t.Fatalf("IncrementWithReset() error = %v", err)
	}
	if triggered || count != 1 {
		t.Fatalf("6th increment = (%d, %v), want (1, false)", count, triggered)
	}
}

func TestIncrementWithResetConcurrent(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryStore()

	const workers = 10
	const perWorker = 50
	triggers := make(chan struct{}, workers*perWorker)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				_, triggered, err := s.IncrementWithReset(ctx, "c", 5)
				if err != nil {
					t.Errorf("IncrementWithReset() error = %v", err)
					return
				}
				if triggered {
					triggers <- struct{}{}
				}
			}
		}()
	}
	wg.Wait()
	close(triggers)

	fired := 0
	for range triggers {
		fired++
	}
	if fired != workers*perWorker/5 {
		t.Fatalf("triggers fired = %d, want %d", fired, workers*perWorker/5)
	}
}

func TestFactoryDefaultsToInMemory(t *testing.T) {
	s, err := New(context.Background(), "")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()
	if _, ok := s.(*InMemoryStore); !ok {
		t.Fatalf("New(\"\") = %T, want *InMemoryStore", s)
	}
}
