package memstore

import (
	"context"
	"sync"
	"testing"
)

func TestGetMissing(t *testing.T) {
	s := New()
	_, ok, err := s.Get(context.Background(), "nope")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Fatal("expected miss on empty store")
	}
}

func TestPutReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()
	if err := s.Put(ctx, "k", "old"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put(ctx, "k", "new"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	text, ok, _ := s.Get(ctx, "k")
	if !ok || text != "new" {
		t.Errorf("expected new, got %q (found=%v)", text, ok)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 entry, got %d", s.Len())
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	s := New()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := string(rune('a' + i))
			_ = s.Put(ctx, key, key)
			_, _, _ = s.Get(ctx, key)
		}(i)
	}
	wg.Wait()

	if s.Len() != 16 {
		t.Errorf("expected 16 entries, got %d", s.Len())
	}
}
