package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_CollapsesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var loads atomic.Int32

	loader := func(context.Context) (any, error) {
		loads.Add(1)
		time.Sleep(20 * time.Millisecond)
		return int64(42), nil
	}

	const workers = 24
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	failures := make(chan string, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "rankings:overall", loader)
			if err != nil {
				failures <- err.Error()
				return
			}
			if got, _ := v.(int64); got != 42 {
				failures <- "unexpected loaded value"
			}
		}()
	}

	close(start)
	wg.Wait()
	close(failures)
	for msg := range failures {
		t.Fatalf("worker failed: %s", msg)
	}

	if got := loads.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_GetOrLoad_ReturnsCachedValue(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var loads atomic.Int32

	loader := func(context.Context) (any, error) {
		loads.Add(1)
		return "first", nil
	}

	for i := 0; i < 3; i++ {
		if _, err := store.GetOrLoad(context.Background(), "k", loader); err != nil {
			t.Fatalf("GetOrLoad %d error: %v", i, err)
		}
	}

	if got := loads.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	ctx := context.Background()

	store.Set(ctx, "rankings:daily:2025-05-01", 1)
	store.Set(ctx, "rankings:daily:2025-05-02", 2)
	store.Set(ctx, "rankings:overall", 3)

	store.DeletePrefix(ctx, "rankings:daily:")

	if _, ok := store.Get(ctx, "rankings:daily:2025-05-01"); ok {
		t.Fatal("expected prefixed key to be deleted")
	}
	if _, ok := store.Get(ctx, "rankings:overall"); !ok {
		t.Fatal("expected unrelated key to survive")
	}
}
