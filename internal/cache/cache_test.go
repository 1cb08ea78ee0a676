package cache

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	c := New[int, string](4)
	if c.Capacity() != 4 {
		t.Errorf("Capacity() = %d, want 4", c.Capacity())
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}

	if got := New[int, string](0).Capacity(); got != DefaultCapacity {
		t.Errorf("Capacity() with 0 = %d, want %d", got, DefaultCapacity)
	}
}

func TestCache_GetSet(t *testing.T) {
	c := New[int, string](4)
	c.Set(1, "one")

	if v, ok := c.Get(1); !ok || v != "one" {
		t.Errorf("Get(1) = %q, %v, want one, true", v, ok)
	}
	if _, ok := c.Get(2); ok {
		t.Error("Get(2) found a missing key")
	}

	c.Set(1, "uno")
	if v, _ := c.Get(1); v != "uno" {
		t.Errorf("Get(1) after overwrite = %q, want uno", v)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1", c.Len())
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](3)
	c.Set(1, 1)
	c.Set(2, 2)
	c.Set(3, 3)

	// Touch 1 so 2 becomes the oldest.
	c.Get(1)
	c.Set(4, 4)

	if _, ok := c.Get(2); ok {
		t.Error("key 2 should have been evicted")
	}
	for _, k := range []int{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("key %d should still be cached", k)
		}
	}
	if got := c.Stats().Evictions; got != 1 {
		t.Errorf("Evictions = %d, want 1", got)
	}
}

func TestCache_GetOrCreate(t *testing.T) {
	c := New[int, int](4)
	calls := 0
	create := func() int {
		calls++
		return 42
	}

	if v := c.GetOrCreate(7, create); v != 42 {
		t.Errorf("GetOrCreate = %d, want 42", v)
	}
	if v := c.GetOrCreate(7, create); v != 42 {
		t.Errorf("GetOrCreate (cached) = %d, want 42", v)
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.HitRate != 0.5 {
		t.Errorf("Stats() = %+v, want 1 hit, 1 miss, rate 0.5", st)
	}
}

func TestCache_GetOrLoadErrorNotCached(t *testing.T) {
	c := New[int, int](4)
	errBoom := errors.New("boom")

	if _, err := c.GetOrLoad(1, func() (int, error) { return 0, errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("GetOrLoad error = %v, want %v", err, errBoom)
	}
	if c.Len() != 0 {
		t.Errorf("Len() after failed load = %d, want 0", c.Len())
	}

	v, err := c.GetOrLoad(1, func() (int, error) { return 5, nil })
	if err != nil || v != 5 {
		t.Errorf("GetOrLoad retry = %d, %v, want 5, nil", v, err)
	}
}

func TestCache_DeleteClear(t *testing.T) {
	c := New[int, int](4)
	c.Set(1, 1)
	c.Set(2, 2)

	if !c.Delete(1) {
		t.Error("Delete(1) = false, want true")
	}
	if c.Delete(1) {
		t.Error("Delete(1) twice = true, want false")
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", c.Len())
	}
	c.Set(3, 3)
	if v, ok := c.Get(3); !ok || v != 3 {
		t.Error("cache unusable after Clear")
	}
}

func TestCache_ConcurrentGetOrCreate(t *testing.T) {
	c := New[int, int](16)
	var calls atomic.Int32

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCreate(1, func() int {
				calls.Add(1)
				return 1
			})
		}()
	}
	wg.Wait()

	if calls.Load() != 1 {
		t.Errorf("create called %d times under contention, want 1", calls.Load())
	}
}

func TestCache_GetOrLoadDifferentKeysInParallel(t *testing.T) {
	c := New[int, int](4)
	entered := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_, _ = c.GetOrLoad(1, func() (int, error) {
			close(entered)
			<-release
			return 1, nil
		})
	}()
	<-entered

	done := make(chan struct{})
	go func() {
		defer close(done)
		if v, err := c.GetOrLoad(2, func() (int, error) { return 2, nil }); err != nil || v != 2 {
			t.Errorf("GetOrLoad(2) = %d, %v, want 2", v, err)
		}
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("GetOrLoad(2) blocked behind the load of key 1")
	}
	close(release)
}

func TestCache_GetOrLoadSharesInflight(t *testing.T) {
	c := New[int, int](4)
	var loads atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.GetOrLoad(7, func() (int, error) {
				loads.Add(1)
				<-release
				return 42, nil
			})
			if err != nil || v != 42 {
				t.Errorf("GetOrLoad(7) = %d, %v, want 42", v, err)
			}
		}()
	}
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if loads.Load() != 1 {
		t.Errorf("load called %d times, want 1", loads.Load())
	}
}

func TestCache_GetOrLoadPanicReleasesKey(t *testing.T) {
	c := New[int, int](4)

	func() {
		defer func() {
			if recover() == nil {
				t.Error("panic in load was swallowed")
			}
		}()
		_, _ = c.GetOrLoad(1, func() (int, error) { panic("boom") })
	}()

	v, err := c.GetOrLoad(1, func() (int, error) { return 3, nil })
	if err != nil || v != 3 {
		t.Errorf("GetOrLoad after panic = %d, %v, want 3, nil", v, err)
	}
}

// =============================================================================
// Sharded
// =============================================================================

func TestSharded_Basic(t *testing.T) {
	s := NewSharded[int64, int](8, Int64Hasher)

	for i := int64(0); i < 100; i++ {
		s.Set(i, int(i))
	}
	for i := int64(0); i < 100; i++ {
		if v, ok := s.Get(i); !ok || v != int(i) {
			t.Errorf("Get(%d) = %d, %v", i, v, ok)
		}
	}

	if s.Len() != 100 {
		t.Errorf("Len() = %d, want 100", s.Len())
	}
	if st := s.Stats(); st.Capacity != 8*ShardCount {
		t.Errorf("Stats().Capacity = %d, want %d", st.Capacity, 8*ShardCount)
	}

	s.Clear()
	if s.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", s.Len())
	}
}

func TestSharded_BoundedPerShard(t *testing.T) {
	s := NewSharded[int64, int](2, Int64Hasher)
	for i := int64(0); i < 1000; i++ {
		s.Set(i, 0)
	}
	if got := s.Len(); got > 2*ShardCount {
		t.Errorf("Len() = %d, want <= %d", got, 2*ShardCount)
	}
}

func TestSharded_GetOrLoadConcurrent(t *testing.T) {
	s := NewSharded[int64, int64](64, Int64Hasher)
	var loads atomic.Int64

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := int64(0); k < 50; k++ {
				v, err := s.GetOrLoad(k, func() (int64, error) {
					loads.Add(1)
					return k * 2, nil
				})
				if err != nil || v != k*2 {
					t.Errorf("GetOrLoad(%d) = %d, %v", k, v, err)
				}
			}
		}()
	}
	wg.Wait()

	if loads.Load() != 50 {
		t.Errorf("loads = %d, want 50", loads.Load())
	}
}

func TestInt64Hasher_Spreads(t *testing.T) {
	var used [ShardCount]bool
	for i := int64(0); i < 256; i++ {
		used[Int64Hasher(i)&shardMask] = true
	}
	for i, ok := range used {
		if !ok {
			t.Errorf("shard %d never selected", i)
		}
	}
}
