package pool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestFuture_Get(t *testing.T) {
	t.Run("successful result", func(t *testing.T) {
		future := newFuture[string](1)

		go func() {
			time.Sleep(50 * time.Millisecond)
			future.resolve("success")
		}()

		value, err := future.Get()

		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != "success" {
			t.Errorf("expected value 'success', got %v", value)
		}
	})

	t.Run("error result", func(t *testing.T) {
		future := newFuture[string](2)
		expectedErr := errors.New("task failed")

		go future.reject(expectedErr)

		value, err := future.Get()

		if !errors.Is(err, expectedErr) {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if value != "" {
			t.Errorf("expected empty value, got %v", value)
		}
	})

	t.Run("multiple Get calls return same result", func(t *testing.T) {
		future := newFuture[int](3)
		go future.resolve(123)

		value1, err1 := future.Get()
		value2, err2 := future.Get()

		if value1 != value2 || err1 != err2 {
			t.Errorf("Get calls returned different results")
		}
		if value1 != 123 {
			t.Errorf("expected value 123, got %v", value1)
		}
	})

	t.Run("concurrent readers see the same outcome", func(t *testing.T) {
		future := newFuture[int](4)

		var wg sync.WaitGroup
		results := make([]int, 10)
		for i := range results {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i], _ = future.Get()
			}()
		}

		future.resolve(9)
		wg.Wait()

		for i, v := range results {
			if v != 9 {
				t.Errorf("reader %d got %d, expected 9", i, v)
			}
		}
	})
}

func TestFuture_WriteOnce(t *testing.T) {
	future := newFuture[int](1)

	if !future.resolve(1) {
		t.Fatal("first write must succeed")
	}
	if future.resolve(2) {
		t.Error("second resolve must be ignored")
	}
	if future.reject(errors.New("late")) {
		t.Error("reject after resolve must be ignored")
	}

	value, err := future.Get()
	if value != 1 || err != nil {
		t.Errorf("expected (1, nil), got (%d, %v)", value, err)
	}
}

func TestFuture_GetWithContext(t *testing.T) {
	t.Run("successful result before timeout", func(t *testing.T) {
		future := newFuture[string](1)
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		go func() {
			time.Sleep(20 * time.Millisecond)
			future.resolve("success")
		}()

		value, err := future.GetWithContext(ctx)
		if err != nil {
			t.Errorf("expected no error, got %v", err)
		}
		if value != "success" {
			t.Errorf("expected value 'success', got %v", value)
		}
	})

	t.Run("context timeout before result", func(t *testing.T) {
		future := newFuture[string](2)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
		defer cancel()

		_, err := future.GetWithContext(ctx)
		if !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("expected context.DeadlineExceeded, got %v", err)
		}

		// The outcome remains readable after giving up.
		future.resolve("late")
		value, err := future.Get()
		if err != nil || value != "late" {
			t.Errorf("expected (late, nil), got (%q, %v)", value, err)
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		future := newFuture[int](3)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := future.GetWithContext(ctx)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	})
}

func TestFuture_GetWithTimeout(t *testing.T) {
	future := newFuture[int](1)

	_, err := future.GetWithTimeout(20 * time.Millisecond)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}

	future.resolve(5)
	v, err := future.GetWithTimeout(20 * time.Millisecond)
	if err != nil || v != 5 {
		t.Errorf("expected (5, nil), got (%d, %v)", v, err)
	}
}

func TestFuture_TryGet(t *testing.T) {
	future := newFuture[int](1)

	if _, _, ready := future.TryGet(); ready {
		t.Error("expected not ready before completion")
	}
	if future.IsReady() {
		t.Error("IsReady must be false before completion")
	}
	select {
	case <-future.Done():
		t.Error("Done must not be closed before completion")
	default:
	}

	future.resolve(11)

	value, err, ready := future.TryGet()
	if !ready || err != nil || value != 11 {
		t.Errorf("expected (11, nil, true), got (%d, %v, %v)", value, err, ready)
	}
	if !future.IsReady() {
		t.Error("IsReady must be true after completion")
	}
	<-future.Done()
}

func TestFuture_ID(t *testing.T) {
	if got := newFuture[int](42).ID(); got != 42 {
		t.Errorf("expected ID 42, got %d", got)
	}
}
