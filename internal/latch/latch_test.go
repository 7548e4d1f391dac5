package latch_test

import (
	"sync"
	"testing"
	"time"

	"github.com/berleon/blinktree/internal/latch"
	"github.com/stretchr/testify/require"
)

func TestInMemoryTableExcludes(t *testing.T) {
	tbl := latch.NewInMemoryTable[int]()
	tbl.Lock(1)

	locked := make(chan struct{})
	go func() {
		tbl.Lock(1)
		close(locked)
		tbl.Unlock(1)
	}()

	select {
	case <-locked:
		t.Fatal("second Lock on the same id returned while the first holder still held it")
	case <-time.After(50 * time.Millisecond):
	}

	tbl.Unlock(1)
	<-locked
}

func TestInMemoryTableIndependentIds(t *testing.T) {
	tbl := latch.NewInMemoryTable[int]()
	tbl.Lock(1)
	done := make(chan struct{})
	go func() {
		tbl.Lock(2)
		tbl.Unlock(2)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("locking a different id blocked on an unrelated holder")
	}
	tbl.Unlock(1)
}

func TestInMemoryTableConcurrentFuzz(t *testing.T) {
	tbl := latch.NewInMemoryTable[int]()
	var wg sync.WaitGroup
	var counter int
	const routines, iterations = 20, 100

	wg.Add(routines)
	for i := 0; i < routines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				tbl.Lock(0)
				counter++
				tbl.Unlock(0)
			}
		}()
	}
	wg.Wait()
	require.Equal(t, routines*iterations, counter)
}
