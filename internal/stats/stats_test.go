package stats_test

import (
	"sync"
	"testing"

	"github.com/berleon/blinktree/internal/stats"
	"github.com/stretchr/testify/require"
)

func TestCountersConcurrent(t *testing.T) {
	var c stats.Counters
	var wg sync.WaitGroup
	const routines, perRoutine = 8, 500

	wg.Add(routines)
	for i := 0; i < routines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perRoutine; j++ {
				c.IncEntries()
				c.IncInsertions()
			}
		}()
	}
	wg.Wait()

	require.EqualValues(t, routines*perRoutine, c.Entries())
	require.EqualValues(t, routines*perRoutine, c.Insertions())

	snap := c.Snapshot()
	require.EqualValues(t, c.Entries(), snap.Entries)
}
