// Package stats holds the monotonic, non-blocking counters the tree
// driver updates on every insert and split. They exist for testability
// and capacity reporting; the algorithm never branches on them.
package stats

import "sync/atomic"

// Counters is safe for concurrent use without external synchronization.
type Counters struct {
	entries    atomic.Int64
	interior   atomic.Int64
	leaves     atomic.Int64
	insertions atomic.Int64
	deletions  atomic.Int64
}

func (c *Counters) IncEntries()    { c.entries.Add(1) }
func (c *Counters) DecEntries()    { c.entries.Add(-1) }
func (c *Counters) IncInterior()   { c.interior.Add(1) }
func (c *Counters) IncLeaves()     { c.leaves.Add(1) }
func (c *Counters) IncInsertions() { c.insertions.Add(1) }
func (c *Counters) IncDeletions()  { c.deletions.Add(1) }

func (c *Counters) Entries() int64    { return c.entries.Load() }
func (c *Counters) Interior() int64   { return c.interior.Load() }
func (c *Counters) Leaves() int64     { return c.leaves.Load() }
func (c *Counters) Insertions() int64 { return c.insertions.Load() }
func (c *Counters) Deletions() int64  { return c.deletions.Load() }

// Snapshot is a point-in-time copy, returned to embedders via
// Tree.Stats() so they don't hold a reference into the live counters.
type Snapshot struct {
	Entries    int64
	Interior   int64
	Leaves     int64
	Insertions int64
	Deletions  int64
}

func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		Entries:    c.Entries(),
		Interior:   c.Interior(),
		Leaves:     c.Leaves(),
		Insertions: c.Insertions(),
		Deletions:  c.Deletions(),
	}
}
