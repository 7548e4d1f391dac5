package blinktree

import (
	"cmp"
	"log/slog"

	"github.com/berleon/blinktree/internal/latch"
	"github.com/berleon/blinktree/internal/node"
	"github.com/berleon/blinktree/internal/pagestore"
	"github.com/berleon/blinktree/internal/stats"
)

// Option configures a Tree at construction time. The teacher threads
// configuration through positional constructor arguments
// (NewBufMgr(name, bits, nodeMax)); once a constructor's parameter
// list grows past the couple of mandatory values (here, just
// capacity), the idiomatic shape the rest of the pack reaches for is a
// functional-options tail (mjm918-tur/pkg/hnsw/config.go configures
// its index the same way) rather than a struct of optional fields or a
// process-wide config file — this value IS the configured object, not
// a running process, so viper stays reserved for cmd/blstress (see
// SPEC_FULL.md §3).
type Option[K cmp.Ordered, V any] func(*Tree[K, V])

// WithLogger overrides the structured logger used for the cascade's
// diagnostic trail. Defaults to slog.Default().
func WithLogger[K cmp.Ordered, V any](logger *slog.Logger) Option[K, V] {
	return func(t *Tree[K, V]) { t.log = logger }
}

// WithStats overrides the counters collaborator (C4). Defaults to a
// fresh, private *stats.Counters.
func WithStats[K cmp.Ordered, V any](counters *stats.Counters) Option[K, V] {
	return func(t *Tree[K, V]) { t.stats = counters }
}

// WithStore overrides the page store collaborator (C2). Defaults to
// pagestore.NewInMemoryStore backed by a SeqAllocator.
func WithStore[K cmp.Ordered, V any](store pagestore.Store[pagestore.PageID, node.Node[K, V]]) Option[K, V] {
	return func(t *Tree[K, V]) { t.store = store }
}

// WithLockTable overrides the lock-table collaborator (C3). Defaults
// to latch.NewInMemoryTable.
func WithLockTable[K cmp.Ordered, V any](locks latch.Table[pagestore.PageID]) Option[K, V] {
	return func(t *Tree[K, V]) { t.locks = locks }
}

// WithUUIDPageIDs swaps the default monotonic SeqAllocator for
// pagestore.UUIDAllocator, the scheme bobboyms-storage-engine uses for
// row identifiers. No effect if WithStore also supplies a store (the
// supplied store owns its own allocator).
func WithUUIDPageIDs[K cmp.Ordered, V any]() Option[K, V] {
	return func(t *Tree[K, V]) { t.idScheme = idSchemeUUID }
}
