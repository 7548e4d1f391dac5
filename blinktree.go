// Package blinktree implements a concurrent, ordered key-value index
// organized as a B-link tree: a B+ tree with a right-link at every
// level (Lehman & Yao, 1981), giving lock-free readers that tolerate
// concurrent splits and fine-grained per-node locking for writers.
//
// The hard core — the search/insert state machine, the per-node split
// protocol and its cascade to the root, and the lock discipline that
// makes correctness independent of any snapshot-consistent view of the
// tree — lives in this package and internal/blink. The page store,
// lock table and statistics sink are named collaborators with default,
// swappable implementations under internal/.
//
// Deletion is explicitly out of scope: Remove panics. There is no
// durability, crash recovery, transaction support, range scan,
// rebalancing on delete, MVCC, or secondary index — see SPEC_FULL.md
// for the full scope this module covers.
package blinktree

import (
	"cmp"
	"fmt"
	"iter"
	"log/slog"
	"sync/atomic"

	"github.com/berleon/blinktree/internal/blink"
	"github.com/berleon/blinktree/internal/latch"
	"github.com/berleon/blinktree/internal/node"
	"github.com/berleon/blinktree/internal/pagestore"
	"github.com/berleon/blinktree/internal/stats"
)

// minCapacity is the smallest fanout threshold a Tree accepts: a node
// needs room for at least a separator and two children to ever split
// meaningfully (spec §7, "Capacity misuse — fanout < 3 is rejected at
// construction").
const minCapacity = 3

type idScheme uint8

const (
	idSchemeSeq idScheme = iota
	idSchemeUUID
)

// Tree is the B-link tree index: an ordered mapping from K to V with
// guaranteed logarithmic point-lookup cost and high concurrency for
// writers. The zero value is not usable; construct with New.
type Tree[K cmp.Ordered, V any] struct {
	capacity int
	store    pagestore.Store[pagestore.PageID, node.Node[K, V]]
	locks    latch.Table[pagestore.PageID]
	stats    *stats.Counters
	log      *slog.Logger
	idScheme idScheme

	root atomic.Pointer[pagestore.PageID]
}

// New constructs an empty Tree with the given fanout threshold
// (keys-per-node capacity; a node splits once it holds more than
// capacity keys). capacity must be >= 3.
func New[K cmp.Ordered, V any](capacity int, opts ...Option[K, V]) *Tree[K, V] {
	if capacity < minCapacity {
		panic(&CapacityError{Capacity: capacity})
	}

	t := &Tree[K, V]{capacity: capacity, log: slog.Default()}
	for _, opt := range opts {
		opt(t)
	}
	if t.stats == nil {
		t.stats = &stats.Counters{}
	}
	if t.locks == nil {
		t.locks = latch.NewInMemoryTable[pagestore.PageID]()
	}
	if t.store == nil {
		var alloc pagestore.Allocator = pagestore.NewSeqAllocator(1)
		if t.idScheme == idSchemeUUID {
			alloc = pagestore.NewUUIDAllocator()
		}
		t.store = pagestore.NewInMemoryStore[pagestore.PageID, node.Node[K, V]](alloc)
	}

	rootID := pagestore.RootPageID()
	rootLeaf := node.NewEmptyRootLeaf[K, V](rootID)
	t.store.Write(rootID, node.WrapLeaf[K, V](rootLeaf))
	t.setRoot(rootID)
	t.stats.IncLeaves()

	return t
}

func (t *Tree[K, V]) loadRoot() pagestore.PageID { return *t.root.Load() }

func (t *Tree[K, V]) setRoot(id pagestore.PageID) { t.root.Store(&id) }

// mustRead reads a page the caller knows must exist; a miss means the
// tree's own invariants are broken (spec §7: fatal, not recoverable).
func (t *Tree[K, V]) mustRead(id pagestore.PageID) node.Node[K, V] {
	n, ok := t.store.Read(id)
	if !ok {
		t.log.Error("page store has no node for a known id", "page", id.String())
		panic(&CorruptionError{Reason: fmt.Sprintf("no node stored at page %s", id)})
	}
	return n
}

// Find returns the value bound to key, if any. The read path never
// acquires a lock: a reader that observes a node mid-split still
// finds the key by following right-links (spec §4.7 find, §5 reader
// protocol).
func (t *Tree[K, V]) Find(key K) (V, bool) {
	cur := t.loadRoot()
	n := t.mustRead(cur)

	for n.IsInterior() {
		res := blink.Scan[K](n.Interior(), key)
		cur = res.Target
		n = t.mustRead(cur)
	}

	for !blink.CanContain[K](n.Accessor(), key) {
		next, ok := n.Accessor().Link()
		if !ok {
			panic(&CorruptionError{Reason: "rightmost leaf cannot contain key"})
		}
		cur = next
		n = t.mustRead(cur)
	}

	return blink.Get(n.Leaf(), key)
}

// Insert binds key to value, splitting and cascading up to a new root
// as needed (spec §4.7 insert). Duplicate keys overwrite in place; see
// SPEC_FULL.md §7 for why that reading of the base spec's Open
// Question was taken as canonical.
func (t *Tree[K, V]) Insert(key K, value V) {
	var stack []pagestore.PageID
	cur := t.loadRoot()
	n := t.mustRead(cur)

	for n.IsInterior() {
		res := blink.Scan[K](n.Interior(), key)
		if res.Direction == blink.Down {
			stack = append(stack, cur)
		}
		cur = res.Target
		n = t.mustRead(cur)
	}

	leafID := cur
	t.locks.Lock(leafID)
	leaf := t.mustRead(leafID).Leaf()
	for {
		next, moved := blink.MoveRight[K](leaf, key)
		if !moved {
			break
		}
		t.locks.Lock(next)
		t.locks.Unlock(leafID)
		leafID = next
		leaf = t.mustRead(leafID).Leaf()
	}

	existed := blink.InsertLeaf(leaf, key, value)
	t.stats.IncInsertions()
	if !existed {
		t.stats.IncEntries()
	}

	if !leaf.NeedsSplit(t.capacity) {
		t.store.Write(leafID, node.WrapLeaf[K, V](leaf))
		t.locks.Unlock(leafID)
		t.log.Debug("insert: leaf write, no split", "page", leafID.String())
		return
	}

	newID := t.store.Allocate()
	right := blink.Split(leaf, newID)
	sep := leaf.MaxKey()

	// The new sibling is written before the shrunken original so a
	// concurrent reader that still holds the original's stale link
	// can follow it to the new sibling and find the promoted keys
	// (spec §5: "Splits are atomic-per-level").
	t.store.Write(newID, node.WrapLeaf[K, V](right))
	t.store.Write(leafID, node.WrapLeaf[K, V](leaf))
	t.stats.IncLeaves()
	t.log.Debug("insert: leaf split", "left", leafID.String(), "right", newID.String())

	t.cascade(stack, leafID, sep, newID)
}

// cascade propagates a split's promoted (separator, pointer) pair
// upward, splitting parents in turn, until a parent absorbs the
// promotion without overflowing or the root itself splits (spec §4.7
// step 5, "Cascade up"). The caller must already hold the lock on
// currentLevelID.
func (t *Tree[K, V]) cascade(stack []pagestore.PageID, currentLevelID pagestore.PageID, sep K, ptr pagestore.PageID) {
	for {
		if len(stack) == 0 {
			if currentLevelID == t.loadRoot() {
				t.replaceRoot(currentLevelID, sep, ptr)
				return
			}
			// A concurrent writer split the root out from under this
			// cascade between our descent and now. Re-derive the
			// visited stack with a bounded descent instead of failing.
			stack = t.reBacktrace(currentLevelID, sep)
			if len(stack) == 0 {
				panic(&CorruptionError{Reason: "re-backtrace after concurrent root split found no ancestor"})
			}
		}

		parentID := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		t.locks.Lock(parentID)
		t.locks.Unlock(currentLevelID)

		parent := t.mustRead(parentID).Interior()
		for {
			next, moved := blink.MoveRight[K](parent, sep)
			if !moved {
				break
			}
			t.locks.Lock(next)
			t.locks.Unlock(parentID)
			parentID = next
			parent = t.mustRead(parentID).Interior()
		}

		blink.InsertInterior[K](parent, sep, ptr)
		if !parent.NeedsSplit(t.capacity) {
			t.store.Write(parentID, node.WrapInterior[K, V](parent))
			t.locks.Unlock(parentID)
			t.log.Debug("insert: interior write, no split", "page", parentID.String())
			return
		}

		newParentID := t.store.Allocate()
		rightParent := blink.Split(parent, newParentID)
		newSep := parent.MaxKey()

		t.store.Write(newParentID, node.WrapInterior[K, V](rightParent))
		t.store.Write(parentID, node.WrapInterior[K, V](parent))
		t.stats.IncInterior()
		t.log.Debug("insert: interior split", "left", parentID.String(), "right", newParentID.String())

		currentLevelID, sep, ptr = parentID, newSep, newParentID
	}
}

// replaceRoot installs a brand-new interior root above currentLevelID
// and ptr (spec §4.7 step 6). The caller must hold currentLevelID's
// lock; replaceRoot releases it after clearing the Root flag there, so
// no reader can observe a stale Root flag together with a stale
// root id.
func (t *Tree[K, V]) replaceRoot(currentLevelID pagestore.PageID, sep K, ptr pagestore.PageID) {
	newRootID := t.store.Allocate()
	newRoot := node.New[K, pagestore.PageID](newRootID, node.FlagInterior|node.FlagRoot,
		[]K{sep}, []pagestore.PageID{currentLevelID, ptr})
	t.store.Write(newRootID, node.WrapInterior[K, V](newRoot))
	t.setRoot(newRootID)

	old := t.mustRead(currentLevelID)
	if old.IsInterior() {
		old.Interior().ClearRoot()
		t.store.Write(currentLevelID, node.WrapInterior[K, V](old.Interior()))
	} else {
		old.Leaf().ClearRoot()
		t.store.Write(currentLevelID, node.WrapLeaf[K, V](old.Leaf()))
	}
	t.locks.Unlock(currentLevelID)
	t.stats.IncInterior()
	t.log.Debug("insert: new root", "root", newRootID.String())
}

// reBacktrace re-derives the visited stack for currentLevelID after a
// concurrent root split emptied the cascade's own stack early (spec
// §4.7 step 5, "re-backtrace after root split"). It descends from the
// current root, using sep — the key just promoted out of
// currentLevelID — to pick a child at each level, until it finds an
// interior node whose children include currentLevelID.
func (t *Tree[K, V]) reBacktrace(target pagestore.PageID, sep K) []pagestore.PageID {
	var stack []pagestore.PageID
	cur := t.loadRoot()
	for cur != target {
		n := t.mustRead(cur)
		if !n.IsInterior() {
			panic(&CorruptionError{Reason: "re-backtrace descended below interior level without finding target"})
		}
		interior := n.Interior()
		stack = append(stack, cur)
		for _, v := range interior.Values() {
			if v == target {
				return stack
			}
		}
		res := blink.Scan[K](interior, sep)
		cur = res.Target
	}
	return stack
}

// Len reports the number of live entries (spec §6 len()).
func (t *Tree[K, V]) Len() int { return int(t.stats.Entries()) }

// Stats returns a point-in-time snapshot of the tree's counters (C4),
// additive observability surface beyond the base spec's bare len().
func (t *Tree[K, V]) Stats() stats.Snapshot { return t.stats.Snapshot() }

// Remove is unimplemented: deletion is explicitly out of scope for
// this spec. Calling it always panics (spec §6, §7).
func (t *Tree[K, V]) Remove(key K) {
	panic(&UnsupportedError{Operation: "remove"})
}

// Leaves walks every leaf entry in ascending key order by following
// the leftmost path down and then the right-link chain across the
// bottom level, the same traversal the base spec's §8 property 3/6
// tests already assume exists informally. It takes no locks; like
// Find, it is safe to call concurrently with writers.
func (t *Tree[K, V]) Leaves() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		cur := t.loadRoot()
		n := t.mustRead(cur)
		for n.IsInterior() {
			cur = n.Interior().Values()[0]
			n = t.mustRead(cur)
		}

		for {
			leaf := n.Leaf()
			keys, values := leaf.Keys(), leaf.Values()
			for i := range keys {
				if !yield(keys[i], values[i]) {
					return
				}
			}
			next, ok := leaf.Link()
			if !ok {
				return
			}
			cur = next
			n = t.mustRead(cur)
		}
	}
}
