// Package blink implements the B-link algebra (spec §4.6, C6): the
// position-aware operations the tree driver composes to search and
// insert. Every function here is a pure transformation of the node(s)
// passed in; none of them touch the page store or lock table — that
// coordination lives in the root package's Tree.
package blink

import (
	"cmp"

	"github.com/berleon/blinktree/internal/node"
	"github.com/berleon/blinktree/internal/ordered"
	"github.com/berleon/blinktree/internal/pagestore"
)

// CanContain reports whether n can contain key, per spec invariant 6:
// true if n is Root, or n is rightmost and key exceeds its max, or key
// is within n's fence (<= max key).
func CanContain[K cmp.Ordered](n node.Accessor[K], key K) bool {
	if n.IsRoot() {
		return true
	}
	if !n.HasKeys() {
		// Only the empty root leaf has no keys; any other node always
		// carries at least its fence key.
		return n.IsRightmost()
	}
	if key <= n.MaxKey() {
		return true
	}
	return n.IsRightmost()
}

// MoveRight reports the right sibling to chase when n cannot contain
// key. By invariant 6, a node that cannot contain key always has a
// link; ok is false only when n already can contain key.
func MoveRight[K cmp.Ordered](n node.Accessor[K], key K) (next pagestore.PageID, ok bool) {
	if CanContain(n, key) {
		return pagestore.PageID{}, false
	}
	next, ok = n.Link()
	return next, ok
}

// Direction is which way scan decided to move.
type Direction uint8

const (
	Down Direction = iota
	Right
)

// ScanResult is the outcome of Scan: which page to visit next, and
// whether that's a descent into a child or a move along the link.
type ScanResult struct {
	Target    pagestore.PageID
	Direction Direction
}

// Scan evaluates an interior node against key (spec §4.6 scan): if the
// node cannot contain key, move right along the link chain; otherwise
// follow the child at the fence position located by lower_bound.
func Scan[K cmp.Ordered](n *node.Physical[K, pagestore.PageID], key K) ScanResult {
	if !CanContain[K](n, key) {
		next, ok := n.Link()
		if !ok {
			panic(ErrCorruption{Reason: "interior node cannot contain key but has no right link"})
		}
		return ScanResult{Target: next, Direction: Right}
	}
	i := ordered.LowerBound(n.Keys(), key)
	return ScanResult{Target: n.Values()[i], Direction: Down}
}

// Get looks up key in a leaf node (spec §4.6 get): nothing if the leaf
// cannot contain key, nothing if the key isn't present, else the bound
// value.
func Get[K cmp.Ordered, V any](leaf *node.Physical[K, V], key K) (value V, found bool) {
	if !CanContain[K](leaf, key) {
		return value, false
	}
	i := ordered.LowerBound(leaf.Keys(), key)
	if i < leaf.Len() && leaf.Keys()[i] == key {
		return leaf.Values()[i], true
	}
	return value, false
}

// InsertLeaf installs key/value into a leaf (spec §4.6
// insert_into_leaf). Duplicate-key policy: overwrite in place rather
// than the reference implementation's unconditional multiset insert
// (see SPEC_FULL.md §7 and DESIGN.md for why). existed reports
// whether key was already present (and so was overwritten rather than
// newly inserted).
func InsertLeaf[K cmp.Ordered, V any](leaf *node.Physical[K, V], key K, value V) (existed bool) {
	i := ordered.LowerBound(leaf.Keys(), key)
	if i < leaf.Len() && leaf.Keys()[i] == key {
		leaf.SetValueAt(i, value)
		return true
	}
	leaf.InsertAt(i, key, value)
	return false
}

// InsertInterior installs a new separator and its right child into an
// interior node (spec §4.6 insert_into_interior). The child occupies
// the slot to the right of the new separator: key becomes the upper
// bound of the existing child at i, and child becomes the child for
// keys in (key, next_separator].
func InsertInterior[K cmp.Ordered](n *node.Physical[K, pagestore.PageID], key K, child pagestore.PageID) {
	i := ordered.LowerBound(n.Keys(), key)
	n.InsertKeyAt(i, key)
	n.InsertValueAt(i+1, child)
}

// Split is the split half of split_and_insert (spec §4.6): given a
// node that has already had its over-capacity insert applied, allocate
// the high half onto a fresh sibling identified by newID. It is
// generic over the node's value type, so the same function serves
// both leaf splits (V = user value) and interior splits (V = PageID).
func Split[K cmp.Ordered, V any](p *node.Physical[K, V], newID pagestore.PageID) *node.Physical[K, V] {
	return node.Split(p, newID)
}

// ErrCorruption signals a violated structural invariant: a scan that
// found neither a child to descend into nor a link to move along. The
// tree driver reports its own failures (such as a store read that
// failed for a known id) with the root package's CorruptionError
// instead. Per spec §7 this is fatal — there is no recoverable path.
type ErrCorruption struct {
	Reason string
}

func (e ErrCorruption) Error() string {
	return "blinktree: corruption: " + e.Reason
}
