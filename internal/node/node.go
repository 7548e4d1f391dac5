// Package node defines the physical node record (spec §4.5, C5): the
// mutable keys/values/link structure shared by interior and leaf pages,
// plus the split and link mutators the B-link algebra composes.
//
// A single generic Physical[K, V] serves both roles — V is PageID for
// an interior node's children, or the user value type for a leaf's
// payloads — matching the spec's PhysicalNode<K, V>. The flag set
// carried on the node (Design note in spec.md §9) distinguishes which
// role a given instantiation plays, rather than threading a parameter
// through every call.
package node

import "github.com/berleon/blinktree/internal/pagestore"

// Flags is the small set of orthogonal type markers a node carries.
// Root may coexist with either Interior or Leaf; Interior and Leaf are
// mutually exclusive.
type Flags uint8

const (
	FlagLeaf Flags = 1 << iota
	FlagInterior
	FlagRoot
)

// Accessor is the read-only view the B-link algebra (package blink)
// needs to evaluate can_contain and move_right without caring whether
// the underlying node is an interior node or a leaf. Physical[K, V]
// satisfies it for any V.
type Accessor[K any] interface {
	IsRoot() bool
	IsRightmost() bool
	HasKeys() bool
	MaxKey() K
	Link() (pagestore.PageID, bool)
}

// Physical is the mutable record backing one page: type flags, self
// id, strictly-ascending keys, and the parallel values sequence
// (children for an interior node, payloads for a leaf), plus the
// right-link to the next sibling at this level.
type Physical[K any, V any] struct {
	flags  Flags
	id     pagestore.PageID
	keys   []K
	values []V
	link   *pagestore.PageID
}

// New constructs a node with the given identity, flags and contents.
// The caller owns keys/values; New does not copy them.
func New[K any, V any](id pagestore.PageID, flags Flags, keys []K, values []V) *Physical[K, V] {
	return &Physical[K, V]{id: id, flags: flags, keys: keys, values: values}
}

// NewEmptyRootLeaf builds the single node a brand-new tree starts
// with: an empty Leaf also flagged Root, rightmost (link is None).
func NewEmptyRootLeaf[K any, V any](id pagestore.PageID) *Physical[K, V] {
	return New[K, V](id, FlagLeaf|FlagRoot, nil, nil)
}

func (p *Physical[K, V]) ID() pagestore.PageID { return p.id }

func (p *Physical[K, V]) Keys() []K     { return p.keys }
func (p *Physical[K, V]) Values() []V   { return p.values }
func (p *Physical[K, V]) Len() int      { return len(p.keys) }
func (p *Physical[K, V]) HasKeys() bool { return len(p.keys) > 0 }

func (p *Physical[K, V]) IsRoot() bool      { return p.flags&FlagRoot != 0 }
func (p *Physical[K, V]) IsLeaf() bool      { return p.flags&FlagLeaf != 0 }
func (p *Physical[K, V]) IsInterior() bool  { return p.flags&FlagInterior != 0 }
func (p *Physical[K, V]) IsRightmost() bool { return p.link == nil }

// ClearRoot removes the Root flag, used during root replacement (spec
// §4.7 step 6: "clear the Root flag on the node at current_level_id").
func (p *Physical[K, V]) ClearRoot() { p.flags &^= FlagRoot }

// Flags exposes the raw flag set, chiefly so a split can propagate the
// Interior/Leaf bit to the new sibling while dropping Root (Root is
// never propagated to a split-off node).
func (p *Physical[K, V]) Flags() Flags          { return p.flags }
func (p *Physical[K, V]) SplitFlags() Flags     { return p.flags &^ FlagRoot }
func (p *Physical[K, V]) SetFlags(flags Flags)  { p.flags = flags }

// MaxKey returns the highest key on the node. Callers must not invoke
// it on a node with no keys (only the empty root leaf has none, and
// can_contain never needs MaxKey there — it's root, so it always
// contains).
func (p *Physical[K, V]) MaxKey() K {
	return p.keys[len(p.keys)-1]
}

// MinKey returns the lowest key on the node.
func (p *Physical[K, V]) MinKey() K {
	return p.keys[0]
}

// Link reports the right-sibling id, or ok=false if this node is
// rightmost at its level.
func (p *Physical[K, V]) Link() (pagestore.PageID, bool) {
	if p.link == nil {
		return pagestore.PageID{}, false
	}
	return *p.link, true
}

// SetLink installs a new right-sibling id and returns whatever link
// this node held before (ok=false if it was rightmost).
func (p *Physical[K, V]) SetLink(next pagestore.PageID) (old pagestore.PageID, ok bool) {
	if p.link != nil {
		old = *p.link
		ok = true
	}
	n := next
	p.link = &n
	return old, ok
}

// adoptLink sets this node's link directly to a previously-observed
// value (possibly "no link"), used when a freshly split-off sibling
// must inherit the original node's old right-link.
func (p *Physical[K, V]) adoptLink(id pagestore.PageID, ok bool) {
	if !ok {
		p.link = nil
		return
	}
	v := id
	p.link = &v
}

// NeedsSplit reports whether the node holds more keys than the given
// fanout threshold allows.
func (p *Physical[K, V]) NeedsSplit(capacity int) bool {
	return len(p.keys) > capacity
}

// SplitAt truncates this node to its first pos keys and values and
// returns the high half that was removed, for the caller to hand to a
// freshly allocated sibling node. Both sequences are cut at the same
// index: keys and values are front-aligned (child/value i pairs with
// key i), so cutting at pos always leaves the low half with no
// trailing entry and carries any trailing "catch-all" child — the
// extra value a Root or rightmost interior node holds beyond its last
// key, invariant 4 — into the high half along with whichever keys it
// exceeds, which is exactly the half that inherits rightmost status.
func (p *Physical[K, V]) SplitAt(pos int) (rightKeys []K, rightValues []V) {
	rightKeys = append([]K(nil), p.keys[pos:]...)
	rightValues = append([]V(nil), p.values[pos:]...)
	p.keys = p.keys[:pos:pos]
	p.values = p.values[:pos:pos]
	return rightKeys, rightValues
}

// InsertAt splices key/value into position i of both sequences at
// once. Valid only when keys and values are the same length before
// the call (the leaf case, and the non-root non-rightmost interior
// case); see InsertKeyAt/InsertValueAt for the general, independently
// indexed form interior insertion needs.
func (p *Physical[K, V]) InsertAt(i int, key K, value V) {
	p.InsertKeyAt(i, key)
	p.InsertValueAt(i, value)
}

// InsertKeyAt splices key into the keys sequence at index i.
func (p *Physical[K, V]) InsertKeyAt(i int, key K) {
	var zero K
	p.keys = append(p.keys, zero)
	copy(p.keys[i+1:], p.keys[i:])
	p.keys[i] = key
}

// InsertValueAt splices value into the values sequence at index i.
func (p *Physical[K, V]) InsertValueAt(i int, value V) {
	var zero V
	p.values = append(p.values, zero)
	copy(p.values[i+1:], p.values[i:])
	p.values[i] = value
}

// SetValueAt overwrites the value bound to the key already at index i.
func (p *Physical[K, V]) SetValueAt(i int, value V) {
	p.values[i] = value
}

// Split produces the new right sibling of p, mutating p in place to
// retain only the low half (spec §4.5 split_at / §4.6 split_and_insert
// steps 2-5). It is the shared "split" half of split_and_insert: the
// caller has already performed the over-capacity insert on p via
// InsertAt (leaf) or InsertKeyAt/InsertValueAt (interior) before
// calling Split. The new sibling's flags
// match p's (Interior/Leaf), minus Root, which is never propagated;
// the new sibling is rightmost iff p was, and p's link becomes newID.
func Split[K any, V any](p *Physical[K, V], newID pagestore.PageID) *Physical[K, V] {
	mid := len(p.keys) / 2
	rightKeys, rightValues := p.SplitAt(mid)
	oldLink, hadLink := p.SetLink(newID)

	right := New(newID, p.SplitFlags(), rightKeys, rightValues)
	right.adoptLink(oldLink, hadLink)
	return right
}

// Node is the tagged Interior/Leaf variant stored by the page store
// (spec §3: "a tagged variant: Interior(PhysicalNode<Key, PageId>) or
// Leaf(PhysicalNode<Key, Value>)"). Exactly one of Interior/Leaf is
// non-nil for any well-formed Node.
type Node[K any, V any] struct {
	interior *Physical[K, pagestore.PageID]
	leaf     *Physical[K, V]
}

func WrapInterior[K any, V any](p *Physical[K, pagestore.PageID]) Node[K, V] {
	return Node[K, V]{interior: p}
}

func WrapLeaf[K any, V any](p *Physical[K, V]) Node[K, V] {
	return Node[K, V]{leaf: p}
}

func (n Node[K, V]) IsInterior() bool { return n.interior != nil }
func (n Node[K, V]) IsLeaf() bool     { return n.leaf != nil }

// Interior returns the underlying interior physical node. Callers
// must check IsInterior first.
func (n Node[K, V]) Interior() *Physical[K, pagestore.PageID] { return n.interior }

// Leaf returns the underlying leaf physical node. Callers must check
// IsLeaf first.
func (n Node[K, V]) Leaf() *Physical[K, V] { return n.leaf }

// Accessor returns whichever half of the variant is populated, typed
// as the read-only view the B-link algebra needs.
func (n Node[K, V]) Accessor() Accessor[K] {
	if n.interior != nil {
		return n.interior
	}
	return n.leaf
}
