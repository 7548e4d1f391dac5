package blink_test

import (
	"testing"

	"github.com/berleon/blinktree/internal/blink"
	"github.com/berleon/blinktree/internal/node"
	"github.com/berleon/blinktree/internal/pagestore"
	"github.com/stretchr/testify/require"
)

func newID(seq uint64) pagestore.PageID {
	return pagestore.NewSeqAllocator(seq).Allocate()
}

func TestCanContainRoot(t *testing.T) {
	root := node.NewEmptyRootLeaf[int, string](newID(1))
	require.True(t, blink.CanContain[int](root, 42))
}

func TestCanContainRightmostCatchesGreater(t *testing.T) {
	n := node.New[int, string](newID(1), node.FlagLeaf, []int{1, 2, 3}, []string{"a", "b", "c"})
	require.True(t, blink.CanContain[int](n, 4))
	require.True(t, blink.CanContain[int](n, 1))
	require.True(t, blink.CanContain[int](n, 2))
}

func TestCanContainInteriorFence(t *testing.T) {
	n := node.New[int, string](newID(1), node.FlagLeaf, []int{1, 2, 3}, []string{"a", "b", "c"})
	n.SetLink(newID(2))
	require.True(t, blink.CanContain[int](n, 2))
	require.True(t, blink.CanContain[int](n, 3))
	require.False(t, blink.CanContain[int](n, 4))
}

func TestMoveRight(t *testing.T) {
	n := node.New[int, string](newID(1), node.FlagLeaf, []int{1, 2, 3}, []string{"a", "b", "c"})
	right := newID(2)
	n.SetLink(right)

	_, ok := blink.MoveRight[int](n, 2)
	require.False(t, ok)

	next, ok := blink.MoveRight[int](n, 4)
	require.True(t, ok)
	require.Equal(t, right, next)
}

func TestScanDownAndRight(t *testing.T) {
	childA, childB, sibling := newID(10), newID(11), newID(12)
	interior := node.New[int, pagestore.PageID](newID(1), node.FlagInterior, []int{5}, []pagestore.PageID{childA, childB})
	interior.SetLink(sibling)

	res := blink.Scan[int](interior, 3)
	require.Equal(t, blink.Down, res.Direction)
	require.Equal(t, childA, res.Target)

	res = blink.Scan[int](interior, 5)
	require.Equal(t, blink.Down, res.Direction)
	require.Equal(t, childA, res.Target)

	res = blink.Scan[int](interior, 9)
	require.Equal(t, blink.Right, res.Direction)
	require.Equal(t, sibling, res.Target)
}

func TestScanInteriorRightmostWithoutLinkDescendsToCatchAll(t *testing.T) {
	// An interior with no link is rightmost at its level, so a key above
	// its max descends into the trailing catch-all child.
	catchAll := newID(3)
	interior := node.New[int, pagestore.PageID](newID(1), node.FlagInterior, []int{5}, []pagestore.PageID{newID(2), catchAll})
	res := blink.Scan[int](interior, 100)
	require.Equal(t, blink.Down, res.Direction)
	require.Equal(t, catchAll, res.Target)
}

func TestGet(t *testing.T) {
	leaf := node.New[int, string](newID(1), node.FlagLeaf, []int{1, 2, 3}, []string{"a", "b", "c"})

	v, ok := blink.Get(leaf, 2)
	require.True(t, ok)
	require.Equal(t, "b", v)

	_, ok = blink.Get(leaf, 4)
	require.False(t, ok)
}

func TestInsertLeafOverwritesDuplicates(t *testing.T) {
	leaf := node.New[int, string](newID(1), node.FlagLeaf|node.FlagRoot, []int{1, 3}, []string{"a", "c"})

	existed := blink.InsertLeaf(leaf, 2, "b")
	require.False(t, existed)
	require.Equal(t, []int{1, 2, 3}, leaf.Keys())
	require.Equal(t, []string{"a", "b", "c"}, leaf.Values())

	existed = blink.InsertLeaf(leaf, 2, "bb")
	require.True(t, existed)
	require.Equal(t, []string{"a", "bb", "c"}, leaf.Values())
}

func TestInsertInteriorPlacesChildToTheRight(t *testing.T) {
	childLow, childMid, childHigh := newID(10), newID(11), newID(12)
	n := node.New[int, pagestore.PageID](newID(1), node.FlagInterior|node.FlagRoot, []int{5}, []pagestore.PageID{childLow, childHigh})

	blink.InsertInterior(n, 3, childMid)
	require.Equal(t, []int{3, 5}, n.Keys())
	require.Equal(t, []pagestore.PageID{childLow, childMid, childHigh}, n.Values())
}

func TestSplitLeafKeepsArityEqual(t *testing.T) {
	leaf := node.New[int, string](newID(1), node.FlagLeaf, []int{1, 2, 3, 4, 5}, []string{"a", "b", "c", "d", "e"})
	right := blink.Split(leaf, newID(2))

	require.Equal(t, leaf.Len(), len(leaf.Values()))
	require.Equal(t, right.Len(), len(right.Values()))
	require.Less(t, leaf.MaxKey(), right.MinKey())
}

func TestSplitInteriorPreservesFenceArity(t *testing.T) {
	// Root/rightmost interior: values = keys + 1 (the trailing catch-all
	// child). After an overflow insert and split, the left half must
	// drop to values == keys (no longer rightmost), and the right half
	// must carry the extra trailing value (it inherits rightmost-ness).
	c := make([]pagestore.PageID, 6)
	for i := range c {
		c[i] = newID(uint64(i + 10))
	}
	n := node.New[int, pagestore.PageID](newID(1), node.FlagInterior|node.FlagRoot,
		[]int{2, 4, 6, 8}, []pagestore.PageID{c[0], c[1], c[2], c[3], c[4]})

	blink.InsertInterior(n, 10, c[5])
	require.Equal(t, 5, n.Len())
	require.Equal(t, 6, len(n.Values()))

	right := blink.Split(n, newID(2))

	require.Equal(t, n.Len(), len(n.Values()), "left half must lose its trailing catch-all child once it has a right sibling")
	require.Equal(t, right.Len()+1, len(right.Values()), "right half inherits the trailing catch-all child")
	require.True(t, right.IsRightmost())
	require.False(t, n.IsRightmost())
}
