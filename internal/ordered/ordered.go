// Package ordered provides the binary-search primitive the B-link tree
// uses to locate insertion and child-follow positions within a sorted
// key sequence.
package ordered

import "cmp"

// LowerBound returns the smallest index i such that seq[i] >= key, or
// len(seq) if no such index exists. seq must already be sorted in
// ascending order; an empty seq yields 0.
func LowerBound[K cmp.Ordered](seq []K, key K) int {
	low, high := 0, len(seq)
	for low < high {
		mid := int(uint(low+high) >> 1)
		if cmp.Less(seq[mid], key) {
			low = mid + 1
		} else {
			high = mid
		}
	}
	return low
}
