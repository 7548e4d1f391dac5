package blinktree

import "fmt"

// CorruptionError reports a violated structural invariant detected by
// the tree driver: a store read that found nothing for a known page
// id, a leaf that cannot contain the key and has no link to move
// along, or a cascade that cannot find its parent. A failed scan of an
// interior node panics with internal/blink's ErrCorruption instead. Per the
// base spec's §7 these are fatal — Find/Insert panic with this error
// rather than returning one, since the API is declared infallible for
// well-formed input and there is no safe way to keep operating on a
// tree whose invariants have broken.
type CorruptionError struct {
	Reason string
}

func (e *CorruptionError) Error() string {
	return fmt.Sprintf("blinktree: corruption: %s", e.Reason)
}

// UnsupportedError reports a call to an operation this spec leaves
// unimplemented. Remove is the only one: deletion is explicitly out of
// scope (spec.md §1, §6, §7).
type UnsupportedError struct {
	Operation string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("blinktree: unsupported: %s", e.Operation)
}

// CapacityError reports a construction-time misuse: a fanout threshold
// too small to ever hold a valid split (spec §7: "Capacity misuse —
// fanout < 3 is rejected at construction").
type CapacityError struct {
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("blinktree: capacity %d is too small, need >= %d", e.Capacity, minCapacity)
}
