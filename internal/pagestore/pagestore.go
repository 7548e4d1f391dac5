// Package pagestore is the opaque persistence collaborator named in the
// spec: it mints page identifiers and holds the node stored under each
// one. The reference implementation, InMemoryStore, is an in-memory map
// guarded for concurrent readers and writers, matching the teacher's
// BufMgr pool except without the disk-backed mmap machinery a real page
// cache would need (out of scope: this tree never persists).
package pagestore

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// scheme distinguishes the two ways this package can mint a PageID.
// The sequential scheme (SeqAllocator, the teacher's own uid uint64
// counter) is the default; the UUID scheme (UUIDAllocator) is wired in
// for embedders who want globally-unique, time-ordered ids, the way
// bobboyms-storage-engine mints row ids with uuid.NewV7.
type scheme uint8

const (
	schemeSeq scheme = iota
	schemeUUID
)

// PageID is the opaque, comparable handle identifying a node's
// location in the store. Two PageIDs are equal iff they name the same
// page; callers must never construct one directly.
type PageID struct {
	scheme scheme
	seq    uint64
	uuid   uuid.UUID
}

func (id PageID) String() string {
	switch id.scheme {
	case schemeUUID:
		return id.uuid.String()
	default:
		return fmt.Sprintf("#%d", id.seq)
	}
}

// Allocator mints fresh, never-reused PageIDs. Thread-safe.
type Allocator interface {
	Allocate() PageID
}

// SeqAllocator yields a monotonically increasing sequence starting at
// the value passed to NewSeqAllocator. The tree reserves id 0 for the
// initial root and constructs it directly rather than via Allocate, so
// a fresh SeqAllocator used alongside a fresh Tree starts handing out
// ids at 1, exactly as the base spec's reference page store does.
type SeqAllocator struct {
	mu   sync.Mutex
	next uint64
}

func NewSeqAllocator(start uint64) *SeqAllocator {
	return &SeqAllocator{next: start}
}

func (a *SeqAllocator) Allocate() PageID {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := PageID{scheme: schemeSeq, seq: a.next}
	a.next++
	return id
}

// RootPageID is the fixed identifier of the tree's very first node,
// reserved outside the allocator sequence.
func RootPageID() PageID { return PageID{scheme: schemeSeq, seq: 0} }

// UUIDAllocator mints version-7 (time-ordered) UUIDs, the scheme
// bobboyms-storage-engine uses for row identifiers. It still needs a
// distinguished root id, provided by RootPageID for consistency across
// schemes: the root is never minted by an Allocator at all.
type UUIDAllocator struct{}

func NewUUIDAllocator() *UUIDAllocator { return &UUIDAllocator{} }

func (UUIDAllocator) Allocate() PageID {
	id, err := uuid.NewV7()
	if err != nil {
		// NewV7 only fails if the runtime's random source is broken;
		// that is not a recoverable condition for a page allocator.
		id = uuid.New()
	}
	return PageID{scheme: schemeUUID, uuid: id}
}

// Store is the page-store contract consumed by the tree driver: mint
// ids, and read/write nodes by id. Node is declared in the node
// package; Store is generic over it so the same store implementation
// backs both interior pages (V = PageID) and leaf pages (V = user
// value) without a type switch.
type Store[K comparable, V any] interface {
	Allocate() PageID
	Read(id PageID) (V, bool)
	Write(id PageID, v V)
}

// InMemoryStore is the reference page store: a concurrent hash map of
// id to node, with no snapshot isolation between readers and writers
// (the spec does not require it — correctness is recovered by
// right-link traversal, not by store-level consistency).
type InMemoryStore[K comparable, V any] struct {
	alloc Allocator
	mu    sync.RWMutex
	pages map[PageID]V
}

func NewInMemoryStore[K comparable, V any](alloc Allocator) *InMemoryStore[K, V] {
	return &InMemoryStore[K, V]{
		alloc: alloc,
		pages: make(map[PageID]V),
	}
}

func (s *InMemoryStore[K, V]) Allocate() PageID {
	return s.alloc.Allocate()
}

func (s *InMemoryStore[K, V]) Read(id PageID) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.pages[id]
	return v, ok
}

func (s *InMemoryStore[K, V]) Write(id PageID, v V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages[id] = v
}
