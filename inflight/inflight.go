// Package inflight tracks which request fingerprints are currently executing
// so a client never runs two requests with the same shape at once.
//
// The policy is suppress, not coalesce: a caller that loses [Registry.TryAcquire]
// is expected to fail fast rather than wait for the winner's result.
package inflight

import (
	"sync"

	"github.com/adamwoolhether/apiclient/endpoint"
)

// Registry is a concurrency-safe set of in-flight fingerprints.
type Registry interface {
	// TryAcquire inserts fp and reports true, or reports false without
	// inserting when fp is already present.
	TryAcquire(fp endpoint.Fingerprint) bool
	// Release removes fp. Releasing an absent fingerprint is a no-op.
	Release(fp endpoint.Fingerprint)
}

// Set is the default Registry, a map guarded by a mutex that is only
// held for the membership check or update.
type Set struct {
	mu sync.Mutex
	m  map[endpoint.Fingerprint]struct{}
}

// New returns an empty Set.
func New() *Set {
	return &Set{
		m: make(map[endpoint.Fingerprint]struct{}),
	}
}

func (s *Set) TryAcquire(fp endpoint.Fingerprint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.m[fp]; ok {
		return false
	}
	s.m[fp] = struct{}{}

	return true
}

func (s *Set) Release(fp endpoint.Fingerprint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.m, fp)
}

// Contains reports whether fp is in flight.
func (s *Set) Contains(fp endpoint.Fingerprint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.m[fp]
	return ok
}

// Len returns the number of in-flight fingerprints.
func (s *Set) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.m)
}

// Lease is one successful acquisition. Its Release may be called from any
// number of exit paths and only the first call reaches the Registry, so a
// cancellation racing a natural completion cannot free a later caller's entry.
type Lease struct {
	once sync.Once
	reg  Registry
	fp   endpoint.Fingerprint
}

// Acquire tries to take fp in reg. It returns nil and false when fp is
// already in flight.
func Acquire(reg Registry, fp endpoint.Fingerprint) (*Lease, bool) {
	if !reg.TryAcquire(fp) {
		return nil, false
	}

	return &Lease{reg: reg, fp: fp}, true
}

// Fingerprint returns the leased fingerprint.
func (l *Lease) Fingerprint() endpoint.Fingerprint { return l.fp }

// Release returns the fingerprint to the Registry exactly once.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.reg.Release(l.fp)
	})
}
