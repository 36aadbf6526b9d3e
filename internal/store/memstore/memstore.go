// Package memstore is an in-memory importer.Session used for dry runs and
// tests. It enforces the same constraints as the database schema: unique
// registry codes, unique corporation names and the corporation reference.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/univinfo/univload/internal/registry"
)

var (
	// ErrDuplicateCode is returned when a registry code is already stored or staged.
	ErrDuplicateCode = errors.New("duplicate registry code")

	// ErrDuplicateCorporation is returned when a corporation name already exists.
	ErrDuplicateCorporation = errors.New("duplicate corporation name")

	// ErrUnknownCorporation is returned when a record references a missing corporation.
	ErrUnknownCorporation = errors.New("unknown corporation")

	// ErrClosed is returned by every method after Close.
	ErrClosed = errors.New("session closed")
)

type state struct {
	corporations []registry.Corporation
	universities []registry.University
}

// Store holds committed data plus one uncommitted change set.
type Store struct {
	mu        sync.Mutex
	committed state
	pending   state
	nextCorp  int64
	nextUniv  int64
	closed    bool
	commitLog []int
	attempts  int

	// FailCommit, when set, is called with the 0-based commit attempt
	// number. A non-nil result fails that commit and discards the pending
	// change set.
	FailCommit func(n int) error
}

// New returns an empty Store.
func New() *Store {
	return &Store{nextCorp: 1, nextUniv: 1}
}

func (s *Store) FindCorporation(_ context.Context, name string) (registry.Corporation, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return registry.Corporation{}, false, ErrClosed
	}
	if c, ok := s.findCorp(name); ok {
		return c, true, nil
	}
	return registry.Corporation{}, false, nil
}

func (s *Store) CreateCorporation(_ context.Context, name string) (registry.Corporation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return registry.Corporation{}, ErrClosed
	}
	if _, ok := s.findCorp(name); ok {
		return registry.Corporation{}, fmt.Errorf("%q: %w", name, ErrDuplicateCorporation)
	}
	c := registry.Corporation{ID: s.nextCorp, Name: name}
	s.nextCorp++
	s.pending.corporations = append(s.pending.corporations, c)
	return c, nil
}

func (s *Store) AddUniversity(_ context.Context, u *registry.University) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	for _, set := range [][]registry.University{s.committed.universities, s.pending.universities} {
		for _, existing := range set {
			if existing.Code == u.Code {
				return fmt.Errorf("code %d: %w", u.Code, ErrDuplicateCode)
			}
		}
	}
	if u.CorporationID != nil && !s.hasCorpID(*u.CorporationID) {
		return fmt.Errorf("corporation id %d: %w", *u.CorporationID, ErrUnknownCorporation)
	}
	u.ID = s.nextUniv
	s.nextUniv++
	s.pending.universities = append(s.pending.universities, *u)
	return nil
}

func (s *Store) Commit(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	n := s.attempts
	s.attempts++
	if s.FailCommit != nil {
		if err := s.FailCommit(n); err != nil {
			s.pending = state{}
			return err
		}
	}
	s.committed.corporations = append(s.committed.corporations, s.pending.corporations...)
	s.committed.universities = append(s.committed.universities, s.pending.universities...)
	s.pending = state{}
	s.commitLog = append(s.commitLog, len(s.committed.universities))
	return nil
}

// Close discards uncommitted changes. Committed data stays readable.
func (s *Store) Close(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = state{}
	s.closed = true
	return nil
}

// Corporations returns committed corporations ordered by name.
func (s *Store) Corporations() []registry.Corporation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := append([]registry.Corporation(nil), s.committed.corporations...)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Universities returns committed records in insertion order.
func (s *Store) Universities() []registry.University {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]registry.University(nil), s.committed.universities...)
}

// CommitLog returns the committed record count after each successful commit.
func (s *Store) CommitLog() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int(nil), s.commitLog...)
}

// Pending reports how many records are staged but uncommitted.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending.universities)
}

func (s *Store) findCorp(name string) (registry.Corporation, bool) {
	for _, set := range [][]registry.Corporation{s.committed.corporations, s.pending.corporations} {
		for _, c := range set {
			if c.Name == name {
				return c, true
			}
		}
	}
	return registry.Corporation{}, false
}

func (s *Store) hasCorpID(id int64) bool {
	for _, set := range [][]registry.Corporation{s.committed.corporations, s.pending.corporations} {
		for _, c := range set {
			if c.ID == id {
				return true
			}
		}
	}
	return false
}
