package memory

import (
	"context"
	"fmt"
	"sync"

	"savings/internal/core"
	"savings/internal/ledger"
)

var _ ledger.Store = (*Store)(nil)

// Store keeps the ledger in process memory for the lifetime of the session.
type Store struct {
	mu      sync.Mutex
	records []core.Record
	goals   map[string]core.Goal
}

func New() *Store {
	return &Store{goals: map[string]core.Goal{}}
}

// AppendRecord stores the record and returns a synthetic row reference.
func (s *Store) AppendRecord(_ context.Context, r core.Record) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, r)
	return fmt.Sprintf("mem:%d", len(s.records)), nil
}

func (s *Store) UpsertGoal(_ context.Context, g core.Goal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.goals[g.Month] = g
	return nil
}

func (s *Store) Snapshot(_ context.Context) (core.Ledger, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return core.Ledger{Records: s.records, Goals: s.goals}.Clone(), nil
}
