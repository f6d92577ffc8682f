// Package model provides the lifecycle state and shared interfaces of text classifiers.
package model

import (
	"sync"

	"github.com/YuminosukeSato/textnb/pkg/errors"
)

// Phase is a lifecycle phase of a classifier instance.
type Phase int

const (
	// PhaseFresh means nothing has been learned since creation, reset or import.
	PhaseFresh Phase = iota
	// PhaseLearning means at least one example has been learned.
	PhaseLearning
	// PhaseConsolidated means vocabulary and labels are frozen and prediction is legal.
	PhaseConsolidated
	// PhaseEvaluated means at least one evaluation succeeded and metrics are available.
	PhaseEvaluated
)

func (p Phase) String() string {
	switch p {
	case PhaseLearning:
		return "learning"
	case PhaseConsolidated:
		return "consolidated"
	case PhaseEvaluated:
		return "evaluated"
	default:
		return "fresh"
	}
}

// StateManager tracks the lifecycle flags of a classifier in a thread-safe manner.
//
// The flags are not independent: evaluated implies consolidated, and the
// setters below keep that ordering.
type StateManager struct {
	mu           sync.RWMutex
	learned      bool
	consolidated bool
	evaluated    bool
}

// NewStateManager creates a StateManager in PhaseFresh.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsLearned reports whether learning has started (or a model was imported).
func (s *StateManager) IsLearned() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.learned
}

// IsConsolidated reports whether the learnings are frozen.
func (s *StateManager) IsConsolidated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.consolidated
}

// IsEvaluated reports whether at least one evaluation has succeeded.
func (s *StateManager) IsEvaluated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evaluated
}

// SetLearned marks learning as started.
func (s *StateManager) SetLearned() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learned = true
}

// SetConsolidated marks the learnings as frozen. Evaluation state is cleared.
func (s *StateManager) SetConsolidated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.consolidated = true
	s.evaluated = false
}

// SetEvaluated marks that at least one evaluation succeeded.
func (s *StateManager) SetEvaluated() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evaluated = true
}

// Reset returns to PhaseFresh.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learned = false
	s.consolidated = false
	s.evaluated = false
}

// Phase returns the current lifecycle phase.
func (s *StateManager) Phase() Phase {
	s.mu.RLock()
	defer s.mu.RUnlock()
	switch {
	case s.evaluated:
		return PhaseEvaluated
	case s.consolidated:
		return PhaseConsolidated
	case s.learned:
		return PhaseLearning
	default:
		return PhaseFresh
	}
}

// RequireNotLearned fails with InvalidState once learning has started.
func (s *StateManager) RequireNotLearned(op string) error {
	if s.IsLearned() {
		return errors.NewInvalidStateError(op, "config can not be changed after learning has started")
	}
	return nil
}

// RequireNotConsolidated fails with InvalidState once the learnings are frozen.
func (s *StateManager) RequireNotConsolidated(op string) error {
	if s.IsConsolidated() {
		return errors.NewInvalidStateError(op, "learnings are consolidated, reset before learning again")
	}
	return nil
}

// RequireConsolidated fails with InvalidState unless the learnings are frozen.
func (s *StateManager) RequireConsolidated(op string) error {
	if !s.IsConsolidated() {
		return errors.NewInvalidStateError(op, "learnings are not consolidated, call Consolidate() first")
	}
	return nil
}

// RequireEvaluated fails with InvalidState unless an evaluation has succeeded.
func (s *StateManager) RequireEvaluated(op string) error {
	if !s.IsEvaluated() {
		return errors.NewInvalidStateError(op, "metrics can not be computed before evaluation")
	}
	return nil
}

// ModelState is a snapshot of the lifecycle flags for debugging and CLI output.
type ModelState struct {
	Learned      bool   `json:"learned"`
	Consolidated bool   `json:"consolidated"`
	Evaluated    bool   `json:"evaluated"`
	Phase        string `json:"phase"`
}

// GetState returns the current flags.
func (s *StateManager) GetState() ModelState {
	phase := s.Phase()
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{
		Learned:      s.learned,
		Consolidated: s.consolidated,
		Evaluated:    s.evaluated,
		Phase:        phase.String(),
	}
}
