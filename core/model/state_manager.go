// Package model provides the estimator interfaces and state management shared
// by the classifiers.
package model

import (
	"sync"

	bbErrors "github.com/YuminosukeSato/bayesbench/pkg/errors"
)

// StateManager manages the fitted state of a model in a thread-safe manner.
// Models embed it by pointer and guard their learned parameters with
// WithState / WithStateMut so readers never observe a half-written fit.
type StateManager struct {
	mu sync.RWMutex

	fitted    bool
	nFeatures int
	nSamples  int
	nClasses  int
}

// NewStateManager creates a new StateManager instance.
func NewStateManager() *StateManager {
	return &StateManager{}
}

// IsFitted returns whether the model has been fitted.
func (s *StateManager) IsFitted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fitted
}

// Reset resets the fitted state.
func (s *StateManager) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fitted = false
	s.nFeatures, s.nSamples, s.nClasses = 0, 0, 0
}

// GetDimensions returns the number of features and samples seen during fitting.
func (s *StateManager) GetDimensions() (nFeatures, nSamples int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nFeatures, s.nSamples
}

// RequireFitted returns a NotFittedError naming modelName and method when the
// model has not been fitted.
func (s *StateManager) RequireFitted(modelName, method string) error {
	if !s.IsFitted() {
		return bbErrors.NewNotFittedError(modelName, method)
	}
	return nil
}

// ModelState is a snapshot of the fitted state, suitable for JSON output.
type ModelState struct {
	Fitted    bool `json:"fitted"`
	NFeatures int  `json:"n_features,omitempty"`
	NSamples  int  `json:"n_samples,omitempty"`
	NClasses  int  `json:"n_classes,omitempty"`
}

// GetState returns the current state as a ModelState struct.
func (s *StateManager) GetState() ModelState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ModelState{
		Fitted:    s.fitted,
		NFeatures: s.nFeatures,
		NSamples:  s.nSamples,
		NClasses:  s.nClasses,
	}
}

// WithState runs fn with the state locked for reading.
func (s *StateManager) WithState(fn func() error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn()
}

// WithStateMut runs fn with the state locked for writing. When fn succeeds
// the model is marked fitted with the dimensions it returned; when it fails
// the previous state is left untouched.
func (s *StateManager) WithStateMut(fn func() (ModelState, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, err := fn()
	if err != nil {
		return err
	}
	s.fitted = true
	s.nFeatures, s.nSamples, s.nClasses = st.NFeatures, st.NSamples, st.NClasses
	return nil
}
