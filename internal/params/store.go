package params

import (
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/ironsheep/puck-vision/internal/fault"
)

// Snapshot is one immutable version of the active parameters.
type Snapshot struct {
	// Version increases by one with every successful change.
	Version uint64 `json:"version"`
	// Preset is the color the bundle was derived from.
	Preset Preset `json:"preset"`
	// Bundle is the full set of tunables.
	Bundle Bundle `json:"bundle"`
}

// Store holds the per-preset defaults and the active Snapshot.
//
// Readers never block: Snapshot loads an atomic pointer. Writers are
// serialized by a mutex and publish a freshly built Snapshot, so no reader can
// observe a partially applied change.
type Store struct {
	mu       sync.Mutex
	defaults map[Preset]Bundle
	current  atomic.Pointer[Snapshot]
}

// NewStore returns a store with the built-in defaults and the given preset
// active.
func NewStore(initial Preset) (*Store, error) {
	s := &Store{defaults: make(map[Preset]Bundle, len(Presets))}
	for _, p := range Presets {
		b, _ := DefaultBundle(p)
		s.defaults[p] = b
	}

	b, ok := s.defaults[initial]
	if !ok {
		return nil, fault.InvalidArgument("unknown color id %d", int(initial))
	}
	s.current.Store(&Snapshot{Version: 1, Preset: initial, Bundle: b})
	return s, nil
}

// Snapshot returns the active snapshot. The returned value is a copy and may
// be used for the duration of a pass.
func (s *Store) Snapshot() Snapshot {
	return *s.current.Load()
}

// Get returns the active bundle.
func (s *Store) Get() Bundle {
	return s.current.Load().Bundle
}

// Select makes preset p active with its stored defaults, replacing the whole
// bundle, including any calibration edits made since the last selection.
//
// An unknown preset fails with fault.ErrInvalidArgument and leaves the store
// unchanged.
func (s *Store) Select(p Preset) (Snapshot, error) {
	return s.Calibrate(&p, Patch{})
}

// Update applies a calibration patch to the active bundle. The patched bundle
// is validated first; on failure nothing changes.
func (s *Store) Update(patch Patch) (Snapshot, error) {
	return s.Calibrate(nil, patch)
}

// Calibrate optionally selects a preset and then applies a patch, publishing
// the result as one snapshot. When preset is nil the patch applies to the
// active bundle.
func (s *Store) Calibrate(preset *Preset, patch Patch) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.current.Load()
	next := Snapshot{Version: cur.Version + 1, Preset: cur.Preset, Bundle: cur.Bundle}

	if preset != nil {
		b, ok := s.defaults[*preset]
		if !ok {
			return *cur, fault.InvalidArgument("unknown color id %d", int(*preset))
		}
		next.Preset = *preset
		next.Bundle = b
	}

	next.Bundle = patch.Apply(next.Bundle)
	if err := next.Bundle.Validate(); err != nil {
		return *cur, errors.Wrap(err, "rejected calibration update")
	}

	s.current.Store(&next)
	return next, nil
}

// Defaults returns the stored defaults for a preset.
func (s *Store) Defaults(p Preset) (Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.defaults[p]
	if !ok {
		return Bundle{}, fault.InvalidArgument("unknown color id %d", int(p))
	}
	return b, nil
}

// SetDefaults replaces the stored defaults of a preset. The active snapshot is
// not touched; the new defaults take effect on the next Select of p.
func (s *Store) SetDefaults(p Preset, b Bundle) error {
	if !p.Valid() {
		return fault.InvalidArgument("unknown color id %d", int(p))
	}
	if err := b.Validate(); err != nil {
		return errors.Wrapf(err, "defaults for %s", p)
	}

	s.mu.Lock()
	s.defaults[p] = b
	s.mu.Unlock()
	return nil
}
