package fragment

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/slopescan/logging"
)

// ChangeKind says what happened to a fragment.
type ChangeKind int

const (
	// Upserted means the fragment was added or replaced.
	Upserted ChangeKind = iota
	// Removed means the fragment left the store.
	Removed
)

// Change is delivered to store listeners after each mutation.
type Change struct {
	Kind     ChangeKind
	ID       ID
	Fragment *MeshFragment // nil for Removed
}

// Listener observes store mutations. Listeners run synchronously in mutation order and must
// not mutate the store.
type Listener func(Change)

// Store is the keyed collection of live mesh fragments. Upserts replace a fragment wholesale;
// nothing is evicted implicitly. Fragments handed to the store are owned by it and must not be
// mutated afterwards, which lets readers keep using a snapshot while newer versions arrive.
type Store struct {
	// applyMu serializes mutations together with their notifications.
	applyMu sync.Mutex

	mu        sync.RWMutex
	fragments map[ID]*MeshFragment
	order     []ID

	listenersMu  sync.Mutex
	listeners    map[int]Listener
	nextListener int

	logger logging.Logger
}

// NewStore returns an empty store.
func NewStore(logger logging.Logger) *Store {
	return &Store{
		fragments: map[ID]*MeshFragment{},
		listeners: map[int]Listener{},
		logger:    logger,
	}
}

// AddListener registers l and returns a function that unregisters it.
func (s *Store) AddListener(l Listener) func() {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()
	id := s.nextListener
	s.nextListener++
	s.listeners[id] = l
	return func() {
		s.listenersMu.Lock()
		defer s.listenersMu.Unlock()
		delete(s.listeners, id)
	}
}

// Attach subscribes the store to a provider's change batches. The returned function detaches it.
func (s *Store) Attach(p Provider) func() {
	return p.Subscribe(func(ev MeshesChanged) {
		s.logger.Debugw("meshes changed", "added", len(ev.Added), "updated", len(ev.Updated), "removed", len(ev.Removed))
		if err := s.Apply(ev); err != nil {
			s.logger.Warnw("some fragment events were rejected", "error", err)
		}
	})
}

// Upsert stores f under id, replacing any previous fragment with that id.
func (s *Store) Upsert(id ID, f *MeshFragment) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	return s.upsert(id, f)
}

// Remove deletes the fragment with the given id and reports whether it existed.
func (s *Store) Remove(id ID) bool {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()
	return s.remove(id)
}

// Apply applies a provider batch: added, then updated, then removed. Invalid fragments are
// rejected individually; the rest of the batch still applies.
func (s *Store) Apply(ev MeshesChanged) error {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	var errs error
	for _, f := range ev.Added {
		errs = multierr.Append(errs, s.upsert(f.ID, f))
	}
	for _, f := range ev.Updated {
		errs = multierr.Append(errs, s.upsert(f.ID, f))
	}
	for _, id := range ev.Removed {
		s.remove(id)
	}
	return errs
}

// Clear removes every fragment, notifying listeners of each removal.
func (s *Store) Clear() {
	s.applyMu.Lock()
	defer s.applyMu.Unlock()

	s.mu.RLock()
	ids := append([]ID(nil), s.order...)
	s.mu.RUnlock()
	for _, id := range ids {
		s.remove(id)
	}
}

// Get returns the fragment with the given id.
func (s *Store) Get(id ID) (*MeshFragment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.fragments[id]
	return f, ok
}

// AllIDs returns the set of stored ids.
func (s *Store) AllIDs() map[ID]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.SliceToMap(s.order, func(id ID) (ID, struct{}) {
		return id, struct{}{}
	})
}

// Len returns the number of stored fragments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.fragments)
}

// Snapshot returns the stored fragments in first-insertion order.
func (s *Store) Snapshot() []*MeshFragment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*MeshFragment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.fragments[id])
	}
	return out
}

func (s *Store) upsert(id ID, f *MeshFragment) error {
	if f == nil {
		return errors.Wrapf(ErrInvalidFragment, "nil fragment for %s", id)
	}
	f.ID = id
	if err := f.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	if _, ok := s.fragments[id]; !ok {
		s.order = append(s.order, id)
	}
	s.fragments[id] = f
	s.mu.Unlock()

	s.notify(Change{Kind: Upserted, ID: id, Fragment: f})
	return nil
}

func (s *Store) remove(id ID) bool {
	s.mu.Lock()
	_, ok := s.fragments[id]
	if ok {
		delete(s.fragments, id)
		s.order = lo.Without(s.order, id)
	}
	s.mu.Unlock()

	if ok {
		s.notify(Change{Kind: Removed, ID: id})
	}
	return ok
}

func (s *Store) notify(c Change) {
	s.listenersMu.Lock()
	ls := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextListener; i++ {
		if l, ok := s.listeners[i]; ok {
			ls = append(ls, l)
		}
	}
	s.listenersMu.Unlock()

	for _, l := range ls {
		l(c)
	}
}
