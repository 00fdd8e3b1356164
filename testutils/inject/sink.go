package inject

import (
	"sync"

	"go.viam.com/slopescan/corridor"
	"go.viam.com/slopescan/fragment"
	"go.viam.com/slopescan/heightfield"
	"go.viam.com/slopescan/pipeline"
)

// Sink is an injectable visualization sink. Unset funcs fall through to the embedded Sink.
type Sink struct {
	pipeline.Sink
	ReplaceGeometryFunc    func(id fragment.ID, g *corridor.FilteredGeometry) error
	RetractGeometryFunc    func(id fragment.ID) error
	PublishHeightFieldFunc func(p *heightfield.Publication) error
	RetractHeightFieldFunc func() error
}

// NewSink returns a Sink backed by a RecordingSink.
func NewSink() (*Sink, *RecordingSink) {
	rec := NewRecordingSink()
	return &Sink{Sink: rec}, rec
}

// ReplaceGeometry calls the injected ReplaceGeometry or the real version.
func (s *Sink) ReplaceGeometry(id fragment.ID, g *corridor.FilteredGeometry) error {
	if s.ReplaceGeometryFunc == nil {
		return s.Sink.ReplaceGeometry(id, g)
	}
	return s.ReplaceGeometryFunc(id, g)
}

// RetractGeometry calls the injected RetractGeometry or the real version.
func (s *Sink) RetractGeometry(id fragment.ID) error {
	if s.RetractGeometryFunc == nil {
		return s.Sink.RetractGeometry(id)
	}
	return s.RetractGeometryFunc(id)
}

// PublishHeightField calls the injected PublishHeightField or the real version.
func (s *Sink) PublishHeightField(p *heightfield.Publication) error {
	if s.PublishHeightFieldFunc == nil {
		return s.Sink.PublishHeightField(p)
	}
	return s.PublishHeightFieldFunc(p)
}

// RetractHeightField calls the injected RetractHeightField or the real version.
func (s *Sink) RetractHeightField() error {
	if s.RetractHeightFieldFunc == nil {
		return s.Sink.RetractHeightField()
	}
	return s.RetractHeightFieldFunc()
}

// RecordingSink keeps what is currently visible and counts every call.
type RecordingSink struct {
	mu          sync.Mutex
	geometry    map[fragment.ID]*corridor.FilteredGeometry
	heightField *heightfield.Publication
	replaces    int
	retracts    int
}

// NewRecordingSink returns an empty RecordingSink.
func NewRecordingSink() *RecordingSink {
	return &RecordingSink{geometry: map[fragment.ID]*corridor.FilteredGeometry{}}
}

// ReplaceGeometry records g as the visible geometry for id.
func (r *RecordingSink) ReplaceGeometry(id fragment.ID, g *corridor.FilteredGeometry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.geometry[id] = g
	r.replaces++
	return nil
}

// RetractGeometry forgets the geometry for id.
func (r *RecordingSink) RetractGeometry(id fragment.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.geometry, id)
	r.retracts++
	return nil
}

// PublishHeightField records p as the visible height field.
func (r *RecordingSink) PublishHeightField(p *heightfield.Publication) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heightField = p
	return nil
}

// RetractHeightField forgets the height field.
func (r *RecordingSink) RetractHeightField() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.heightField = nil
	return nil
}

// Geometry returns the visible geometry for id.
func (r *RecordingSink) Geometry(id fragment.ID) (*corridor.FilteredGeometry, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.geometry[id]
	return g, ok
}

// Visible returns the number of fragments with visible geometry.
func (r *RecordingSink) Visible() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.geometry)
}

// HeightField returns the visible height field, if any.
func (r *RecordingSink) HeightField() *heightfield.Publication {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heightField
}

// Calls returns how many replace and retract calls were made.
func (r *RecordingSink) Calls() (replaces, retracts int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.replaces, r.retracts
}
