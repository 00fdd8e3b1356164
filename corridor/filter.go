package corridor

import (
	"context"
	"image/color"
	"runtime"
	"sort"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"go.viam.com/slopescan/fragment"
	"go.viam.com/slopescan/logging"
	"go.viam.com/slopescan/rimage"
	"go.viam.com/slopescan/spatialmath"
)

// ErrClosed is returned when publishing through a closed Filter.
var ErrClosed = errors.New("corridor filter closed")

// Options configure a Filter.
type Options struct {
	Corridor *spatialmath.Corridor
	// Gradient colors normalized slope; nil colors everything white.
	Gradient    *rimage.Gradient
	MaxSlopeDeg float64
	// Class is the label a triangle must carry to be kept.
	Class fragment.Classification
	// Workers bounds ProcessAll's parallelism; zero means GOMAXPROCS.
	Workers int
}

// Validate ensures the options describe a usable filter.
func (o Options) Validate() error {
	if o.Corridor == nil {
		return errors.Wrap(spatialmath.ErrInvalidCorridor, "no corridor")
	}
	if err := o.Corridor.Validate(); err != nil {
		return err
	}
	if o.MaxSlopeDeg <= 0 {
		return errors.Errorf("max slope must be positive, got %v", o.MaxSlopeDeg)
	}
	return nil
}

// Geometry runs the filter over a single fragment without side effects. A fragment with no
// classification yields empty geometry and an error wrapping fragment.ErrMissingClassification.
func Geometry(frag *fragment.MeshFragment, opts Options) (*FilteredGeometry, error) {
	out := &FilteredGeometry{}
	if !frag.HasClassification() {
		return out, errors.Wrapf(fragment.ErrMissingClassification, "fragment %s", frag.ID)
	}

	c := opts.Corridor
	halfWidth := c.HalfWidth()
	for i := 0; i < frag.TriangleCount(); i++ {
		if frag.ClassAt(i) != opts.Class {
			continue
		}
		tri := frag.WorldTriangle(i)
		if !spatialmath.PointInCorridor(tri.Centroid(), c.A, c.B, halfWidth) {
			continue
		}

		var normal r3.Vector
		if frag.HasNormals() {
			normal = frag.WorldNormal(frag.Triangles[i*3])
		} else {
			normal = tri.Normal()
		}
		pts := tri.Points()
		out.appendTriangle([3]r3.Vector{pts[0], pts[1], pts[2]}, SlopeColor(normal, opts))
	}
	return out, nil
}

// Filter keeps a Sink in step with the fragments it is shown. It remembers which fragment IDs
// currently have geometry published so that empty results and removals retract it.
type Filter struct {
	opts   Options
	sink   Sink
	logger logging.Logger

	mu        sync.Mutex
	published map[fragment.ID]struct{}
	closed    bool
}

// NewFilter returns a Filter publishing to sink.
func NewFilter(opts Options, sink Sink, logger logging.Logger) (*Filter, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if sink == nil {
		return nil, errors.New("corridor filter needs a sink")
	}
	return &Filter{
		opts:      opts,
		sink:      sink,
		logger:    logger,
		published: map[fragment.ID]struct{}{},
	}, nil
}

// Options returns the options the filter was built with.
func (f *Filter) Options() Options {
	return f.opts
}

// Process filters frag and publishes the result: non-empty geometry replaces the previous
// representation, empty geometry retracts it.
func (f *Filter) Process(frag *fragment.MeshFragment) error {
	g, err := Geometry(frag, f.opts)
	if err != nil {
		f.logger.Debugw("skipping fragment", "id", frag.ID, "reason", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.publish(frag.ID, g)
}

// Remove retracts whatever is published for id.
func (f *Filter) Remove(id fragment.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.retract(id)
}

// ProcessAll filters frags in parallel and then publishes the results in slice order. Nothing is
// published if ctx is canceled before every fragment has been filtered.
func (f *Filter) ProcessAll(ctx context.Context, frags []*fragment.MeshFragment) error {
	results := make([]*FilteredGeometry, len(frags))

	group, groupCtx := errgroup.WithContext(ctx)
	workers := f.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	group.SetLimit(workers)
	for i, frag := range frags {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			g, err := Geometry(frag, f.opts)
			if err != nil && !errors.Is(err, fragment.ErrMissingClassification) {
				return err
			}
			results[i] = g
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrClosed
	}
	var errs error
	kept := 0
	for i, frag := range frags {
		if !results[i].Empty() {
			kept += results[i].TriangleCount()
		}
		errs = multierr.Combine(errs, f.publish(frag.ID, results[i]))
	}
	f.logger.Debugw("filtered fragments", "fragments", len(frags), "triangles", kept)
	return errs
}

// Published returns the IDs that currently have geometry in the sink, sorted.
func (f *Filter) Published() []fragment.ID {
	f.mu.Lock()
	ids := lo.Keys(f.published)
	f.mu.Unlock()
	sort.Slice(ids, func(i, j int) bool {
		if ids[i].Hi != ids[j].Hi {
			return ids[i].Hi < ids[j].Hi
		}
		return ids[i].Lo < ids[j].Lo
	})
	return ids
}

// IsPublished reports whether id currently has geometry in the sink.
func (f *Filter) IsPublished(id fragment.ID) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.published[id]
	return ok
}

// Clear retracts everything the filter has published.
func (f *Filter) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clear()
}

// Close retracts everything and makes every later publication fail with ErrClosed.
func (f *Filter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return f.clear()
}

func (f *Filter) clear() error {
	var errs error
	for id := range f.published {
		errs = multierr.Combine(errs, f.retract(id))
	}
	return errs
}

func (f *Filter) publish(id fragment.ID, g *FilteredGeometry) error {
	if f.closed {
		return ErrClosed
	}
	if g.Empty() {
		return f.retract(id)
	}
	if err := f.sink.ReplaceGeometry(id, g); err != nil {
		return errors.Wrapf(err, "publishing geometry for fragment %s", id)
	}
	f.published[id] = struct{}{}
	return nil
}

func (f *Filter) retract(id fragment.ID) error {
	if _, ok := f.published[id]; !ok {
		return nil
	}
	delete(f.published, id)
	if err := f.sink.RetractGeometry(id); err != nil {
		return errors.Wrapf(err, "retracting geometry for fragment %s", id)
	}
	return nil
}

// SlopeColor returns the color a surface with the given normal gets under opts.
func SlopeColor(normal r3.Vector, opts Options) color.NRGBA {
	if opts.Gradient == nil {
		return rimage.White
	}
	return opts.Gradient.Evaluate(spatialmath.NormalizedSlope(normal, opts.Corridor.Up, opts.MaxSlopeDeg))
}
