// Package pipeline drives a corridor analysis pass: it enables geometry acquisition, waits for
// enough fragments or a deadline, then filters and bakes the stored geometry and publishes the
// results to a visualization sink.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/slopescan/corridor"
	"go.viam.com/slopescan/fragment"
	"go.viam.com/slopescan/heightfield"
	"go.viam.com/slopescan/logging"
	"go.viam.com/slopescan/rimage"
	"go.viam.com/slopescan/spatialmath"
	"go.viam.com/slopescan/utils"
)

var (
	// ErrBusy is returned by StartAnalysis when a pass is already running.
	ErrBusy = errors.New("analysis already in progress")
	// ErrCanceled is returned when a pass is cleared before it finishes.
	ErrCanceled = errors.New("analysis canceled")
)

// State is the orchestrator's position in a pass.
type State int

const (
	// StateIdle means no pass is running.
	StateIdle State = iota
	// StateScanning means geometry is being acquired.
	StateScanning
	// StateFinalizing means the stored geometry is being filtered and baked.
	StateFinalizing
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateFinalizing:
		return "finalizing"
	default:
		return "unknown"
	}
}

// Result describes a finished pass. Err is set when the pass failed as a whole; per-fragment
// skips never set it.
type Result struct {
	Mode        Mode
	Corridor    *spatialmath.Corridor
	Frame       *spatialmath.LocalFrame
	Fragments   int
	Published   []fragment.ID
	HeightField *heightfield.HeightField
	Publication *heightfield.Publication
	Duration    time.Duration
	Err         error
}

// Failed reports whether the pass failed.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// bakeContext holds what baking needs across passes. It is built on first use and dropped by
// Clear.
type bakeContext struct {
	baker *heightfield.Baker
	ramp  *rimage.RampLookup
}

type pass struct {
	generation uint64
	corridor   *spatialmath.Corridor
	fallback   r3.Vector
	filter     *corridor.Filter
	started    time.Time
	timedOut   bool
}

// Orchestrator runs one analysis pass at a time over the fragments streamed by a provider.
type Orchestrator struct {
	opts     Options
	provider fragment.Provider
	sink     Sink
	clock    clock.Clock
	logger   logging.Logger
	store    *fragment.Store
	detach   func()

	mu                   sync.Mutex
	state                State
	generation           uint64
	current              pass
	deadline             time.Time
	filter               *corridor.Filter
	unlisten             func()
	cancelFinalize       context.CancelFunc
	bake                 *bakeContext
	heightFieldPublished bool
	last                 *Result
	onResult             func(*Result)

	workersMu sync.Mutex
	workers   utils.StoppableWorkers
}

// NewOrchestrator returns an idle orchestrator whose store follows provider. A nil clk uses the
// wall clock.
func NewOrchestrator(
	opts Options,
	provider fragment.Provider,
	sink Sink,
	clk clock.Clock,
	logger logging.Logger,
) (*Orchestrator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, errors.New("orchestrator needs a geometry provider")
	}
	if sink == nil {
		return nil, errors.New("orchestrator needs a visualization sink")
	}
	if clk == nil {
		clk = clock.New()
	}
	store := fragment.NewStore(logger.Sublogger("store"))
	return &Orchestrator{
		opts:     opts,
		provider: provider,
		sink:     sink,
		clock:    clk,
		logger:   logger,
		store:    store,
		detach:   store.Attach(provider),
	}, nil
}

// Store returns the fragment store fed by the provider.
func (o *Orchestrator) Store() *fragment.Store {
	return o.store
}

// State returns the current state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// LastResult returns the result of the most recent pass, or nil after Clear.
func (o *Orchestrator) LastResult() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.last
}

// OnResult registers fn to receive every finished pass's result, failed ones included.
func (o *Orchestrator) OnResult(fn func(*Result)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onResult = fn
}

// StartAnalysis begins a pass over the corridor from a to b. fallback replaces the world up
// vector if it is parallel to the corridor. It does nothing and returns ErrBusy unless idle. An
// invalid corridor fails the pass immediately.
func (o *Orchestrator) StartAnalysis(a, b, fallback r3.Vector) error {
	_, err := o.start(a, b, fallback)
	return err
}

func (o *Orchestrator) start(a, b, fallback r3.Vector) (uint64, error) {
	o.mu.Lock()
	if o.state != StateIdle {
		o.mu.Unlock()
		return 0, ErrBusy
	}
	if err := o.discardOutputLocked(); err != nil {
		o.logger.Warnw("failed to retract previous results", "error", err)
	}

	c, err := spatialmath.NewCorridor(a, b, o.opts.CorridorWidth, o.opts.WorldUp)
	if err != nil {
		res := &Result{Mode: o.opts.Mode, Err: err}
		handler := o.finishLocked(res)
		o.mu.Unlock()
		deliver(handler, res)
		return 0, err
	}

	o.generation++
	now := o.clock.Now()
	o.current = pass{generation: o.generation, corridor: c, fallback: fallback, started: now}
	o.deadline = now.Add(o.opts.ScanTimeout)

	if o.opts.Mode.corridor() {
		filter, err := corridor.NewFilter(corridor.Options{
			Corridor:    c,
			Gradient:    o.opts.SlopeGradient,
			MaxSlopeDeg: o.opts.MaxSlopeDeg,
			Class:       o.opts.Class,
			Workers:     o.opts.FilterWorkers,
		}, o.sink, o.logger.Sublogger("filter"))
		if err != nil {
			res := &Result{Mode: o.opts.Mode, Corridor: c, Err: err}
			handler := o.finishLocked(res)
			o.mu.Unlock()
			deliver(handler, res)
			return 0, err
		}
		o.filter = filter
		o.current.filter = filter
		o.unlisten = o.store.AddListener(o.liveFilter(filter))
	}

	o.setStateLocked(StateScanning)
	o.provider.SetAcquisitionEnabled(true)
	o.logger.Infow("analysis started", "corridor", c, "mode", o.opts.Mode,
		"length", c.DistanceLabel(), "deadline", o.deadline)
	gen := o.generation
	o.mu.Unlock()
	return gen, nil
}

// liveFilter keeps the sink current while scanning.
func (o *Orchestrator) liveFilter(filter *corridor.Filter) fragment.Listener {
	return func(c fragment.Change) {
		var err error
		switch c.Kind {
		case fragment.Upserted:
			err = filter.Process(c.Fragment)
		case fragment.Removed:
			err = filter.Remove(c.ID)
		}
		if err != nil && !errors.Is(err, corridor.ErrClosed) {
			o.logger.Warnw("live corridor filtering failed", "id", c.ID, "error", err)
		}
	}
}

// Tick is the scanning poll point. Once MinFragments are stored or the deadline has passed it
// finalizes the pass and returns its result. It returns nil while still waiting or when idle,
// and ErrCanceled if the pass is cleared while finalizing.
func (o *Orchestrator) Tick(ctx context.Context) (*Result, error) {
	o.mu.Lock()
	if o.state != StateScanning {
		o.mu.Unlock()
		return nil, nil
	}
	count := o.store.Len()
	timedOut := !o.clock.Now().Before(o.deadline)
	if count < o.opts.MinFragments && !timedOut {
		o.mu.Unlock()
		return nil, nil
	}

	o.unlistenLocked()
	o.setStateLocked(StateFinalizing)
	p := o.current
	p.timedOut = timedOut
	finalizeCtx, cancel := context.WithCancel(ctx)
	o.cancelFinalize = cancel
	o.mu.Unlock()
	defer cancel()

	res := o.finalize(finalizeCtx, p)

	o.mu.Lock()
	if o.generation != p.generation || o.state != StateFinalizing {
		o.mu.Unlock()
		return nil, ErrCanceled
	}
	o.cancelFinalize = nil
	if res.Publication != nil {
		if err := o.sink.PublishHeightField(res.Publication); err != nil {
			res.Err = multierr.Append(res.Err, errors.Wrap(err, "publishing height field"))
		} else {
			o.heightFieldPublished = true
		}
	}
	handler := o.finishLocked(res)
	o.mu.Unlock()
	deliver(handler, res)
	return res, nil
}

func (o *Orchestrator) finalize(ctx context.Context, p pass) *Result {
	res := &Result{Mode: o.opts.Mode, Corridor: p.corridor}
	defer func() {
		res.Duration = o.clock.Since(p.started)
	}()

	frame, err := spatialmath.FrameForCorridor(p.corridor, p.fallback)
	if err != nil {
		res.Err = err
		return res
	}
	if frame.Degenerate {
		o.logger.Warnw("world up is parallel to the corridor, using fallback", "forward", frame.Forward, "up", frame.Up)
	}
	res.Frame = frame

	frags := o.store.Snapshot()
	res.Fragments = len(frags)
	if len(frags) == 0 {
		res.Err = utils.NewInsufficientDataError("stored fragments", 0, 1)
		return res
	}
	if p.timedOut && len(frags) < o.opts.MinFragments {
		if o.opts.RequireMinFragments {
			res.Err = utils.NewInsufficientDataError("stored fragments", len(frags), o.opts.MinFragments)
			return res
		}
		o.logger.Infow("scan timed out below fragment threshold, continuing",
			"fragments", len(frags), "threshold", o.opts.MinFragments)
	}

	if p.filter != nil {
		if err := p.filter.ProcessAll(ctx, frags); err != nil {
			res.Err = multierr.Append(res.Err, err)
		}
		res.Published = p.filter.Published()
	}

	if o.opts.Mode.heightField() {
		if err := ctx.Err(); err != nil {
			res.Err = multierr.Append(res.Err, err)
			return res
		}
		bc, err := o.bakingContext()
		if err != nil {
			res.Err = multierr.Append(res.Err, err)
			return res
		}
		region, err := heightfield.NewRegion(p.corridor, frame, o.opts.ROIHalfWidth)
		if err != nil {
			res.Err = multierr.Append(res.Err, err)
			return res
		}
		hf, err := bc.baker.Bake(frags, region)
		if err != nil {
			res.Err = multierr.Append(res.Err, err)
			return res
		}
		res.HeightField = hf
		res.Publication = hf.Publication(bc.ramp)
	}
	return res
}

func (o *Orchestrator) bakingContext() (*bakeContext, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.bake != nil {
		return o.bake, nil
	}
	baker, err := heightfield.NewBaker(o.opts.HeightField, o.logger.Sublogger("baker"))
	if err != nil {
		return nil, err
	}
	gradient := o.opts.HeightGradient
	if gradient == nil {
		gradient = rimage.DefaultHeightGradient()
	}
	o.bake = &bakeContext{baker: baker, ramp: gradient.Lookup(o.opts.RampResolution)}
	return o.bake, nil
}

// finishLocked ends the pass and returns the result handler to call once unlocked.
func (o *Orchestrator) finishLocked(res *Result) func(*Result) {
	o.unlistenLocked()
	if o.state != StateIdle {
		o.provider.SetAcquisitionEnabled(false)
	}
	o.setStateLocked(StateIdle)
	o.last = res
	if res.Err != nil {
		o.logger.Warnw("analysis failed", "error", res.Err)
	} else {
		o.logger.Infow("analysis finished", "fragments", res.Fragments,
			"published", len(res.Published), "duration", res.Duration)
	}
	return o.onResult
}

func deliver(handler func(*Result), res *Result) {
	if handler != nil {
		handler(res)
	}
}

func (o *Orchestrator) setStateLocked(s State) {
	if o.state == s {
		return
	}
	o.logger.Infow("state changed", "from", o.state, "to", s)
	o.state = s
}

func (o *Orchestrator) unlistenLocked() {
	if o.unlisten != nil {
		o.unlisten()
		o.unlisten = nil
	}
}

// discardOutputLocked retracts everything the previous pass published.
func (o *Orchestrator) discardOutputLocked() error {
	var errs error
	if o.filter != nil {
		errs = multierr.Append(errs, o.filter.Close())
		o.filter = nil
	}
	if o.heightFieldPublished {
		errs = multierr.Append(errs, o.sink.RetractHeightField())
		o.heightFieldPublished = false
	}
	return errs
}

// Clear aborts any running pass, retracts every published result and drops the baking context.
// Stored fragments are kept. It is valid in every state.
func (o *Orchestrator) Clear() error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
	if o.cancelFinalize != nil {
		o.cancelFinalize()
		o.cancelFinalize = nil
	}
	o.unlistenLocked()
	if o.state != StateIdle {
		o.provider.SetAcquisitionEnabled(false)
		o.logger.Infow("analysis canceled", "state", o.state)
	}
	o.setStateLocked(StateIdle)
	err := o.discardOutputLocked()
	o.bake = nil
	o.last = nil
	o.current = pass{}
	return err
}

// Reset is Clear followed by emptying the fragment store.
func (o *Orchestrator) Reset() error {
	err := o.Clear()
	o.store.Clear()
	return err
}

// Start polls Tick every PollInterval in the background until Close.
func (o *Orchestrator) Start() {
	o.workersMu.Lock()
	defer o.workersMu.Unlock()
	if o.workers != nil {
		return
	}
	ticker := o.clock.Ticker(o.opts.PollInterval)
	o.workers = utils.NewStoppableWorkers(context.Background(), func(ctx context.Context) {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			if _, err := o.Tick(ctx); err != nil && !errors.Is(err, ErrCanceled) {
				o.logger.Warnw("poll failed", "error", err)
			}
		}
	})
}

// Analyze runs a whole pass and waits for it. Canceling ctx clears the pass.
func (o *Orchestrator) Analyze(ctx context.Context, a, b, fallback r3.Vector) (*Result, error) {
	gen, err := o.start(a, b, fallback)
	if err != nil {
		if errors.Is(err, ErrBusy) {
			return nil, err
		}
		return o.LastResult(), err
	}

	ticker := o.clock.Ticker(o.opts.PollInterval)
	defer ticker.Stop()
	for {
		res, err := o.Tick(ctx)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, res.Err
		}
		if res, done := o.passDone(gen); done {
			if res == nil {
				return nil, ErrCanceled
			}
			return res, res.Err
		}

		select {
		case <-ctx.Done():
			return nil, multierr.Combine(errors.Wrap(ErrCanceled, ctx.Err().Error()), o.Clear())
		case <-ticker.C:
		}
	}
}

// passDone reports whether the pass numbered gen has ended, returning its result if it finished
// rather than being cleared.
func (o *Orchestrator) passDone(gen uint64) (*Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		return nil, true
	}
	if o.state != StateIdle {
		return nil, false
	}
	return o.last, true
}

// Close stops background polling, clears, and detaches from the provider.
func (o *Orchestrator) Close() error {
	o.workersMu.Lock()
	workers := o.workers
	o.workers = nil
	o.workersMu.Unlock()
	if workers != nil {
		workers.Stop()
	}
	err := o.Clear()
	o.detach()
	return err
}
