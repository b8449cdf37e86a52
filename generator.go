// Package infogen groups, event by event, the reconstructed tracks, the
// friend stream and the simulation truth into TrackInfo records and sorts
// them into barrel, stand-alone and kink collections for the TRD
// performance tasks downstream.
package infogen

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/decibelcooper/infogen/calib"
	"github.com/decibelcooper/infogen/esd"
	"github.com/decibelcooper/infogen/info"
	"github.com/decibelcooper/infogen/mc"
	"github.com/decibelcooper/infogen/stats"
)

var (
	ErrNoEvent  = errors.New("infogen: failed retrieving ESD event")
	ErrNoFriend = errors.New("infogen: failed retrieving ESD friend event")
	ErrNoTruth  = errors.New("infogen: failed retrieving MC event")
)

// Geometry holds the radial boundaries, in cm, of the inner tracker, the
// outer tracker and the TRD.
type Geometry struct {
	ITS float64 `toml:"its"`
	TPC float64 `toml:"tpc"`
	TRD float64 `toml:"trd"`
}

func DefaultGeometry() Geometry {
	return Geometry{ITS: 100, TPC: 290, TRD: 365}
}

func (g Geometry) Validate() error {
	if !(g.ITS > 0 && g.ITS < g.TPC && g.TPC < g.TRD) {
		return fmt.Errorf("invalid geometry: need 0 < its(%g) < tpc(%g) < trd(%g)", g.ITS, g.TPC, g.TRD)
	}
	return nil
}

// EventSelection is the local event selection applied before any track is
// looked at.
type EventSelection struct {
	Local           bool     `toml:"local"`
	Triggers        []string `toml:"triggers"`
	MaxVertexZ      float64  `toml:"max_vertex_z"`
	MinContributors int      `toml:"min_contributors"`
}

func DefaultEventSelection() EventSelection {
	return EventSelection{MaxVertexZ: 15, MinContributors: 1}
}

// TrackSelection is the local selection of barrel tracks.
type TrackSelection struct {
	Local      bool    `toml:"local"`
	MinPt      float64 `toml:"min_pt"`
	MaxEta     float64 `toml:"max_eta"`
	MinNclsTPC int     `toml:"min_ncls_tpc"`
	MaxDCAxy   float64 `toml:"max_dca_xy"`
	MaxDCAz    float64 `toml:"max_dca_z"`
}

func DefaultTrackSelection() TrackSelection {
	return TrackSelection{MinPt: 0.2, MaxEta: 0.9, MinNclsTPC: 70, MaxDCAxy: 3, MaxDCAz: 10}
}

type EventSelector interface {
	IsSelected(ev *esd.Event, collision bool) bool
}

type TrackSelector interface {
	IsSelected(t *esd.Track) bool
}

type Options struct {
	Geometry       Geometry
	EventSelection EventSelection
	TrackSelection TrackSelection

	// Collision marks collision data; it enables the vertex and DCA cuts.
	Collision bool
	// MC requires a truth event for every processed event.
	MC bool

	EventCut EventSelector
	TrackCut TrackSelector
	V0Cut    V0Tagger

	// DebugLevel >= 1 snapshots every built record to DebugStream.
	DebugLevel  int
	DebugStream *zap.Logger
	Logger      *zap.Logger
}

func DefaultOptions() Options {
	return Options{
		Geometry:       DefaultGeometry(),
		EventSelection: DefaultEventSelection(),
		TrackSelection: DefaultTrackSelection(),
	}
}

// Input is everything known about one event.
type Input struct {
	Entry  int
	Event  *esd.Event
	Friend *esd.Friend
	Truth  *mc.Event
}

// Output is the product of one event. Process allocates a new Output for
// every event and its records are copies, so it may be kept after later
// calls to Process.
type Output struct {
	Barrel []*info.TrackInfo
	SA     []*info.TrackInfo
	Kink   []*info.TrackInfo
	V0s    []*info.V0Info
	Event  *info.EventInfo

	Counts stats.Counts
	// Selected is false for events rejected by the event selection.
	Selected bool
	// Errors are the recoverable per-track problems met in the event.
	Errors []error
}

// Generator is the per-event info generator. It is not safe for
// concurrent use.
type Generator struct {
	opts  Options
	log   *zap.Logger
	ctx   *calib.Context
	stats *stats.Histogram

	work     *info.TrackInfo
	registry *TruthRegistry
	dedx     []float64
}

func New(opts Options) *Generator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Generator{
		opts:     opts,
		log:      opts.Logger,
		stats:    stats.New(),
		work:     info.New(),
		registry: NewTruthRegistry(0),
	}
}

// SetContext installs the run's reconstruction context.
func (g *Generator) SetContext(ctx *calib.Context) { g.ctx = ctx }

func (g *Generator) Context() *calib.Context { return g.ctx }

// Stats returns the run statistics accumulated so far.
func (g *Generator) Stats() *stats.Histogram { return g.stats }

// Process runs the generator on one event. A non-nil error means the event
// was abandoned and nothing of it is emitted.
func (g *Generator) Process(in Input) (*Output, error) {
	ev := in.Event
	if ev == nil {
		return nil, ErrNoEvent
	}
	out := &Output{}
	log := g.log.With(zap.Int("ev", ev.Header.EventNumber))

	if !g.selectEvent(ev, log) {
		return out, nil
	}
	if in.Friend == nil {
		return nil, ErrNoFriend
	}
	var truth *mc.Event
	if g.opts.MC {
		if in.Truth == nil {
			return nil, ErrNoTruth
		}
		truth = in.Truth
	}

	out.Selected = true
	out.Event = info.NewEventInfo(ev)
	if g.ctx != nil {
		out.Event.NTimeBins = g.ctx.NTimeBins
		out.Event.RecoParam = g.ctx.Specie
	}

	g.registry.Reset(truth.NumberOfTracks())
	out.V0s = BuildV0s(ev, g.opts.V0Cut)

	g.classifyTracks(in, truth, out, log)
	if truth != nil {
		g.recoverTruth(truth, out, log)
	}

	c := &out.Counts
	c[stats.ESD] = ev.NumberOfTracks()
	c[stats.MC] = truth.NumberOfTracks()
	c[stats.V0] = len(out.V0s)
	log.Debug("event done",
		zap.Int("esd", c[stats.ESD]), zap.Int("mc", c[stats.MC]), zap.Int("v0", c[stats.V0]),
		zap.Int("tpcOut", c[stats.TPC]), zap.Int("trdIn", c[stats.TRDin]), zap.Int("trdOut", c[stats.TRDout]),
		zap.Int("barrel", c[stats.Barrel]), zap.Int("barrelMC", c[stats.BarrelMC]),
		zap.Int("sa", c[stats.SA]), zap.Int("saMC", c[stats.SAMC]),
		zap.Int("kink", c[stats.Kink]), zap.Int("kinkMC", c[stats.KinkMC]),
	)
	g.stats.Fill(out.Counts)
	return out, nil
}

func (g *Generator) selectEvent(ev *esd.Event, log *zap.Logger) bool {
	sel := g.opts.EventSelection
	if sel.Local && len(sel.Triggers) > 0 {
		triggered := false
		for _, trig := range sel.Triggers {
			if ev.IsTriggerClassFired(trig) {
				triggered = true
				break
			}
		}
		if !triggered {
			log.Debug("reject event: trigger")
			return false
		}
		if ev.Header.EventType != esd.PhysicsEvent {
			log.Debug("reject event: event type", zap.Uint32("type", ev.Header.EventType))
			return false
		}
	}

	if sel.Local && g.opts.Collision {
		vz := math.Abs(ev.Vertex.Z)
		if vz < 1e-10 || vz > sel.MaxVertexZ || ev.Vertex.NContributors < sel.MinContributors {
			log.Debug("reject event: vertex", zap.Float64("zv", vz), zap.Int("nv", ev.Vertex.NContributors))
			return false
		}
	}

	if g.opts.EventCut != nil && !g.opts.EventCut.IsSelected(ev, g.opts.Collision) {
		log.Debug("reject event: event cut")
		return false
	}
	return true
}

func (g *Generator) trace(rec *info.TrackInfo) {
	if g.opts.DebugLevel < 1 || g.opts.DebugStream == nil {
		return
	}
	g.opts.DebugStream.Debug("trackInfo", zap.Object("TrackInfo", rec))
}
