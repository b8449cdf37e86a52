package infogen

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/decibelcooper/infogen/calib"
)

// ErrBootstrap wraps failures to build the reconstruction context. It is
// fatal for the whole run.
var ErrBootstrap = errors.New("infogen: bootstrap failed")

// Runner drives a Generator over the events of a run and bootstraps the
// reconstruction context from the first event.
type Runner struct {
	gen *Generator
	db  *calib.DB
	log *zap.Logger

	initialized bool
}

// NewRunner returns a runner for gen. A nil db skips the bootstrap and the
// generator runs without reconstruction context.
func NewRunner(gen *Generator, db *calib.DB, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{gen: gen, db: db, log: log}
}

func (r *Runner) Generator() *Generator { return r.gen }

func (r *Runner) Initialized() bool { return r.initialized }

// Process bootstraps on the first event and hands the event to the
// generator. Errors wrapping ErrBootstrap must end the run; other errors
// only concern the current event.
func (r *Runner) Process(in Input) (*Output, error) {
	if in.Event == nil {
		return nil, ErrNoEvent
	}
	if !r.initialized {
		if err := r.bootstrap(in); err != nil {
			return nil, err
		}
		r.initialized = true
	}
	return r.gen.Process(in)
}

func (r *Runner) bootstrap(in Input) error {
	if r.db == nil {
		return nil
	}
	h := in.Event.Header
	r.log.Info("initializing calibration", zap.String("storage", r.db.Storage), zap.Int32("run", h.RunNumber))
	ctx, err := calib.NewContext(r.db, h.RunNumber, h.EventSpecie)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBootstrap, err)
	}
	r.log.Info("calibration ready",
		zap.Int("timeBins", ctx.NTimeBins),
		zap.Uint32("eventSpecie", h.EventSpecie),
		zap.String("recoParam", ctx.Specie),
	)
	r.gen.SetContext(ctx)
	return nil
}
