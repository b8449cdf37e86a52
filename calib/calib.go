// Package calib reads the calibration database of the TRD and builds the
// read-only reconstruction context the info generator runs with.
package calib

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Event specie bits.
const (
	Default  uint32 = 0x1
	LowMult  uint32 = 0x2
	HighMult uint32 = 0x4
	Cosmic   uint32 = 0x8
	Calib    uint32 = 0x10
)

// SpecieName names the first specie bit set in es.
func SpecieName(es uint32) string {
	switch {
	case es&LowMult != 0:
		return "LowMult"
	case es&HighMult != 0:
		return "HighMult"
	case es&Cosmic != 0:
		return "Cosmic"
	case es&Calib != 0:
		return "Calib"
	}
	return "Unknown"
}

type RunRange struct {
	First    int32 `toml:"first"`
	Last     int32 `toml:"last"`
	TimeBins int   `toml:"time_bins"`
}

func (r RunRange) Contains(run int32) bool {
	return run >= r.First && run <= r.Last
}

type RecoParam struct {
	EventSpecie uint32 `toml:"event_specie"`
	NSlices     int    `toml:"n_slices"`
	PIDMethod   string `toml:"pid_method"`
}

// DB is the content of a calibration database file.
type DB struct {
	Storage    string      `toml:"storage"`
	Runs       []RunRange  `toml:"runs"`
	RecoParams []RecoParam `toml:"reco_params"`
}

// Open reads the database at path.
func Open(path string) (*DB, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read calibration database: %w", err)
	}
	var db DB
	if err := toml.Unmarshal(raw, &db); err != nil {
		return nil, fmt.Errorf("could not parse calibration database %q: %w", path, err)
	}
	if db.Storage == "" {
		db.Storage = "local://" + path
	}
	return &db, nil
}

var ErrNoTimeBins = errors.New("calib: no time bin entry for run")

// Context is the reconstruction context of a run. It is built once and
// never modified afterwards.
type Context struct {
	Storage   string
	Run       int32
	NTimeBins int

	// RecoParam is the parameter set matching the event specie of the first
	// event; Specie is "Unknown" and RecoParam zero when none matched.
	RecoParam RecoParam
	Specie    string
}

// NewContext selects the time-bin count of run and the first reco param
// whose specie mask intersects specie.
func NewContext(db *DB, run int32, specie uint32) (*Context, error) {
	ctx := &Context{Storage: db.Storage, Run: run, Specie: "Unknown"}
	found := false
	for _, r := range db.Runs {
		if r.Contains(run) {
			ctx.NTimeBins = r.TimeBins
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w %d in %s", ErrNoTimeBins, run, db.Storage)
	}
	for _, reco := range db.RecoParams {
		if reco.EventSpecie&specie == 0 {
			continue
		}
		ctx.RecoParam = reco
		ctx.Specie = SpecieName(reco.EventSpecie)
		break
	}
	return ctx, nil
}
