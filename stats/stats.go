// Package stats keeps the run statistics of the info generator: a single
// twelve-bin histogram filled once per accepted event with the event's
// track tallies.
package stats

import (
	"fmt"
	"os"

	"go-hep.org/x/hep/hbook"
)

type Bin int

const (
	ESD Bin = iota
	MC
	V0
	TPC
	TRDin
	TRDout
	Barrel
	BarrelMC
	SA
	SAMC
	Kink
	KinkMC
	NBins
)

// Labels name the bins on the observable axis.
var Labels = [NBins]string{
	ESD:      "ESD",
	MC:       "MC",
	V0:       "V0",
	TPC:      "TPC",
	TRDin:    "TRDin",
	TRDout:   "TRDout",
	Barrel:   "Barrel",
	BarrelMC: "BarrelMC",
	SA:       "SA",
	SAMC:     "SAMC",
	Kink:     "Kink",
	KinkMC:   "KinkMC",
}

func (b Bin) String() string {
	if b < 0 || b >= NBins {
		return fmt.Sprintf("Bin(%d)", int(b))
	}
	return Labels[b]
}

// Counts are the tallies of one event.
type Counts [NBins]int

// Histogram accumulates Counts over a run.
type Histogram struct {
	h *hbook.H1D
}

func newH1D() *hbook.H1D {
	h := hbook.NewH1D(int(NBins), -0.5, float64(NBins)-0.5)
	h.Annotation()["name"] = "hStat"
	h.Annotation()["title"] = "Run statistics;Observable;Entries"
	return h
}

func New() *Histogram {
	return &Histogram{h: newH1D()}
}

// Fill adds the tallies of one event.
func (s *Histogram) Fill(c Counts) {
	for b, n := range c {
		s.h.Fill(float64(b), float64(n))
	}
}

// Count returns the accumulated tally of bin b.
func (s *Histogram) Count(b Bin) float64 {
	if b < 0 || b >= NBins {
		return 0
	}
	_, y := s.h.XY(int(b))
	return y
}

// Values returns the accumulated tallies of every bin in bin order.
func (s *Histogram) Values() []float64 {
	vs := make([]float64, NBins)
	for b := range vs {
		vs[b] = s.Count(Bin(b))
	}
	return vs
}

// Reset clears the histogram at run start.
func (s *Histogram) Reset() {
	s.h = newH1D()
}

func (s *Histogram) H1D() *hbook.H1D { return s.h }

// Save writes the histogram to path in YODA format.
func (s *Histogram) Save(path string) error {
	raw, err := s.h.MarshalYODA()
	if err != nil {
		return fmt.Errorf("could not marshal run statistics: %w", err)
	}
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("could not write run statistics: %w", err)
	}
	return nil
}

// Load reads a histogram previously written by Save.
func Load(path string) (*Histogram, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read run statistics: %w", err)
	}
	h := newH1D()
	if err := h.UnmarshalYODA(raw); err != nil {
		return nil, fmt.Errorf("could not unmarshal run statistics %q: %w", path, err)
	}
	if h.Len() != int(NBins) {
		return nil, fmt.Errorf("run statistics %q: got %d bins, want %d", path, h.Len(), NBins)
	}
	return &Histogram{h: h}, nil
}
