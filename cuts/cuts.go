// Package cuts provides the selection policies the info generator can be
// configured with: an event cut, a track cut and a V0 cut that attaches PID
// hypotheses to paired-track candidates.
package cuts

import (
	"math"

	"github.com/decibelcooper/infogen/esd"
)

// EventCut selects events on multiplicity and vertex quality. Zero fields
// disable the corresponding cut.
type EventCut struct {
	MinTracks       int     `toml:"min_tracks"`
	MaxVertexZ      float64 `toml:"max_vertex_z"`
	MinContributors int     `toml:"min_contributors"`
	// CollisionOnly rejects every event that is not flagged as collision.
	CollisionOnly bool `toml:"collision_only"`
}

func (c *EventCut) IsSelected(ev *esd.Event, collision bool) bool {
	if c.CollisionOnly && !collision {
		return false
	}
	if c.MinTracks > 0 && ev.NumberOfTracks() < c.MinTracks {
		return false
	}
	if c.MaxVertexZ > 0 && math.Abs(ev.Vertex.Z) > c.MaxVertexZ {
		return false
	}
	if c.MinContributors > 0 && ev.Vertex.NContributors < c.MinContributors {
		return false
	}
	return true
}

// TrackCut is a generic quality cut on reconstructed tracks. Zero fields
// disable the corresponding cut.
type TrackCut struct {
	MinPt      float64    `toml:"min_pt"`
	MaxPt      float64    `toml:"max_pt"`
	MaxEta     float64    `toml:"max_eta"`
	MinNclsITS int        `toml:"min_ncls_its"`
	MinNclsTPC int        `toml:"min_ncls_tpc"`
	MinNclsTRD int        `toml:"min_ncls_trd"`
	MaxDCAxy   float64    `toml:"max_dca_xy"`
	MaxDCAz    float64    `toml:"max_dca_z"`
	Require    esd.Status `toml:"require_status"`
	// RejectKinks drops kink mothers and daughters.
	RejectKinks bool `toml:"reject_kinks"`
}

func (c *TrackCut) IsSelected(t *esd.Track) bool {
	switch {
	case c.MinPt > 0 && t.Pt() < c.MinPt:
		return false
	case c.MaxPt > 0 && t.Pt() > c.MaxPt:
		return false
	case c.MaxEta > 0 && math.Abs(t.Eta()) > c.MaxEta:
		return false
	case t.Ncls[esd.ITS] < c.MinNclsITS:
		return false
	case t.Ncls[esd.TPC] < c.MinNclsTPC:
		return false
	case t.Ncls[esd.TRD] < c.MinNclsTRD:
		return false
	case c.MaxDCAxy > 0 && math.Abs(t.ImpactXY) > c.MaxDCAxy:
		return false
	case c.MaxDCAz > 0 && math.Abs(t.ImpactZ) > c.MaxDCAz:
		return false
	case !t.Status.Has(c.Require):
		return false
	case c.RejectKinks && t.KinkIndex != 0:
		return false
	}
	return true
}
