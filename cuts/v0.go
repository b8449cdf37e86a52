package cuts

import (
	"math"

	"github.com/decibelcooper/infogen/info"
)

// Decay hypotheses.
const (
	Gamma      = "gamma"
	K0s        = "K0s"
	Lambda     = "Lambda"
	AntiLambda = "AntiLambda"
)

const (
	k0sMass    = 0.497614
	lambdaMass = 1.115683

	defaultGammaMaxMass   = 0.05
	defaultK0sWindow      = 0.01
	defaultLambdaWindow   = 0.005
	defaultMinCosPointing = 0.99
	defaultMaxDCA         = 1.
)

// V0Cut tags V0 legs with PID hypotheses from the invariant mass of the pair
// under each decay hypothesis. Zero fields fall back to the default windows.
type V0Cut struct {
	GammaMaxMass   float64 `toml:"gamma_max_mass"`
	K0sWindow      float64 `toml:"k0s_window"`
	LambdaWindow   float64 `toml:"lambda_window"`
	MinCosPointing float64 `toml:"min_cos_pointing"`
	MaxDCA         float64 `toml:"max_dca"`
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// Tag sets the decay hypothesis and the per-leg PID of v. Candidates failing
// the topology cuts or all mass windows are left untagged.
func (c *V0Cut) Tag(v *info.V0Info) {
	v.Decay = ""
	clear(v.PIDPos[:])
	clear(v.PIDNeg[:])

	if v.CosPointing < orDefault(c.MinCosPointing, defaultMinCosPointing) {
		return
	}
	if v.DCA > orDefault(c.MaxDCA, defaultMaxDCA) {
		return
	}

	switch {
	case invMass(v, info.Electron, info.Electron) < orDefault(c.GammaMaxMass, defaultGammaMaxMass):
		v.Decay = Gamma
		v.PIDPos[info.Electron], v.PIDNeg[info.Electron] = 1, 1
	case math.Abs(invMass(v, info.Pion, info.Pion)-k0sMass) < orDefault(c.K0sWindow, defaultK0sWindow):
		v.Decay = K0s
		v.PIDPos[info.Pion], v.PIDNeg[info.Pion] = 1, 1
	case math.Abs(invMass(v, info.Proton, info.Pion)-lambdaMass) < orDefault(c.LambdaWindow, defaultLambdaWindow):
		v.Decay = Lambda
		v.PIDPos[info.Proton], v.PIDNeg[info.Pion] = 1, 1
	case math.Abs(invMass(v, info.Pion, info.Proton)-lambdaMass) < orDefault(c.LambdaWindow, defaultLambdaWindow):
		v.Decay = AntiLambda
		v.PIDPos[info.Pion], v.PIDNeg[info.Proton] = 1, 1
	}
}

// invMass is the invariant mass of the pair assuming species ip for the
// positive and in for the negative leg.
func invMass(v *info.V0Info, ip, in int) float64 {
	p := [3]float64{v.PP[0] + v.NP[0], v.PP[1] + v.NP[1], v.PP[2] + v.NP[2]}
	p2 := p[0]*p[0] + p[1]*p[1] + p[2]*p[2]
	e := energy(v.PP, info.Masses[ip]) + energy(v.NP, info.Masses[in])
	m2 := e*e - p2
	if m2 < 0 {
		return 0
	}
	return math.Sqrt(m2)
}

func energy(p [3]float64, m float64) float64 {
	return math.Sqrt(p[0]*p[0] + p[1]*p[1] + p[2]*p[2] + m*m)
}
