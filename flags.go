package infogen

import (
	"fmt"
	"strconv"
	"strings"
)

// FloatArrayFlags collects floats from a repeatable, comma separated flag.
// The first Set replaces the default values.
type FloatArrayFlags struct {
	Array   []float64
	beenSet bool
}

func (f *FloatArrayFlags) Set(valueStr string) error {
	if !f.beenSet {
		f.beenSet = true
		f.Array = nil
	}

	for _, s := range strings.Split(valueStr, ",") {
		value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return err
		}
		f.Array = append(f.Array, value)
	}
	return nil
}

func (f *FloatArrayFlags) String() string {
	return fmt.Sprint(f.Array)
}

func (f *FloatArrayFlags) Type() string {
	return "floats"
}

// Geometry reads the ITS, TPC and TRD radii from the flag values. It
// returns def untouched when the flag was never set.
func (f *FloatArrayFlags) Geometry(def Geometry) (Geometry, error) {
	if !f.beenSet {
		return def, nil
	}
	if len(f.Array) != 3 {
		return def, fmt.Errorf("need 3 radii (its,tpc,trd), got %d", len(f.Array))
	}
	geo := Geometry{ITS: f.Array[0], TPC: f.Array[1], TRD: f.Array[2]}
	return geo, geo.Validate()
}
