package infogen

import (
	"math"
	"strconv"

	"gonum.org/v1/plot"
)

// CountTicks marks an axis of event counts: labelled major ticks on whole
// numbers, stepping by 1, 2 or 5 times a power of ten, and unlabelled minor
// ticks in between.
type CountTicks struct {
	NSuggestedTicks int
}

func (t CountTicks) Ticks(min, max float64) []plot.Tick {
	if t.NSuggestedTicks == 0 {
		t.NSuggestedTicks = 4
	}
	if min < 0 {
		min = 0
	}
	if max <= min {
		max = min + 1
	}

	majorDelta := countStep((max - min) / float64(t.NSuggestedTicks-1))
	var ticks []plot.Tick
	for val := math.Ceil(min/majorDelta) * majorDelta; val <= max; val += majorDelta {
		ticks = append(ticks, plot.Tick{Value: val, Label: strconv.FormatFloat(val, 'f', 0, 64)})
	}

	minorDelta := majorDelta / 5
	if minorDelta < 1 {
		return ticks
	}
	for val := math.Ceil(min/minorDelta) * minorDelta; val <= max; val += minorDelta {
		if math.Mod(val, majorDelta) == 0 {
			continue
		}
		ticks = append(ticks, plot.Tick{Value: val})
	}
	return ticks
}

// countStep rounds a raw step up to 1, 2 or 5 times a power of ten, never
// below one count.
func countStep(raw float64) float64 {
	if raw <= 1 {
		return 1
	}
	tens := math.Pow10(int(math.Floor(math.Log10(raw))))
	switch n := raw / tens; {
	case n <= 1:
		return tens
	case n <= 2:
		return 2 * tens
	case n <= 5:
		return 5 * tens
	}
	return 10 * tens
}
