package weather

import (
	"math"
	"math/rand"
	"time"
)

// Marine holds sea-state fields that the weather source does not provide.
type Marine struct {
	WaveHeight   float64 // m
	CurrentSpeed float64 // m/s
}

// SimulateMarine produces plausible sea-state values when no marine data
// source is configured. Values drift slowly with time plus a small random
// component, clamped to realistic ranges.
func SimulateMarine(now time.Time) Marine {
	wave := 0.5 + math.Sin(float64(now.Unix())/1e6)*0.5 + rand.Float64()*0.8
	wave = clamp(wave, 0.1, 3.0)

	current := 0.3 + math.Cos(float64(now.Unix())/2e6)*0.2 + rand.Float64()*0.4
	current = clamp(current, 0.1, 2.0)

	return Marine{
		WaveHeight:   round2(wave),
		CurrentSpeed: round2(current),
	}
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
