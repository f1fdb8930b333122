package data

import (
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary describes the reward distribution of a run.
type Summary struct {
	Steps         int     `json:"steps" yaml:"steps"`
	Total         float64 `json:"total" yaml:"total"`
	Mean          float64 `json:"mean" yaml:"mean"`
	StdDev        float64 `json:"std_dev" yaml:"stdDev"`
	Min           float64 `json:"min" yaml:"min"`
	Max           float64 `json:"max" yaml:"max"`
	P50           float64 `json:"p50" yaml:"p50"`
	P90           float64 `json:"p90" yaml:"p90"`
	OffTrackRatio float64 `json:"off_track_ratio" yaml:"offTrackRatio"`
}

// Summarize computes the reward distribution of steps.
func Summarize(steps []*ScoredStep) *Summary {
	s := &Summary{Steps: len(steps)}
	if len(steps) == 0 {
		return s
	}

	rewards := make([]float64, len(steps))
	offTrack := 0
	for i, st := range steps {
		rewards[i] = st.Reward
		if st.OffTrack {
			offTrack++
		}
	}

	s.Total = floats.Sum(rewards)
	s.Min = floats.Min(rewards)
	s.Max = floats.Max(rewards)
	s.OffTrackRatio = float64(offTrack) / float64(len(steps))

	if len(rewards) > 1 {
		s.Mean, s.StdDev = stat.MeanStdDev(rewards, nil)
	} else {
		s.Mean = rewards[0]
	}

	sorted := append([]float64(nil), rewards...)
	sort.Float64s(sorted)
	s.P50 = stat.Quantile(0.5, stat.Empirical, sorted, nil)
	s.P90 = stat.Quantile(0.9, stat.Empirical, sorted, nil)
	return s
}
