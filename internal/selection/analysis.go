package selection

import (
	"math"
	"time"

	"github.com/kpumuk/lazyscope/internal/graph"
	"github.com/kpumuk/lazyscope/internal/series"
)

// ChannelStatistics summarizes one channel's samples inside a selection.
type ChannelStatistics struct {
	ChannelID   string  `json:"channelId"`
	Name        string  `json:"name"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
	Average     float64 `json:"average"`
	RMS         float64 `json:"rms"`
	PeakToPeak  float64 `json:"peakToPeak"`
	SampleCount int     `json:"sampleCount"`
	TimeSpanMs  float64 `json:"timeSpanMs"`
}

// Result is the analysis of one selection. Valid is false when no channel
// had samples in range.
type Result struct {
	Valid        bool                `json:"valid"`
	Start        time.Time           `json:"start"`
	End          time.Time           `json:"end"`
	StartMs      float64             `json:"startMs"`
	EndMs        float64             `json:"endMs"`
	Channels     []ChannelStatistics `json:"channels"`
	TotalSamples int                 `json:"totalSamples"`
}

// NameFunc returns a display name for a channel.
type NameFunc func(channelID string) string

// TimeRange inverts the rectangle edges through the live time scale.
func TimeRange(rect Rect, x graph.Scale) (float64, float64) {
	a, b := x.Invert(rect.Left()), x.Invert(rect.Right())
	return min(a, b), max(a, b)
}

// Analyze computes statistics for every channel with at least one sample
// whose timestamp falls in the selected range, inclusive. Channels follow
// snapshot order; empty ones are left out.
func Analyze(rect Rect, x graph.Scale, snap series.Snapshot, names NameFunc) Result {
	start, end := TimeRange(rect, x)
	res := Result{
		Start:    series.MillisToTime(start),
		End:      series.MillisToTime(end),
		StartMs:  start,
		EndMs:    end,
		Channels: []ChannelStatistics{},
	}

	snap.Each(func(id string, samples []series.Sample) {
		values := make([]float64, 0, len(samples))
		for _, s := range samples {
			if s.Timestamp >= start && s.Timestamp <= end {
				values = append(values, s.Value)
			}
		}
		stats, ok := Statistics(values)
		if !ok {
			return
		}
		stats.ChannelID = id
		stats.Name = id
		if names != nil {
			if name := names(id); name != "" {
				stats.Name = name
			}
		}
		stats.TimeSpanMs = end - start
		res.Channels = append(res.Channels, stats)
		res.TotalSamples += stats.SampleCount
	})

	res.Valid = len(res.Channels) > 0
	return res
}

// Statistics computes min, max, mean, RMS and peak-to-peak of values. It
// reports false for an empty slice.
func Statistics(values []float64) (ChannelStatistics, bool) {
	if len(values) == 0 {
		return ChannelStatistics{}, false
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	var sum, sumSq float64
	for _, v := range values {
		lo = min(lo, v)
		hi = max(hi, v)
		sum += v
		sumSq += v * v
	}
	n := float64(len(values))
	return ChannelStatistics{
		Min:         lo,
		Max:         hi,
		Average:     sum / n,
		RMS:         math.Sqrt(sumSq / n),
		PeakToPeak:  hi - lo,
		SampleCount: len(values),
	}, true
}
