package score

import "math"

// Scored is anything with a completion state and a saved total.
type Scored interface {
	Complete() bool
	Total() float64
}

// Stats summarizes the saved records of a sheet.
type Stats struct {
	Total     int     `json:"total"`
	Completed int     `json:"completed"`
	Percent   int     `json:"percent"`
	Average   float64 `json:"average"` // mean of the positive saved totals, one decimal
}

// Summarize computes Stats over saved items only; previews never count.
func Summarize[T Scored](items []T) Stats {
	var (
		stats  = Stats{Total: len(items)}
		sum    float64
		scored int
	)
	for _, it := range items {
		if it.Complete() {
			stats.Completed++
		}
		if t := it.Total(); t > 0 {
			sum += t
			scored++
		}
	}
	if stats.Total > 0 {
		stats.Percent = int(math.Round(float64(stats.Completed) * 100 / float64(stats.Total)))
	}
	if scored > 0 {
		stats.Average = math.Round(sum/float64(scored)*10) / 10
	}
	return stats
}
