package inclusion

import (
	"math"
	"sort"

	"github.com/r3troseer/SME-loan-transact/internal/models"
)

// Quartiles of the dataset turnover distribution.
type Quartiles struct {
	P25   float64
	P50   float64
	P75   float64
	Known bool
}

// TurnoverQuartiles computes the quartiles over companies with a known turnover.
func TurnoverQuartiles(companies []*models.Company) Quartiles {
	values := make([]float64, 0, len(companies))
	for _, c := range companies {
		if t, ok := c.Turnover(); ok {
			values = append(values, t)
		}
	}
	if len(values) == 0 {
		return Quartiles{}
	}
	sort.Float64s(values)

	return Quartiles{
		P25:   quantile(values, 0.25),
		P50:   quantile(values, 0.50),
		P75:   quantile(values, 0.75),
		Known: true,
	}
}

// SizeScore places a turnover in the quartile bands. Smaller scores higher.
func (q Quartiles) SizeScore(turnover float64, known bool) float64 {
	if !known || !q.Known {
		return 50
	}
	switch {
	case turnover <= q.P25:
		return 80
	case turnover <= q.P50:
		return 65
	case turnover <= q.P75:
		return 45
	default:
		return 30
	}
}

// quantile interpolates linearly between the closest ranks of sorted,
// at position (n-1)p.
func quantile(sorted []float64, p float64) float64 {
	pos := float64(len(sorted)-1) * p
	lo := math.Floor(pos)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (pos-lo)*(sorted[i+1]-sorted[i])
}
