package analytics

import "sort"

// AnomalyThreshold is the conventional modified z-score cutoff (Iglewicz
// & Hoaglin) beyond which a point is treated as an outlier.
const AnomalyThreshold = 3.5

// AnomalyIndex marks one series position flagged by the modified z-score
// test, with its score for ranking.
type AnomalyIndex struct {
	Index int
	Score float64
}

// ModifiedZScore flags points in series whose modified z-score
// (0.6745 * (x - median) / MAD) exceeds threshold in absolute value,
// robust to the outliers a plain mean/stddev z-score would be skewed by.
// Returns anomalies sorted by descending |score|.
func ModifiedZScore(series []float64, threshold float64) []AnomalyIndex {
	if len(series) == 0 {
		return nil
	}
	med := median(series)
	deviations := make([]float64, len(series))
	for i, x := range series {
		d := x - med
		if d < 0 {
			d = -d
		}
		deviations[i] = d
	}
	mad := median(deviations)

	var anomalies []AnomalyIndex
	if mad == 0 {
		return nil // no variation in the series; nothing qualifies as an outlier
	}
	for i, x := range series {
		score := 0.6745 * (x - med) / mad
		abs := score
		if abs < 0 {
			abs = -abs
		}
		if abs > threshold {
			anomalies = append(anomalies, AnomalyIndex{Index: i, Score: round3(score)})
		}
	}

	sort.Slice(anomalies, func(i, j int) bool {
		ai, aj := anomalies[i].Score, anomalies[j].Score
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		return ai > aj
	})
	return anomalies
}

func median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
