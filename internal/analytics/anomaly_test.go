package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModifiedZScore_FlagsSingleOutlier(t *testing.T) {
	series := []float64{10, 11, 9, 10, 12, 11, 100}
	anomalies := ModifiedZScore(series, 3.5)

	require.Len(t, anomalies, 1)
	assert.Equal(t, 6, anomalies[0].Index)
}

func TestModifiedZScore_ConstantSeriesHasNoAnomalies(t *testing.T) {
	series := []float64{5, 5, 5, 5, 5}
	assert.Empty(t, ModifiedZScore(series, 3.5))
}

func TestMannKendall_StrictlyIncreasingSeriesIsIncreasing(t *testing.T) {
	series := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	result := MannKendall(series)
	assert.Equal(t, TrendIncreasing, result.Trend)
	assert.Positive(t, result.S)
}

func TestMannKendall_StrictlyDecreasingSeriesIsDecreasing(t *testing.T) {
	series := []float64{10, 9, 8, 7, 6, 5, 4, 3, 2, 1}
	result := MannKendall(series)
	assert.Equal(t, TrendDecreasing, result.Trend)
	assert.Negative(t, result.S)
}

func TestMannKendall_NoisyFlatSeriesHasNoTrend(t *testing.T) {
	series := []float64{5, 6, 5, 4, 5, 6, 5, 4, 5}
	result := MannKendall(series)
	assert.Equal(t, TrendNone, result.Trend)
}

func TestMannKendall_ShortSeriesHasNoTrend(t *testing.T) {
	assert.Equal(t, TrendNone, MannKendall([]float64{1}).Trend)
	assert.Equal(t, TrendNone, MannKendall(nil).Trend)
}
