package analysis

import (
	"math"

	"sp500-dashboard/src/models"
)

// Summarize reduces a series to headline figures. Volatility is the standard
// deviation of bar-over-bar returns; VolumeRatio is the last bar's volume over
// the series average. An empty series yields the zero summary.
func Summarize(series *models.MPriceSeries) models.MSeriesSummary {
	var s models.MSeriesSummary
	if series.Empty() {
		return s
	}

	closes := make([]float64, 0, len(series.Bars))
	volumes := make([]float64, 0, len(series.Bars))
	s.High = -math.MaxFloat64
	s.Low = math.MaxFloat64
	for _, b := range series.Bars {
		closes = append(closes, b.Close)
		volumes = append(volumes, float64(b.Volume))
		s.TotalVolume += b.Volume
		s.High = math.Max(s.High, b.High)
		s.Low = math.Min(s.Low, b.Low)
	}

	s.Bars = len(closes)
	s.FirstClose = closes[0]
	s.LastClose = closes[len(closes)-1]
	s.Change = s.LastClose - s.FirstClose
	s.ChangePercent = ChangePercent(s.LastClose, s.FirstClose)
	s.MeanClose, s.StdClose = MeanStd(closes)
	_, s.Volatility = MeanStd(Returns(closes))

	avgVolume, _ := MeanStd(volumes)
	s.VolumeRatio = VolumeRatio(volumes[len(volumes)-1], avgVolume)
	return s
}
