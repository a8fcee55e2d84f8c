package analysis

import (
	"fmt"
	"math"

	"github.com/user/isoplot_go/internal/parser"
)

// finiteValues drops NaN and ±Inf.
func finiteValues(data []float64) []float64 {
	out := make([]float64, 0, len(data))
	for _, v := range data {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Helper to calculate mean
func calculateMean(data []float64) float64 {
	if len(data) == 0 {
		return math.NaN()
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

// Population standard deviation; a single value has a deviation of 0.
func calculateStdDev(data []float64, mean float64) float64 {
	if len(data) < 1 {
		return math.NaN()
	}
	if len(data) == 1 {
		return 0.0
	}
	sumSqDiff := 0.0
	for _, v := range data {
		sumSqDiff += (v - mean) * (v - mean)
	}
	return math.Sqrt(sumSqDiff / float64(len(data)))
}

func calculateMinMax(data []float64) (float64, float64) {
	if len(data) == 0 {
		return math.NaN(), math.NaN()
	}
	minVal, maxVal := data[0], data[0]
	for _, v := range data[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	return minVal, maxVal
}

// Ratios compares every curve after the first against the first one. Points
// are paired by position, not by x value: element k of curve i is divided by
// element k of the reference and keeps curve i's x. When lengths differ the
// ratio stops at the shorter curve. The reference itself is not included.
func Ratios(curves []parser.Curve) []parser.Curve {
	if len(curves) < 2 {
		return nil
	}
	ref := curves[0]
	ratios := make([]parser.Curve, 0, len(curves)-1)
	for _, c := range curves[1:] {
		n := min(len(c.Points), len(ref.Points))
		pts := make([]parser.Point, n)
		for k := 0; k < n; k++ {
			pts[k] = parser.Point{X: c.Points[k].X, Y: c.Points[k].Y / ref.Points[k].Y}
		}
		ratios = append(ratios, parser.Curve{
			Title:  fmt.Sprintf("%s / %s", c.Title, ref.Title),
			Points: pts,
		})
	}
	return ratios
}

// Summarize computes the statistics of one curve. ratio is the curve's ratio
// sequence against the reference, or nil for the reference itself.
func Summarize(c parser.Curve, ratio *parser.Curve) CurveSummary {
	ys := make([]float64, len(c.Points))
	for i, p := range c.Points {
		ys[i] = p.Y
	}
	valid := finiteValues(ys)

	s := CurveSummary{
		Title:     c.Title,
		NumPoints: len(c.Points),
		MeanY:     calculateMean(valid),
		MeanRatio: 1,
	}
	s.MinY, s.MaxY = calculateMinMax(valid)
	s.RangeY = s.MaxY - s.MinY
	s.StdDevY = calculateStdDev(valid, s.MeanY)

	if ratio != nil {
		rs := make([]float64, len(ratio.Points))
		for i, p := range ratio.Points {
			rs[i] = p.Y
		}
		s.MeanRatio = calculateMean(finiteValues(rs))
	}
	return s
}

// AnalyzeBlock bundles a completed block: it copies the settings, computes
// the ratio sequences and summarizes every curve.
func AnalyzeBlock(index int, settings *parser.PlotSettings, curves []parser.Curve) *BlockResult {
	res := &BlockResult{
		Index:    index,
		Settings: *settings,
		Curves:   curves,
		Ratios:   Ratios(curves),
	}
	res.Summaries = make([]CurveSummary, 0, len(curves))
	for i, c := range curves {
		var ratio *parser.Curve
		if i > 0 {
			ratio = &res.Ratios[i-1]
		}
		res.Summaries = append(res.Summaries, Summarize(c, ratio))
	}
	return res
}
