package analysis

import "github.com/user/isoplot_go/internal/parser"

// CurveSummary holds descriptive statistics for one curve of a block.
type CurveSummary struct {
	Title     string
	NumPoints int
	MinY      float64
	MaxY      float64
	MeanY     float64
	StdDevY   float64 // population standard deviation
	RangeY    float64
	MeanRatio float64 // mean of y / y_ref; 1 for the reference curve, NaN when undefined
}

// BlockResult is everything produced for one chart block: the final settings
// (with accumulated bounds), the curves in file order, their ratios against
// the first curve, and per-curve statistics.
type BlockResult struct {
	Index     int // 1-based position of the block in the header file
	Settings  parser.PlotSettings
	Curves    []parser.Curve
	Ratios    []parser.Curve // len(Curves)-1 entries, Ratios[i-1] belongs to Curves[i]
	Summaries []CurveSummary
}
