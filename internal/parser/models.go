package parser

import "math"

// Default page dimensions of a chart block, as declared by the Head1 record
// when the record leaves a field blank.
const (
	DefaultXDimLo = 0.0
	DefaultXDimHi = 13.5
	DefaultYDimLo = 0.0
	DefaultYDimHi = 10.0

	// DefaultLineThickness is the stroke width used for every curve.
	DefaultLineThickness = 1.5
)

// Sentinels for the autoscale accumulator. Any real data point widens the
// lower bounds; the upper bounds start at -1, so data lying entirely below
// -1 leaves them there.
var (
	sentinelLo = math.Inf(1)
	sentinelHi = -1.0
)

// PlotSettings holds the decoded configuration of the chart block currently
// being assembled. One instance is live at a time; it is rebuilt from
// DefaultPlotSettings on every blank-line reset.
type PlotSettings struct {
	XLabel string
	YLabel string
	Title1 string
	Title2 string

	// Declared page/layout dimensions (Head1).
	XDimLo float64
	XDimHi float64
	YDimLo float64
	YDimHi float64

	// Data-axis bounds, accumulated while curves are read.
	XLo float64
	XHi float64
	YLo float64
	YHi float64

	NoCurves      int // curves expected in the block (Head2)
	NoPoints      int // declared, not enforced
	AddBorder     bool
	XYGrid        int
	LineThickness float64
	AutoscaleX    bool
	AutoscaleY    bool
	RatioFirst    bool // reserved
}

// DefaultPlotSettings returns the settings a block starts from.
func DefaultPlotSettings() PlotSettings {
	return PlotSettings{
		XDimLo:        DefaultXDimLo,
		XDimHi:        DefaultXDimHi,
		YDimLo:        DefaultYDimLo,
		YDimHi:        DefaultYDimHi,
		XLo:           sentinelLo,
		XHi:           sentinelHi,
		YLo:           sentinelLo,
		YHi:           sentinelHi,
		NoCurves:      1,
		LineThickness: DefaultLineThickness,
		AutoscaleX:    true,
		AutoscaleY:    true,
	}
}

// ResetBounds puts the autoscale accumulator back to its sentinels.
func (s *PlotSettings) ResetBounds() {
	s.XLo, s.XHi = sentinelLo, sentinelHi
	s.YLo, s.YHi = sentinelLo, sentinelHi
}

// UseDeclaredBounds copies the declared page dimensions into the axis bounds
// and turns autoscaling off.
func (s *PlotSettings) UseDeclaredBounds() {
	s.XLo, s.XHi = s.XDimLo, s.XDimHi
	s.YLo, s.YHi = s.YDimLo, s.YDimHi
	s.AutoscaleX = false
	s.AutoscaleY = false
}

// Observe widens the axis bounds to include (x, y) on every axis that is
// autoscaled. A NaN coordinate leaves its axis untouched.
func (s *PlotSettings) Observe(x, y float64) {
	if s.AutoscaleX && !math.IsNaN(x) {
		s.XLo = math.Min(s.XLo, x)
		s.XHi = math.Max(s.XHi, x)
	}
	if s.AutoscaleY && !math.IsNaN(y) {
		s.YLo = math.Min(s.YLo, y)
		s.YHi = math.Max(s.YHi, y)
	}
}

// HasBounds reports whether the axis bounds describe a drawable range, i.e.
// at least one point was observed or bounds were declared.
func (s *PlotSettings) HasBounds() bool {
	finite := func(v float64) bool { return !math.IsInf(v, 0) && !math.IsNaN(v) }
	return finite(s.XLo) && finite(s.XHi) && finite(s.YLo) && finite(s.YHi) &&
		s.XLo <= s.XHi && s.YLo <= s.YHi
}

// Point is one (x, y) sample of a curve.
type Point struct {
	X, Y float64
}

// Curve is a titled point sequence in file order. The order matters: ratios
// pair points by position.
type Curve struct {
	Title  string
	Points []Point
}

// Len returns the number of points. Together with XY it lets a Curve be
// handed to gonum/plot as a plotter.XYer.
func (c Curve) Len() int { return len(c.Points) }

// XY returns the coordinates of point i.
func (c Curve) XY(i int) (float64, float64) {
	return c.Points[i].X, c.Points[i].Y
}
