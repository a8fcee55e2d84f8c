package report

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/user/isoplot_go/internal/analysis"
	"github.com/user/isoplot_go/internal/parser"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"
)

// ErrNoData is returned for a block whose axis bounds were never widened,
// i.e. it has no points to draw.
var ErrNoData = errors.New("block has no data to plot")

const (
	// Pixels are converted at 96 dpi, the resolution vgimg uses by default.
	pixel = vg.Inch / 96

	DefaultWidthPx  = 1024
	DefaultHeightPx = 768
	DefaultFormat   = "svg"

	// upperShare is the fraction of the image height given to the curve
	// panel; the ratio panel gets the rest.
	upperShare = 0.75

	ratioMin = -100.0
	ratioMax = 100.0
)

// SupportedFormats lists the image formats ChartRenderer can write.
var SupportedFormats = []string{"svg", "png", "pdf"}

var plotColors = []color.Color{
	color.RGBA{R: 255, G: 0, B: 0, A: 255},   // Red
	color.RGBA{G: 128, B: 0, A: 255},         // Green
	color.RGBA{B: 255, A: 255},               // Blue
	color.RGBA{R: 255, G: 165, B: 0, A: 255}, // Orange
	color.RGBA{R: 128, G: 0, B: 128, A: 255}, // Purple
	color.RGBA{G: 128, B: 128, A: 255},       // Teal
	color.RGBA{A: 255},                       // Black
}

// curveColor returns the color of curve idx. Ratio lines reuse the color of
// the curve they were computed from.
func curveColor(idx int) color.Color {
	return plotColors[idx%len(plotColors)]
}

// sciTicks labels the default major ticks in scientific notation with one
// decimal, e.g. 2.5e+01.
type sciTicks struct {
	plot.DefaultTicks
}

func (t sciTicks) Ticks(min, max float64) []plot.Tick {
	ticks := t.DefaultTicks.Ticks(min, max)
	for i := range ticks {
		if ticks[i].Label != "" {
			ticks[i].Label = strconv.FormatFloat(ticks[i].Value, 'e', 1, 64)
		}
	}
	return ticks
}

// ChartRenderer draws a block as two stacked panels: the curves on top and
// their ratios against the first curve below.
type ChartRenderer struct {
	Format string
	Width  vg.Length
	Height vg.Length
}

// NewChartRenderer returns a renderer for the given format and pixel size.
// Zero sizes select the defaults.
func NewChartRenderer(format string, widthPx, heightPx int) (*ChartRenderer, error) {
	if format == "" {
		format = DefaultFormat
	}
	format = strings.ToLower(format)
	if !isSupportedFormat(format) {
		return nil, fmt.Errorf("unsupported image format %q (want one of %s)", format, strings.Join(SupportedFormats, ", "))
	}
	if widthPx <= 0 {
		widthPx = DefaultWidthPx
	}
	if heightPx <= 0 {
		heightPx = DefaultHeightPx
	}
	return &ChartRenderer{
		Format: format,
		Width:  vg.Length(widthPx) * pixel,
		Height: vg.Length(heightPx) * pixel,
	}, nil
}

func isSupportedFormat(format string) bool {
	for _, f := range SupportedFormats {
		if f == format {
			return true
		}
	}
	return false
}

// curvePlot builds the upper panel.
func curvePlot(block *analysis.BlockResult) (*plot.Plot, error) {
	s := block.Settings
	p := plot.New()
	p.Title.Text = s.Title1
	if s.Title2 != "" {
		p.Title.Text += "\n" + s.Title2
	}
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel
	p.X.Min, p.X.Max = s.XLo, s.XHi
	p.Y.Min, p.Y.Max = s.YLo, s.YHi
	p.X.Tick.Marker = sciTicks{}
	p.Y.Tick.Marker = sciTicks{}
	if s.XYGrid != 0 {
		p.Add(plotter.NewGrid())
	}

	for idx, c := range block.Curves {
		line, err := plotter.NewLine(finitePoints(c))
		if err != nil {
			return nil, fmt.Errorf("failed to create line for %q: %w", c.Title, err)
		}
		line.Color = curveColor(idx)
		line.LineStyle.Width = vg.Points(s.LineThickness)
		p.Add(line)
		p.Legend.Add(c.Title, line)
	}
	p.Legend.Top = true
	p.Legend.XOffs = -vg.Points(10)
	return p, nil
}

// ratioPlot builds the lower panel on the same x-range and a fixed y-range.
func ratioPlot(block *analysis.BlockResult) (*plot.Plot, error) {
	s := block.Settings
	p := plot.New()
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = "Ratio"
	p.X.Min, p.X.Max = s.XLo, s.XHi
	p.Y.Min, p.Y.Max = ratioMin, ratioMax
	p.X.Tick.Marker = sciTicks{}
	if s.XYGrid != 0 {
		p.Add(plotter.NewGrid())
	}

	for i, r := range block.Ratios {
		line, err := plotter.NewLine(finitePoints(r))
		if err != nil {
			return nil, fmt.Errorf("failed to create ratio line for %q: %w", r.Title, err)
		}
		line.Color = curveColor(i + 1)
		line.LineStyle.Width = vg.Points(s.LineThickness)
		p.Add(line)
	}
	return p, nil
}

// finitePoints copies the drawable points of c. gonum/plot rejects NaN and
// infinite coordinates, which a zero reference value produces in a ratio.
func finitePoints(c parser.Curve) plotter.XYs {
	pts := make(plotter.XYs, 0, c.Len())
	for i := 0; i < c.Len(); i++ {
		x, y := c.XY(i)
		if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: x, Y: y})
	}
	return pts
}

// Render draws block and writes the encoded image to w.
func (r *ChartRenderer) Render(w io.Writer, block *analysis.BlockResult) error {
	if len(block.Curves) == 0 || !block.Settings.HasBounds() {
		return ErrNoData
	}
	upper, err := curvePlot(block)
	if err != nil {
		return err
	}
	lower, err := ratioPlot(block)
	if err != nil {
		return err
	}

	c, err := draw.NewFormattedCanvas(r.Width, r.Height, r.Format)
	if err != nil {
		return fmt.Errorf("failed to create %s canvas: %w", r.Format, err)
	}
	dc := draw.New(c)
	lowerHeight := r.Height * (1 - upperShare)
	upper.Draw(draw.Crop(dc, 0, 0, lowerHeight, 0))
	lower.Draw(draw.Crop(dc, 0, 0, 0, lowerHeight-r.Height))

	if block.Settings.AddBorder {
		drawBorder(dc)
	}

	if _, err := c.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write %s image: %w", r.Format, err)
	}
	return nil
}

func drawBorder(dc draw.Canvas) {
	sty := draw.LineStyle{Color: color.Black, Width: vg.Points(1)}
	lo, hi := dc.Min, dc.Max
	dc.StrokeLines(sty, []vg.Point{
		{X: lo.X, Y: lo.Y},
		{X: hi.X, Y: lo.Y},
		{X: hi.X, Y: hi.Y},
		{X: lo.X, Y: hi.Y},
		{X: lo.X, Y: lo.Y},
	})
}

// RenderBytes renders block into memory.
func (r *ChartRenderer) RenderBytes(block *analysis.BlockResult) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := r.Render(buf, block); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile renders block to dir/<title1>.<format> and returns the path.
// dir must exist.
func (r *ChartRenderer) WriteFile(dir string, block *analysis.BlockResult) (string, error) {
	data, err := r.RenderBytes(block)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, ChartFileName(block.Settings.Title1, block.Index, r.Format))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write chart: %w", err)
	}
	return path, nil
}

// ChartFileName derives an image file name from a block title. Characters
// that cannot appear in a file name are replaced; an empty title falls back
// to the block number.
func ChartFileName(title string, index int, format string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" || name == "." || name == ".." {
		name = fmt.Sprintf("block_%d", index)
	}
	return name + "." + format
}
