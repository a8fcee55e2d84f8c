// Package convert drives a conversion: it walks the header file through the
// record machine and, for every completed block, reads the block's curves,
// analyzes them and hands the result to a Sink.
package convert

import (
	"path/filepath"
	"strings"

	"github.com/user/isoplot_go/internal/report"
)

// DefaultHeaderPath is used when no header file is given.
const DefaultHeaderPath = "test_files/ISOPLT.P92"

// curveExt is the extension of the curve-data file that accompanies a header.
const curveExt = ".CUR"

// Options configures a conversion.
type Options struct {
	// Format is the chart image format: svg, png or pdf.
	Format string
	// WidthPx and HeightPx size the chart image; zero selects the default.
	WidthPx  int
	HeightPx int
	// DeclaredBounds plots blocks on their declared page dimensions instead
	// of autoscaling to the data.
	DeclaredBounds bool
	// ReportPath, when set, receives a PDF booklet of all charts.
	ReportPath string
	// WorkbookPath, when set, receives an xlsx export of all block data.
	WorkbookPath string
}

// DefaultOptions returns default conversion options.
func DefaultOptions() Options {
	return Options{
		Format:   report.DefaultFormat,
		WidthPx:  report.DefaultWidthPx,
		HeightPx: report.DefaultHeightPx,
	}
}

// CurvePathFor returns the curve-data file that accompanies headerPath: the
// same path with its extension replaced.
func CurvePathFor(headerPath string) string {
	return strings.TrimSuffix(headerPath, filepath.Ext(headerPath)) + curveExt
}

// OutputDirFor returns the directory charts for curvePath are written to:
// the curve-data path without its extension.
func OutputDirFor(curvePath string) string {
	dir := strings.TrimSuffix(curvePath, filepath.Ext(curvePath))
	if dir == curvePath {
		// No extension; keep the images apart from the input file.
		dir += "_charts"
	}
	return dir
}
