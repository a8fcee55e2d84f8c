package convert

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/user/isoplot_go/internal/analysis"
	"github.com/user/isoplot_go/internal/parser"
	"github.com/user/isoplot_go/internal/report"
)

// Sink receives every completed block. Returning report.ErrNoData skips the
// block; any other error ends the run.
type Sink interface {
	Emit(block *analysis.BlockResult) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(block *analysis.BlockResult) error

func (f SinkFunc) Emit(block *analysis.BlockResult) error { return f(block) }

// Result summarizes a run.
type Result struct {
	Blocks  []*analysis.BlockResult
	Images  []string // chart files written, in block order
	Skipped int      // blocks with nothing to draw
	OutDir  string
}

// Converter turns a header/curve file pair into charts.
type Converter struct {
	opts Options
	log  logrus.FieldLogger
}

// New returns a Converter. A nil logger discards output.
func New(opts Options, log logrus.FieldLogger) *Converter {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &Converter{opts: opts, log: log}
}

// Process advances the header cursor one line at a time and, whenever the
// record machine completes a block, advances the curve cursor by that
// block's curves. Each block is analyzed and emitted before the next header
// line is read. It returns the blocks produced and the number skipped.
func (c *Converter) Process(header io.Reader, curves *parser.CurveReader, sink Sink) ([]*analysis.BlockResult, int, error) {
	sc := parser.NewLineScanner(header)
	m := parser.NewRecordMachine(parser.Options{DeclaredBounds: c.opts.DeclaredBounds})

	var blocks []*analysis.BlockResult
	skipped := 0
	lineNo := 0
	for sc.Scan() {
		lineNo++
		if !m.Feed(sc.Text()) {
			continue
		}

		index := len(blocks) + 1
		settings := m.Settings()
		entry := c.log.WithFields(logrus.Fields{"block": index, "title": settings.Title1})
		entry.WithField("curves", settings.NoCurves).Debug("Reading curves")

		data, err := curves.ReadBlock(settings)
		if err != nil {
			return blocks, skipped, &BlockError{Index: index, Title: settings.Title1, HeaderLine: lineNo, Err: err}
		}
		block := analysis.AnalyzeBlock(index, settings, data)
		blocks = append(blocks, block)
		entry.WithFields(logrus.Fields{
			"curves": len(data),
			"x":      fmt.Sprintf("[%g, %g]", settings.XLo, settings.XHi),
			"y":      fmt.Sprintf("[%g, %g]", settings.YLo, settings.YHi),
		}).Info("Block parsed")

		if err := sink.Emit(block); err != nil {
			if errors.Is(err, report.ErrNoData) {
				entry.Warn("Block has no drawable points or axis range, no chart written")
				skipped++
				continue
			}
			return blocks, skipped, &BlockError{Index: index, Title: settings.Title1, HeaderLine: lineNo, Err: err}
		}
	}
	if err := sc.Err(); err != nil {
		return blocks, skipped, fmt.Errorf("failed to read header: %w", err)
	}
	return blocks, skipped, nil
}

// Convert opens the header and curve-data files, writes one chart per block
// into the output directory derived from curvePath, and then the optional
// PDF booklet and workbook.
func (c *Converter) Convert(headerPath, curvePath string) (*Result, error) {
	renderer, err := report.NewChartRenderer(c.opts.Format, c.opts.WidthPx, c.opts.HeightPx)
	if err != nil {
		return nil, err
	}

	hf, err := os.Open(headerPath)
	if err != nil {
		return nil, &OpenError{Role: "header", Path: headerPath, Err: err}
	}
	defer hf.Close()

	cf, err := os.Open(curvePath)
	if err != nil {
		return nil, &OpenError{Role: "curve", Path: curvePath, Err: err}
	}
	defer cf.Close()

	res := &Result{OutDir: OutputDirFor(curvePath)}
	if err := os.MkdirAll(res.OutDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	c.log.Infof("Parsing: %s with curves from %s", headerPath, curvePath)

	sink := SinkFunc(func(b *analysis.BlockResult) error {
		path, err := renderer.WriteFile(res.OutDir, b)
		if err != nil {
			return err
		}
		res.Images = append(res.Images, path)
		c.log.WithField("block", b.Index).Infof("Rendered: %s", path)
		return nil
	})

	res.Blocks, res.Skipped, err = c.Process(hf, parser.NewCurveReader(cf), sink)
	if err != nil {
		return res, err
	}

	if c.opts.ReportPath != "" {
		if err := c.writeReport(headerPath, curvePath, res.Blocks); err != nil {
			return res, err
		}
	}
	if c.opts.WorkbookPath != "" {
		if err := report.WriteWorkbook(c.opts.WorkbookPath, res.Blocks); err != nil {
			return res, err
		}
		c.log.Infof("Workbook written: %s", c.opts.WorkbookPath)
	}
	return res, nil
}

func (c *Converter) writeReport(headerPath, curvePath string, blocks []*analysis.BlockResult) error {
	png, err := report.NewChartRenderer("png", report.DefaultWidthPx, report.DefaultHeightPx)
	if err != nil {
		return err
	}
	pages := make([]report.BookletPage, 0, len(blocks))
	for _, b := range blocks {
		img, err := png.RenderBytes(b)
		if err != nil && !errors.Is(err, report.ErrNoData) {
			return fmt.Errorf("failed to render block %d for report: %w", b.Index, err)
		}
		pages = append(pages, report.BookletPage{Block: b, Image: img})
	}
	info := report.BookletInfo{HeaderPath: headerPath, CurvePath: curvePath}
	if err := report.BuildPDFReport(c.opts.ReportPath, info, pages); err != nil {
		return fmt.Errorf("failed to write PDF report: %w", err)
	}
	c.log.Infof("PDF report written: %s", c.opts.ReportPath)
	return nil
}
