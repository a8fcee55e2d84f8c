package convert

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/user/isoplot_go/internal/analysis"
	"github.com/user/isoplot_go/internal/parser"
	"github.com/user/isoplot_go/internal/report"
)

func fixedRecord(vals ...string) string {
	widths := []int{12, 11, 11, 11}
	line := " "
	for i, v := range vals {
		line += fmt.Sprintf("%*s", widths[i], v)
	}
	return line
}

func lines(ls ...string) string {
	return strings.Join(ls, "\n") + "\n"
}

var roundTripHeader = lines(
	fixedRecord("0.0", "13.5", "0.0", "10.0"),
	fixedRecord("2", "3", "0", "0"),
	"Time",
	"Amplitude",
	"RunA",
	"Comparison",
	"LINE1",
	"LINE2",
)

var roundTripCurves = lines(
	"Reference",
	"0 1",
	"1 2",
	"2 4",
	"",
	"Second",
	"0 1",
	"1 2.5",
	"2 3",
	"",
)

// collect runs Process and returns every emitted block.
func collect(t *testing.T, header, curves string, opts Options) ([]*analysis.BlockResult, error) {
	t.Helper()
	var emitted []*analysis.BlockResult
	sink := SinkFunc(func(b *analysis.BlockResult) error {
		emitted = append(emitted, b)
		return nil
	})
	_, _, err := New(opts, nil).Process(strings.NewReader(header), parser.NewCurveReader(strings.NewReader(curves)), sink)
	return emitted, err
}

func TestProcessRoundTrip(t *testing.T) {
	blocks, err := collect(t, roundTripHeader, roundTripCurves, DefaultOptions())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(blocks))
	}
	b := blocks[0]
	s := b.Settings
	if s.XLo != 0 || s.XHi != 2 || s.YLo != 1 || s.YHi != 4 {
		t.Errorf("bounds = x[%g,%g] y[%g,%g], want x[0,2] y[1,4]", s.XLo, s.XHi, s.YLo, s.YHi)
	}
	if s.XLabel != "Time" || s.YLabel != "Amplitude" || s.Title1 != "RunA" || s.Title2 != "Comparison" {
		t.Errorf("labels = %q %q %q %q", s.XLabel, s.YLabel, s.Title1, s.Title2)
	}
	if len(b.Ratios) != 1 {
		t.Fatalf("got %d ratio sequences, want 1", len(b.Ratios))
	}
	want := []parser.Point{{X: 0, Y: 1.0}, {X: 1, Y: 1.25}, {X: 2, Y: 0.75}}
	if diff := cmp.Diff(want, b.Ratios[0].Points); diff != "" {
		t.Errorf("ratio mismatch (-want +got):\n%s", diff)
	}
}

func TestProcessLongLabelLine(t *testing.T) {
	label := strings.Repeat("L", 100*1024)
	header := lines(
		fixedRecord("0.0", "13.5", "0.0", "10.0"),
		fixedRecord("2", "3", "0", "0"),
		label,
		"Amplitude",
		"RunA",
		"Comparison",
		"LINE1",
		"LINE2",
	)
	blocks, err := collect(t, header, roundTripCurves, DefaultOptions())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(blocks) != 1 || blocks[0].Settings.XLabel != label {
		t.Errorf("got %d blocks, want 1 with the long x label", len(blocks))
	}
}

func TestProcessBlankLineResetsSecondBlock(t *testing.T) {
	curves := lines(
		"A", "0 1", "1 2", "",
		"B", "0 2", "1 2", "",
		"C", "5 5", "6 6", "",
	)
	// The second block's Head2 record leaves no_curves blank, so it must
	// fall back to the default rather than keep the first block's 2.
	header := lines(
		fixedRecord("0", "10", "0", "10"),
		fixedRecord("2"),
		"Time",
		"Amplitude",
		"First",
		"Sub",
		"LINE1",
		"LINE2",
		"",
		fixedRecord("0", "10", "0", "10"),
		fixedRecord("", "2"),
		"Distance",
		"Force",
		"Second",
		"Other",
		"LINE1",
	)
	blocks, err := collect(t, header, curves, DefaultOptions())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	first, second := blocks[0].Settings, blocks[1].Settings
	if first.XLabel != "Time" || first.NoCurves != 2 {
		t.Errorf("first block: xlabel %q curves %d", first.XLabel, first.NoCurves)
	}
	if second.XLabel != "Distance" || second.YLabel != "Force" {
		t.Errorf("second block labels = %q, %q; want Distance, Force", second.XLabel, second.YLabel)
	}
	if second.NoCurves != 1 {
		t.Errorf("second block inherited no_curves = %d, want default 1", second.NoCurves)
	}
	if second.XLo != 5 || second.XHi != 6 {
		t.Errorf("second block x bounds = [%g,%g], want [5,6]", second.XLo, second.XHi)
	}
	if got := blocks[1].Curves[0].Title; got != "C" {
		t.Errorf("second block curve = %q, want C", got)
	}
}

func TestProcessConsecutiveBlocksWithoutReset(t *testing.T) {
	header := roundTripHeader + lines("RunB", "Again", "LINE1")
	curves := roundTripCurves + lines("R2", "0 10", "", "S2", "0 20", "")
	blocks, err := collect(t, header, curves, DefaultOptions())
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(blocks) != 2 {
		t.Fatalf("got %d blocks, want 2", len(blocks))
	}
	b := blocks[1]
	if b.Index != 2 || b.Settings.Title1 != "RunB" || b.Settings.XLabel != "Time" {
		t.Errorf("second block = %d %q %q", b.Index, b.Settings.Title1, b.Settings.XLabel)
	}
	if b.Settings.YLo != 10 || b.Settings.YHi != 20 {
		t.Errorf("second block y bounds = [%g,%g], want [10,20]", b.Settings.YLo, b.Settings.YHi)
	}
	if got := b.Ratios[0].Points[0].Y; got != 2 {
		t.Errorf("ratio = %v, want 2", got)
	}
}

func TestProcessCurveStreamExhausted(t *testing.T) {
	header := strings.Replace(roundTripHeader, fixedRecord("2", "3", "0", "0"), fixedRecord("3", "3", "0", "0"), 1)
	blocks, err := collect(t, header, roundTripCurves, DefaultOptions())
	if !errors.Is(err, parser.ErrCurveStreamExhausted) {
		t.Fatalf("err = %v, want ErrCurveStreamExhausted", err)
	}
	var be *BlockError
	if !errors.As(err, &be) || be.Index != 1 || be.Title != "RunA" || be.HeaderLine != 7 {
		t.Errorf("err = %#v, want BlockError for block 1 at header line 7", err)
	}
	if len(blocks) != 0 {
		t.Errorf("emitted %d blocks, want none", len(blocks))
	}
}

func TestProcessMalformedPointIsFatal(t *testing.T) {
	curves := strings.Replace(roundTripCurves, "1 2.5", "1 2,5", 1)
	_, err := collect(t, roundTripHeader, curves, DefaultOptions())
	var pe *parser.PointParseError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PointParseError", err)
	}
	if pe.Line != 8 {
		t.Errorf("line = %d, want 8", pe.Line)
	}
}

func TestProcessSkipsBlocksWithoutData(t *testing.T) {
	header := strings.Replace(roundTripHeader, fixedRecord("2", "3", "0", "0"), fixedRecord("0", "0", "0", "0"), 1)
	sink := SinkFunc(func(b *analysis.BlockResult) error {
		if !b.Settings.HasBounds() {
			return report.ErrNoData
		}
		return nil
	})
	blocks, skipped, err := New(DefaultOptions(), nil).Process(strings.NewReader(header), parser.NewCurveReader(strings.NewReader("")), sink)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if len(blocks) != 1 || skipped != 1 {
		t.Errorf("blocks=%d skipped=%d, want 1 and 1", len(blocks), skipped)
	}
}

func TestProcessSinkErrorIsFatal(t *testing.T) {
	boom := errors.New("disk full")
	sink := SinkFunc(func(*analysis.BlockResult) error { return boom })
	_, _, err := New(DefaultOptions(), nil).Process(strings.NewReader(roundTripHeader), parser.NewCurveReader(strings.NewReader(roundTripCurves)), sink)
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func writeInputs(t *testing.T, header, curves string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	headerPath := filepath.Join(dir, "ISOPLT.P92")
	curvePath := filepath.Join(dir, "ISOPLT.CUR")
	if err := os.WriteFile(headerPath, []byte(header), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(curvePath, []byte(curves), 0644); err != nil {
		t.Fatal(err)
	}
	return headerPath, curvePath
}

func TestConvertWritesCharts(t *testing.T) {
	headerPath, curvePath := writeInputs(t, roundTripHeader, roundTripCurves)
	opts := DefaultOptions()
	opts.ReportPath = filepath.Join(t.TempDir(), "report.pdf")
	opts.WorkbookPath = filepath.Join(t.TempDir(), "data.xlsx")

	res, err := New(opts, nil).Convert(headerPath, curvePath)
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	wantDir := strings.TrimSuffix(curvePath, ".CUR")
	if res.OutDir != wantDir {
		t.Errorf("OutDir = %q, want %q", res.OutDir, wantDir)
	}
	wantImage := filepath.Join(wantDir, "RunA.svg")
	if diff := cmp.Diff([]string{wantImage}, res.Images); diff != "" {
		t.Errorf("images mismatch (-want +got):\n%s", diff)
	}
	data, err := os.ReadFile(wantImage)
	if err != nil {
		t.Fatalf("chart not written: %v", err)
	}
	if !strings.Contains(string(data), "<svg") {
		t.Error("chart is not an SVG document")
	}

	pdf, err := os.ReadFile(opts.ReportPath)
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if !strings.HasPrefix(string(pdf), "%PDF") {
		t.Error("report is not a PDF document")
	}

	f, err := excelize.OpenFile(opts.WorkbookPath)
	if err != nil {
		t.Fatalf("workbook not readable: %v", err)
	}
	defer f.Close()
	if got := f.GetSheetList(); len(got) != 1 || got[0] != "RunA" {
		t.Errorf("sheets = %v, want [RunA]", got)
	}
}

func TestConvertOutputDirIsReused(t *testing.T) {
	headerPath, curvePath := writeInputs(t, roundTripHeader, roundTripCurves)
	for i := 0; i < 2; i++ {
		if _, err := New(DefaultOptions(), nil).Convert(headerPath, curvePath); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
}

func TestConvertNoImageForFailedBlock(t *testing.T) {
	header := strings.Replace(roundTripHeader, fixedRecord("2", "3", "0", "0"), fixedRecord("3", "3", "0", "0"), 1)
	headerPath, curvePath := writeInputs(t, header, roundTripCurves)
	res, err := New(DefaultOptions(), nil).Convert(headerPath, curvePath)
	if !errors.Is(err, parser.ErrCurveStreamExhausted) {
		t.Fatalf("err = %v, want ErrCurveStreamExhausted", err)
	}
	if len(res.Images) != 0 {
		t.Errorf("images written: %v", res.Images)
	}
	if _, err := os.Stat(filepath.Join(res.OutDir, "RunA.svg")); !os.IsNotExist(err) {
		t.Errorf("RunA.svg exists or stat failed unexpectedly: %v", err)
	}
}

func TestConvertOpenErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := New(DefaultOptions(), nil).Convert(filepath.Join(dir, "missing.P92"), filepath.Join(dir, "missing.CUR"))
	var oe *OpenError
	if !errors.As(err, &oe) || oe.Role != "header" {
		t.Errorf("err = %v, want header OpenError", err)
	}

	headerPath, _ := writeInputs(t, roundTripHeader, roundTripCurves)
	curvePath := filepath.Join(dir, "none.CUR")
	_, err = New(DefaultOptions(), nil).Convert(headerPath, curvePath)
	if !errors.As(err, &oe) || oe.Role != "curve" {
		t.Errorf("err = %v, want curve OpenError", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "none")); !os.IsNotExist(statErr) {
		t.Error("output directory created although the curve file is missing")
	}
}

func TestConvertRejectsUnknownFormat(t *testing.T) {
	opts := DefaultOptions()
	opts.Format = "bmp"
	if _, err := New(opts, nil).Convert("a.P92", "a.CUR"); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestPathDefaults(t *testing.T) {
	if got := CurvePathFor("test_files/ISOPLT.P92"); got != "test_files/ISOPLT.CUR" {
		t.Errorf("CurvePathFor = %q", got)
	}
	if got := CurvePathFor("data/run"); got != "data/run.CUR" {
		t.Errorf("CurvePathFor without extension = %q", got)
	}
	if got := OutputDirFor("test_files/ISOPLT.CUR"); got != "test_files/ISOPLT" {
		t.Errorf("OutputDirFor = %q", got)
	}
	if got := OutputDirFor("curves"); got != "curves_charts" {
		t.Errorf("OutputDirFor without extension = %q", got)
	}
}
