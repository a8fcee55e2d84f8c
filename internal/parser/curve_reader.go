package parser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var errPointFields = errors.New("expected two whitespace-separated numbers")

// CurveReader is the cursor over a curve-data stream. It is advanced in
// lock-step with the header's RecordMachine, one block per ReadBlock call.
type CurveReader struct {
	sc   *bufio.Scanner
	line int
}

// NewCurveReader wraps r.
func NewCurveReader(r io.Reader) *CurveReader {
	return &CurveReader{sc: NewLineScanner(r)}
}

// MaxLineLength is the longest line either input file may contain.
const MaxLineLength = 1024 * 1024

// NewLineScanner returns a line scanner over r accepting lines up to
// MaxLineLength bytes.
func NewLineScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineLength)
	return sc
}

// Line returns the number of lines consumed so far.
func (r *CurveReader) Line() int { return r.line }

func (r *CurveReader) next() (string, bool, error) {
	if !r.sc.Scan() {
		return "", false, r.sc.Err()
	}
	r.line++
	return strings.TrimRight(r.sc.Text(), "\r"), true, nil
}

// ReadBlock reads settings.NoCurves curves: each a title line followed by
// "x y" lines up to a blank line or the end of the stream. Every point
// widens the autoscaled bounds of settings.
func (r *CurveReader) ReadBlock(settings *PlotSettings) ([]Curve, error) {
	curves := make([]Curve, 0, max(settings.NoCurves, 0))
	for j := 0; j < settings.NoCurves; j++ {
		title, ok, err := r.next()
		if err != nil {
			return nil, &CurveError{Index: j, Err: fmt.Errorf("reading title: %w", err)}
		}
		if !ok {
			return nil, &CurveError{Index: j, Err: ErrCurveStreamExhausted}
		}
		c := Curve{Title: strings.TrimSpace(title)}

		for {
			text, ok, err := r.next()
			if err != nil {
				return nil, &CurveError{Index: j, Title: c.Title, Err: fmt.Errorf("reading points: %w", err)}
			}
			if !ok || strings.TrimSpace(text) == "" {
				break
			}
			p, err := ParsePoint(text)
			if err != nil {
				return nil, &CurveError{Index: j, Title: c.Title, Err: &PointParseError{Line: r.line, Text: text, Err: err}}
			}
			settings.Observe(p.X, p.Y)
			c.Points = append(c.Points, p)
		}
		curves = append(curves, c)
	}
	return curves, nil
}

// ParsePoint decodes an "x y" line. Fields beyond the second are ignored.
// Values past the float64 range decode as ±Inf.
func ParsePoint(text string) (Point, error) {
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return Point{}, errPointFields
	}
	x, err := parseCoord(fields[0])
	if err != nil {
		return Point{}, err
	}
	y, err := parseCoord(fields[1])
	if err != nil {
		return Point{}, err
	}
	return Point{X: x, Y: y}, nil
}

func parseCoord(field string) (float64, error) {
	v, err := strconv.ParseFloat(field, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, err
	}
	return v, nil
}
