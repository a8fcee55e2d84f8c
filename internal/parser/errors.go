package parser

import (
	"errors"
	"fmt"
)

// ErrCurveStreamExhausted indicates the curve-data file ended before all the
// curve titles a block declared were read.
var ErrCurveStreamExhausted = errors.New("curve data exhausted before all curve titles were read")

// PointParseError is returned for a point line that is not two numbers.
// Header fields are decoded leniently; point lines are not, and this type
// keeps that site distinguishable from other failures.
type PointParseError struct {
	Line int // 1-based line number in the curve-data stream
	Text string
	Err  error
}

func (e *PointParseError) Error() string {
	return fmt.Sprintf("curve data line %d: malformed point %q: %v", e.Line, e.Text, e.Err)
}

func (e *PointParseError) Unwrap() error {
	return e.Err
}

// CurveError ties a curve-reading failure to the curve being read.
type CurveError struct {
	Index int // 0-based curve index within the block
	Title string
	Err   error
}

func (e *CurveError) Error() string {
	if e.Title == "" {
		return fmt.Sprintf("curve %d: %v", e.Index+1, e.Err)
	}
	return fmt.Sprintf("curve %d (%q): %v", e.Index+1, e.Title, e.Err)
}

func (e *CurveError) Unwrap() error {
	return e.Err
}
