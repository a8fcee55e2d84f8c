package parser

import (
	"strconv"
	"strings"
)

// FieldKind is the type a fixed-width field decodes to.
type FieldKind int

const (
	KindFloat FieldKind = iota
	KindInt
	KindBool // integer on the wire, non-zero is true
)

// FixedField describes one fixed-width column range of a header record and
// the PlotSettings field it fills. Start and End are byte offsets, End
// exclusive.
type FixedField struct {
	Name  string
	Start int
	End   int
	Kind  FieldKind

	floatDst func(*PlotSettings) *float64
	intDst   func(*PlotSettings) *int
	boolDst  func(*PlotSettings) *bool
}

// Head1Fields is the layout of the dimension record.
var Head1Fields = []FixedField{
	{Name: "xdim_lo", Start: 1, End: 13, Kind: KindFloat, floatDst: func(s *PlotSettings) *float64 { return &s.XDimLo }},
	{Name: "xdim_hi", Start: 13, End: 24, Kind: KindFloat, floatDst: func(s *PlotSettings) *float64 { return &s.XDimHi }},
	{Name: "ydim_lo", Start: 24, End: 35, Kind: KindFloat, floatDst: func(s *PlotSettings) *float64 { return &s.YDimLo }},
	{Name: "ydim_hi", Start: 35, End: 46, Kind: KindFloat, floatDst: func(s *PlotSettings) *float64 { return &s.YDimHi }},
}

// Head2Fields is the layout of the display record.
var Head2Fields = []FixedField{
	{Name: "no_curves", Start: 1, End: 13, Kind: KindInt, intDst: func(s *PlotSettings) *int { return &s.NoCurves }},
	{Name: "no_points", Start: 13, End: 24, Kind: KindInt, intDst: func(s *PlotSettings) *int { return &s.NoPoints }},
	{Name: "add_border", Start: 24, End: 35, Kind: KindBool, boolDst: func(s *PlotSettings) *bool { return &s.AddBorder }},
	{Name: "xy_grid", Start: 35, End: 46, Kind: KindInt, intDst: func(s *PlotSettings) *int { return &s.XYGrid }},
}

// fieldText returns the trimmed text of line[start:end], or false when the
// line does not reach end.
func fieldText(line string, start, end int) (string, bool) {
	if start < 0 || end > len(line) || start >= end {
		return "", false
	}
	return strings.TrimSpace(line[start:end]), true
}

func parseFloat(text string) (float64, bool) {
	v, err := strconv.ParseFloat(text, 64)
	return v, err == nil
}

func parseInt(text string) (int, bool) {
	v, err := strconv.Atoi(text)
	return v, err == nil
}

func parseBool(text string) (bool, bool) {
	if n, err := strconv.Atoi(text); err == nil {
		return n != 0, true
	}
	v, err := strconv.ParseBool(text)
	return v, err == nil
}

// DecodeFixed assigns every field of the layout that can be decoded from
// line. A field that is missing, short or malformed leaves its destination
// untouched. It returns the number of fields assigned.
func DecodeFixed(line string, fields []FixedField, s *PlotSettings) int {
	assigned := 0
	for _, f := range fields {
		text, ok := fieldText(line, f.Start, f.End)
		if !ok || text == "" {
			continue
		}
		switch f.Kind {
		case KindFloat:
			if v, ok := parseFloat(text); ok {
				*f.floatDst(s) = v
				assigned++
			}
		case KindInt:
			if v, ok := parseInt(text); ok {
				*f.intDst(s) = v
				assigned++
			}
		case KindBool:
			if v, ok := parseBool(text); ok {
				*f.boolDst(s) = v
				assigned++
			}
		}
	}
	return assigned
}
