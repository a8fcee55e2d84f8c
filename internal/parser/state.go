package parser

import "strings"

// ReadingState is the record kind the next header line is expected to be.
type ReadingState int

const (
	Head1 ReadingState = iota
	Head2
	XLabel
	YLabel
	Title1
	Title2
	Line1
	Line2
	Empty
)

var stateNames = [...]string{
	Head1:  "Head1",
	Head2:  "Head2",
	XLabel: "XLabel",
	YLabel: "YLabel",
	Title1: "Title1",
	Title2: "Title2",
	Line1:  "Line1",
	Line2:  "Line2",
	Empty:  "Empty",
}

func (s ReadingState) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "ReadingState(?)"
	}
	return stateNames[s]
}

// nextState is the transition table for non-blank lines. Empty leaves to
// Head2 because the line that ends it is itself decoded as a Head1 record.
var nextState = map[ReadingState]ReadingState{
	Head1:  Head2,
	Head2:  XLabel,
	XLabel: YLabel,
	YLabel: Title1,
	Title1: Title2,
	Title2: Line1,
	Line1:  Line2,
	Line2:  Title1,
	Empty:  Head2,
}

// Options tunes the record machine.
type Options struct {
	// DeclaredBounds makes each block use its Head1 page dimensions as axis
	// bounds instead of autoscaling from the curve data.
	DeclaredBounds bool
}

// RecordMachine walks the header file's fixed record cycle, one line per
// call, and decodes each line into the live PlotSettings. It trusts the
// position in the cycle and never inspects a line to guess its kind; the
// only recovery is a blank line, which resets everything.
type RecordMachine struct {
	opts     Options
	state    ReadingState
	settings PlotSettings
}

// NewRecordMachine returns a machine expecting a Head1 record.
func NewRecordMachine(opts Options) *RecordMachine {
	m := &RecordMachine{opts: opts}
	m.Reset()
	m.state = Head1
	return m
}

// Reset restores default settings and enters the Empty state.
func (m *RecordMachine) Reset() {
	m.settings = DefaultPlotSettings()
	m.state = Empty
}

// State returns the current state.
func (m *RecordMachine) State() ReadingState { return m.state }

// Settings returns the live settings. The pointer stays valid until the next
// blank-line reset replaces its contents.
func (m *RecordMachine) Settings() *PlotSettings { return &m.settings }

// Feed consumes one header line and advances exactly one state. It returns
// true when the line completed a block's settings (the machine entered
// Line2); the caller then reads that block's curves.
func (m *RecordMachine) Feed(line string) bool {
	if strings.TrimSpace(line) == "" {
		m.Reset()
		return false
	}

	s := &m.settings
	switch m.state {
	case Head1, Empty:
		DecodeFixed(line, Head1Fields, s)
	case Head2:
		DecodeFixed(line, Head2Fields, s)
	case XLabel:
		s.XLabel = strings.TrimSpace(line)
	case YLabel:
		s.YLabel = strings.TrimSpace(line)
	case Title1:
		s.Title1 = strings.TrimSpace(line)
	case Title2:
		s.Title2 = strings.TrimSpace(line)
	case Line1:
		s.ResetBounds()
		s.AutoscaleX, s.AutoscaleY = true, true
		if m.opts.DeclaredBounds {
			s.UseDeclaredBounds()
		}
	case Line2:
	}

	m.state = nextState[m.state]
	return m.state == Line2
}
