package convert

import "fmt"

// OpenError reports an input file that could not be opened. Role is
// "header" or "curve".
type OpenError struct {
	Role string
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("could not open %s file %s: %v", e.Role, e.Path, e.Err)
}

func (e *OpenError) Unwrap() error {
	return e.Err
}

// BlockError reports a failure while producing one chart block.
type BlockError struct {
	Index      int // 1-based block number
	Title      string
	HeaderLine int // header line that completed the block
	Err        error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d %q (header line %d): %v", e.Index, e.Title, e.HeaderLine, e.Err)
}

func (e *BlockError) Unwrap() error {
	return e.Err
}
