package dataset

import "fmt"

// MissingColumnError reports a required column absent from the header.
type MissingColumnError struct {
	Column string
	File   string
}

func (e *MissingColumnError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("missing column %q in %s", e.Column, e.File)
	}
	return fmt.Sprintf("missing column %q", e.Column)
}

// ParseError reports a cell that could not be converted. Row is 1-based and
// does not count the header.
type ParseError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("row %d, column %s: cannot parse %q: %v", e.Row, e.Column, e.Value, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
