package source

import "fmt"

// LocatedError wraps a lexer or parser failure with the filename/line a
// host supplied, producing spec.md §7's "psh: <filename>:<line>: <message>"
// user-visible format.
type LocatedError struct {
	Filename string
	Line     int
	Err      error
}

func (e *LocatedError) Error() string {
	name := e.Filename
	if name == "" {
		name = "psh"
	}
	return fmt.Sprintf("psh: %s:%d: %s", name, e.Line, e.Err)
}

func (e *LocatedError) Unwrap() error { return e.Err }

// locate wraps err with the processor's filename and the 1-based line
// number the current command buffer started on.
func (p *Processor) locate(err error) error {
	if err == nil {
		return nil
	}
	return &LocatedError{Filename: p.Filename, Line: p.bufferStartLine, Err: err}
}
