package render

import (
	"fmt"
	"io"
	"strings"
)

// Printer writes formatted text to an io.Writer and keeps the first write
// error, so traversals can emit output without checking every call.
type Printer struct {
	w   io.Writer
	err error
}

// NewPrinter wraps w.
func NewPrinter(w io.Writer) *Printer {
	if p, ok := w.(*Printer); ok {
		return p
	}
	return &Printer{w: w}
}

// Write implements io.Writer.
func (p *Printer) Write(b []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	n, err := p.w.Write(b)
	p.err = err
	return n, err
}

// Printf writes formatted text.
func (p *Printer) Printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

// Print writes s verbatim.
func (p *Printer) Print(s string) {
	if p.err != nil {
		return
	}
	_, p.err = io.WriteString(p.w, s)
}

// Spaces writes n spaces. Negative counts write nothing.
func (p *Printer) Spaces(n int) {
	if n > 0 {
		p.Print(strings.Repeat(" ", n))
	}
}

// Err returns the first write error.
func (p *Printer) Err() error { return p.err }
