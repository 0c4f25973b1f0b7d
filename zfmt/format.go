package zfmt

import (
	"fmt"
	"strings"
)

// formatter accumulates tab-indented Go text.  Line breaks are deferred so
// that a close followed by ret lands the closing text at the outer depth.
type formatter struct {
	strings.Builder
	depth   int
	pending bool // a newline is owed before the next write
	bol     bool // the next write starts a line and needs indent
}

// flush writes an owed newline but no indent.
func (f *formatter) flush() {
	if f.pending {
		f.WriteByte('\n')
		f.pending = false
	}
}

func (f *formatter) settle() {
	f.flush()
	if f.bol {
		f.WriteString(strings.Repeat("\t", f.depth))
		f.bol = false
	}
}

// write emits format verbatim when there are no args and runs it through
// fmt.Sprintf otherwise.
func (f *formatter) write(format string, args ...any) {
	f.settle()
	if len(args) == 0 {
		f.WriteString(format)
		return
	}
	fmt.Fprintf(f, format, args...)
}

// open writes its argument, if any, and indents what follows.
func (f *formatter) open(format string, args ...any) {
	if format != "" {
		f.write(format, args...)
	}
	f.depth++
}

func (f *formatter) close() {
	f.depth--
}

func (f *formatter) ret() {
	f.pending = true
	f.bol = true
}

// blank ends the current line and leaves one empty line after it.
func (f *formatter) blank() {
	f.flush()
	if s := f.String(); s != "" && !strings.HasSuffix(s, "\n") {
		f.WriteByte('\n')
	}
	f.pending = true
	f.bol = true
}
