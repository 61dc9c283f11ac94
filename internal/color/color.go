// Package color paints console output and maintains the terminal window
// title. Colors are only emitted when enabled and the output is a terminal.
package color

import (
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// FgColor is a foreground color.
type FgColor termenv.ANSIColor

// Foreground colors.
const (
	FgBlack   = FgColor(termenv.ANSIBlack)
	FgRed     = FgColor(termenv.ANSIRed)
	FgGreen   = FgColor(termenv.ANSIGreen)
	FgYellow  = FgColor(termenv.ANSIYellow)
	FgBlue    = FgColor(termenv.ANSIBlue)
	FgMagenta = FgColor(termenv.ANSIMagenta)
	FgCyan    = FgColor(termenv.ANSICyan)
	FgWhite   = FgColor(termenv.ANSIWhite)
)

// Attribute is a text attribute.
type Attribute int

// Text attributes.
const (
	AttrNone Attribute = iota
	AttrBold
	AttrDim
	AttrUnderline
)

var (
	mutex    sync.Mutex
	output   = termenv.NewOutput(os.Stdout, termenv.WithProfile(termenv.Ascii))
	terminal bool
	enabled  bool
)

// Setup configures where painted strings go. With enable unset, or when w is
// not a terminal, strings are returned unpainted and the title is not set.
func Setup(w io.Writer, enable bool) {
	mutex.Lock()
	defer mutex.Unlock()

	terminal = IsTerminal(w)
	enabled = enable && terminal
	if enabled {
		output = termenv.NewOutput(w)
		return
	}
	output = termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii))
}

// IsTerminal returns true when w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Enabled returns true when strings are painted.
func Enabled() bool {
	mutex.Lock()
	defer mutex.Unlock()
	return enabled
}

// PaintStr paints a string with a foreground color.
func PaintStr(s string, fg FgColor) string {
	return PaintStrWithAttr(s, fg, AttrNone)
}

// PaintStrWithAttr paints a string with a foreground color and an attribute.
func PaintStrWithAttr(s string, fg FgColor, attr Attribute) string {
	mutex.Lock()
	defer mutex.Unlock()

	if !enabled {
		return s
	}
	style := output.String(s).Foreground(termenv.ANSIColor(fg))
	switch attr {
	case AttrBold:
		style = style.Bold()
	case AttrDim:
		style = style.Faint()
	case AttrUnderline:
		style = style.Underline()
	}
	return style.String()
}

// SetTitle sets the terminal window title. It does nothing unless the
// output is a terminal.
func SetTitle(title string) {
	mutex.Lock()
	defer mutex.Unlock()

	if !terminal {
		return
	}
	output.SetWindowTitle(title)
}
