// Package dlog is the console logger of LogProbe. Status lines, errors and
// displayed records all go through one logger so that lines written from
// different goroutines never interleave.
package dlog

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mimecast/logprobe/internal/color"
	"github.com/mimecast/logprobe/internal/errors"
)

// Client is the logger used by the LogProbe client.
var Client = New(Info, os.Stdout)

// Setup replaces the client logger.
func Setup(logLevel string, out io.Writer) error {
	level, err := ParseLevel(logLevel)
	if err != nil {
		return err
	}
	Client = New(level, out)
	return nil
}

// DLog writes leveled log lines to an output.
type DLog struct {
	level  Level
	out    io.Writer
	mutex  sync.Mutex
	paused bool
	held   bytes.Buffer
}

// New returns a logger writing lines up to the level to out.
func New(l Level, out io.Writer) *DLog {
	return &DLog{level: l, out: out}
}

// Error logs an error, painted red.
func (d *DLog) Error(args ...interface{}) {
	d.log(Error, color.FgRed, args)
}

// Warn logs a warning, painted red.
func (d *DLog) Warn(args ...interface{}) {
	d.log(Warn, color.FgRed, args)
}

// Info logs a status line, painted green.
func (d *DLog) Info(args ...interface{}) {
	d.log(Info, color.FgGreen, args)
}

// Verbose logs an unpainted informational line.
func (d *DLog) Verbose(args ...interface{}) {
	if d.level < Verbose {
		return
	}
	d.write(join(args))
}

// Debug logs a debug line.
func (d *DLog) Debug(args ...interface{}) {
	d.logPrefixed(Debug, args)
}

// Trace logs a trace line.
func (d *DLog) Trace(args ...interface{}) {
	d.logPrefixed(Trace, args)
}

// Raw writes a line as is, regardless of the level unless it is None.
func (d *DLog) Raw(line string) {
	if d.level == None {
		return
	}
	d.write(line)
}

// Pause holds back all output until Resume is called.
func (d *DLog) Pause() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.paused = true
}

// Resume writes the output held back since Pause.
func (d *DLog) Resume() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.paused = false
	if d.held.Len() > 0 {
		d.out.Write(d.held.Bytes())
		d.held.Reset()
	}
}

// Direct writes a line bypassing a pause. It is used to print the stats
// which caused the pause.
func (d *DLog) Direct(line string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	fmt.Fprintln(d.out, line)
}

func (d *DLog) log(l Level, fg color.FgColor, args []interface{}) {
	if d.level < l {
		return
	}
	d.write(color.PaintStr(join(args), fg))
}

func (d *DLog) logPrefixed(l Level, args []interface{}) {
	if d.level < l {
		return
	}
	line := strings.ToUpper(l.String()) + "|" + join(args)
	d.write(color.PaintStrWithAttr(line, color.FgWhite, color.AttrDim))
}

func (d *DLog) write(line string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.paused {
		d.held.WriteString(line)
		d.held.WriteByte('\n')
		return
	}
	fmt.Fprintln(d.out, line)
}

func join(args []interface{}) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case error:
			parts[i] = v.Error()
		case string:
			parts[i] = v
		default:
			parts[i] = fmt.Sprintf("%v", v)
		}
	}
	return strings.Join(parts, "|")
}

// ParseLevel parses a log level name.
func ParseLevel(name string) (Level, error) {
	for l := None; l <= All; l++ {
		if strings.EqualFold(name, l.String()) {
			return l, nil
		}
	}
	return None, errors.Wrapf(errors.ErrInvalidArgument, "unknown log level %q", name)
}
