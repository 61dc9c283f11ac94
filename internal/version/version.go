// Package version provides the version information of LogProbe.
package version

import (
	"fmt"

	"github.com/mimecast/logprobe/internal/color"
)

const (
	// Name of LogProbe.
	Name string = "LogProbe"
	// Version of LogProbe.
	Version string = "1.2.0"
	// Additional information for LogProbe
	Additional string = "Happy probing!"
)

// String returns the plain version string.
func String() string {
	return fmt.Sprintf("%s %s %s", Name, Version, Additional)
}

// PaintedString returns the version string painted for the terminal. It
// equals String when colors are disabled.
func PaintedString() string {
	if !color.Enabled() {
		return String()
	}
	name := color.PaintStrWithAttr(Name, color.FgYellow, color.AttrBold)
	version := color.PaintStr(Version, color.FgCyan)
	additional := color.PaintStrWithAttr(Additional, color.FgMagenta, color.AttrUnderline)
	return fmt.Sprintf("%s %s %s", name, version, additional)
}

// Print the version.
func Print() {
	fmt.Println(PaintedString())
}
