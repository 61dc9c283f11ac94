// Package protocol defines the wire format spoken by the log servers LogProbe
// connects to. A stream is a concatenation of records, each one being a three
// digit decimal tag followed by the payload and terminated by a single null
// byte. There is no length prefix and no other separator. Text is encoded
// with one byte per character.
package protocol

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mimecast/logprobe/internal/constants"
)

const (
	// MessageDelimiter terminates every record in the stream.
	MessageDelimiter byte = 0

	// TagWidth is the number of leading characters holding the tag.
	TagWidth int = constants.TagWidth
)

// Well-known tags emitted by the game servers.
const (
	TagLog     int = 0
	TagGameLog int = 1
	TagRenLog  int = 2
	TagConsole int = 3
)

var labels = map[int]string{
	TagLog:     "LOG",
	TagGameLog: "GAMELOG",
	TagRenLog:  "RENLOG",
	TagConsole: "CONSOLE",
}

// Split splits a fragment on the message delimiter. Order and empty chunks
// are preserved, so a fragment ending with a delimiter yields a trailing
// empty chunk.
func Split(fragment []byte) [][]byte {
	return bytes.Split(fragment, []byte{MessageDelimiter})
}

// Label returns the display label of a tag. With formatted set the well-known
// tags get their mnemonic and any other tag is shown as CUSTOM(NNN),
// otherwise the label is the zero padded tag.
func Label(tag int, formatted bool) string {
	if !formatted {
		return fmt.Sprintf("%03d", tag)
	}
	if label, ok := labels[tag]; ok {
		return label
	}
	return fmt.Sprintf("CUSTOM(%03d)", tag)
}

// TrimPayload removes leading and trailing line breaks and then the
// remaining surrounding white space.
func TrimPayload(text string) string {
	return strings.TrimSpace(strings.Trim(text, "\r\n"))
}
