package protocol

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"

	"github.com/mimecast/logprobe/internal/errors"
)

// Record is one decoded unit of the stream.
type Record struct {
	Tag  int
	Text string
}

// DecodeError is returned for a chunk whose tag can't be parsed. It never
// affects the rest of the stream.
type DecodeError struct {
	Chunk string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("Failed to parse tag for line \"%s\"", e.Chunk)
}

// Unwrap classifies the error as ErrInvalidTag.
func (e *DecodeError) Unwrap() error {
	return errors.ErrInvalidTag
}

// Supported single byte code pages.
var codePages = map[string]encoding.Encoding{
	"cp1252":  charmap.Windows1252,
	"latin1":  charmap.ISO8859_1,
	"iso8859": charmap.ISO8859_1,
}

// DefaultEncoding is the code page used when none is configured.
const DefaultEncoding = "cp1252"

// Decoder turns raw chunks into records using a single byte code page.
type Decoder struct {
	name string
	enc  encoding.Encoding
}

// NewDecoder returns a decoder for the named code page.
func NewDecoder(name string) (*Decoder, error) {
	if name == "" {
		name = DefaultEncoding
	}
	enc, ok := codePages[strings.ToLower(name)]
	if !ok {
		return nil, errors.Wrapf(errors.ErrInvalidConfig, "unsupported encoding %q", name)
	}
	return &Decoder{name: strings.ToLower(name), enc: enc}, nil
}

// String returns the name of the code page.
func (d *Decoder) String() string {
	return d.name
}

// Text decodes raw bytes. Every byte maps to exactly one character.
func (d *Decoder) Text(raw []byte) string {
	text, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		// Single byte code pages map every byte, so this is unreachable in
		// practice. Fall back to a byte per rune.
		runes := make([]rune, len(raw))
		for i, b := range raw {
			runes[i] = rune(b)
		}
		return string(runes)
	}
	return string(text)
}

const tagWhitespace = " \t\n\v\f\r"

// Decode parses one delimited chunk. Chunks not longer than the tag yield
// no record and no error. The tag may carry a sign and surrounding ASCII
// whitespace. A chunk whose tag isn't a decimal integer yields a
// *DecodeError.
func (d *Decoder) Decode(chunk []byte) (Record, bool, error) {
	if len(chunk) <= TagWidth {
		return Record{}, false, nil
	}
	tag, err := strconv.Atoi(strings.Trim(string(chunk[:TagWidth]), tagWhitespace))
	if err != nil {
		return Record{}, false, &DecodeError{Chunk: d.Text(chunk)}
	}
	return Record{Tag: tag, Text: TrimPayload(d.Text(chunk[TagWidth:]))}, true, nil
}
