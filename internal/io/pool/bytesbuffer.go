// Package pool recycles the buffers the stream reader hands from the socket
// pump to the read cycles.
package pool

import (
	"bytes"
	"sync"

	"github.com/mimecast/logprobe/internal/constants"
)

// BytesBuffer holds buffers for received chunks.
var BytesBuffer = sync.Pool{
	New: func() interface{} {
		b := bytes.Buffer{}
		b.Grow(constants.DefaultReceiveBufferSize)
		return &b
	},
}

// GetBytesBuffer returns an empty buffer holding a copy of p.
func GetBytesBuffer(p []byte) *bytes.Buffer {
	b := BytesBuffer.Get().(*bytes.Buffer)
	b.Write(p)
	return b
}

// RecycleBytesBuffer recycles the buffer again.
func RecycleBytesBuffer(b *bytes.Buffer) {
	b.Reset()
	BytesBuffer.Put(b)
}
