package constants

// Buffer size constants in bytes
const (
	// DefaultReceiveBufferSize is the default size of the socket receive buffer.
	DefaultReceiveBufferSize = 1024

	// MinReceiveBufferSize is the smallest accepted receive buffer size.
	MinReceiveBufferSize = 1

	// MaxPendingBytes caps an unterminated record carried over between drain
	// cycles (1MB). A larger remainder is flushed as a record of its own.
	MaxPendingBytes = 1024 * 1024

	// FragmentInitialCapacity is the initial capacity of a drain cycle fragment.
	FragmentInitialCapacity = 4096
)
