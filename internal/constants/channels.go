package constants

// Channel buffer size constants
const (
	// ChunkChannelSize is how many raw reads the socket pump may queue ahead
	// of the decoder.
	ChunkChannelSize = 64
)
