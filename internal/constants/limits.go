package constants

// Process exit codes
const (
	// ExitOK is returned on a normal shutdown, including runtime I/O errors.
	ExitOK = 0

	// ExitConfigError is returned when the configuration can't be loaded.
	ExitConfigError = 2

	// ExitNoArguments is returned when no endpoint was given.
	ExitNoArguments = 3

	// ExitMissingPort is returned when the endpoint lacks the colon separator.
	ExitMissingPort = 4

	// ExitInvalidAddress is returned when the endpoint address is not IPv4.
	ExitInvalidAddress = 5

	// ExitInvalidPort is returned when the endpoint port is not a valid port.
	ExitInvalidPort = 6

	// ExitConnectFailed is returned when the connection can't be established.
	ExitConnectFailed = 7
)

// Protocol limits
const (
	// TagWidth is the number of leading characters holding the record tag.
	TagWidth = 3
)
