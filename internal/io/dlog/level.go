package dlog

// Level is a log level.
type Level int

// Available log levels, from quiet to chatty.
const (
	None Level = iota
	Fatal
	Error
	Warn
	Info
	Verbose
	Debug
	Trace
	All
)

func (l Level) String() string {
	switch l {
	case None:
		return "none"
	case Fatal:
		return "fatal"
	case Error:
		return "error"
	case Warn:
		return "warn"
	case Info:
		return "info"
	case Verbose:
		return "verbose"
	case Debug:
		return "debug"
	case Trace:
		return "trace"
	case All:
		return "all"
	default:
		return "unknown"
	}
}
