package device

// Severity of a driver diagnostic message.
type Severity int

// Severities, most severe first
const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityPerformance
	SeverityInformation
	SeverityDebug
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityPerformance:
		return "performance"
	case SeverityInformation:
		return "information"
	}
	return "debug"
}

// DebugMessage is a diagnostic emitted by the driver.
type DebugMessage struct {
	Severity    Severity
	LayerPrefix string
	Code        int32
	Object      uint64
	Text        string
}

// DebugCallback receives driver diagnostics. It runs synchronously on
// the thread that made the driver call and must not call back into the driver.
type DebugCallback func(DebugMessage)
