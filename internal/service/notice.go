package service

// Level selects how a notice is surfaced. The caller picks it per flow.
type Level int

const (
	// Inline notices show in the status line and need no acknowledgement.
	Inline Level = iota
	// Blocking notices show as an alert that must be dismissed.
	Blocking
)

func (l Level) String() string {
	if l == Blocking {
		return "blocking"
	}
	return "inline"
}

// Notice is a user-facing outcome of an action.
type Notice struct {
	Level   Level
	Message string
	Err     error
}

// Reporter receives notices. Implementations must be safe for concurrent use.
type Reporter interface {
	Report(Notice)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Notice)

func (f ReporterFunc) Report(n Notice) { f(n) }

type discard struct{}

func (discard) Report(Notice) {}
