package bridge

import (
	"fmt"
	"time"
)

// LogSource identifies which of the two UI-facing log streams an entry
// belongs to.
type LogSource int

const (
	// SourceApp is the application log: control command outcomes and
	// bridge-level failures.
	SourceApp LogSource = iota
	// SourceMonitor is the monitor log: command echo, command output, and
	// asynchronous engine log lines.
	SourceMonitor
)

func (s LogSource) String() string {
	switch s {
	case SourceApp:
		return "app"
	case SourceMonitor:
		return "monitor"
	default:
		return fmt.Sprintf("LogSource(%d)", int(s))
	}
}

// LogEntry is one line of a log stream, ordered by arrival.
type LogEntry struct {
	Time   time.Time
	Source LogSource
	Text   string
}
