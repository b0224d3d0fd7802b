package queue

import "time"

// ProgressLevel indicates the severity/type of a progress message.
type ProgressLevel int

const (
	LevelInfo ProgressLevel = iota
	LevelVerbose
	LevelWarning
	LevelError
	LevelSuccess
)

func (l ProgressLevel) String() string {
	switch l {
	case LevelVerbose:
		return "verbose"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	case LevelSuccess:
		return "success"
	default:
		return "info"
	}
}

// ProgressEvent is a user-facing notice about the queue.
// JobID is empty for notices that do not concern a single job.
type ProgressEvent struct {
	Message string
	Level   ProgressLevel
	JobID   string
	Time    time.Time
}
