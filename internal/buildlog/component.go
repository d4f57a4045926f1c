package buildlog

import (
	"fmt"
	"time"
)

// Level represents the severity of a log entry.
type Level int

const (
	LevelNone Level = iota
	LevelError
	LevelWarning
	LevelInfo
	LevelDebug
	LevelTrace
)

// String returns the string representation of a level.
func (l Level) String() string {
	switch l {
	case LevelNone:
		return "NONE"
	case LevelError:
		return "ERROR"
	case LevelWarning:
		return "WARNING"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	case LevelTrace:
		return "TRACE"
	default:
		return "UNKNOWN"
	}
}

// Stage names one of the five build pipeline stages a log entry
// originated from (spec.md §2's data-flow line).
type Stage string

const (
	StageLabels   Stage = "Labels"
	StageRegistry Stage = "Registry"
	StageWalk     Stage = "Walk"
	StageLayout   Stage = "Layout"
	StageEmit     Stage = "Emit"
)

// Entry is a single log entry.
type Entry struct {
	Timestamp time.Time
	Stage     Stage
	Level     Level
	Message   string
	Data      map[string]interface{} // optional structured data
}

// Format formats the entry as a single line.
func (e *Entry) Format() string {
	timestamp := e.Timestamp.Format("15:04:05.000")
	return fmt.Sprintf("[%s] [%s] %s: %s", timestamp, e.Stage, e.Level, e.Message)
}
