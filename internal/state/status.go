package state

import "time"

// MessageTimeout is how long transient status messages stay visible.
const MessageTimeout = 5 * time.Second

type StatusKind int

const (
	StatusInfo StatusKind = iota
	StatusError
)

// StatusMessage is a transient toast with a creation timestamp; it is
// cleared once MessageTimeout elapses, checked once per redraw.
type StatusMessage struct {
	Kind StatusKind
	Text string
	At   time.Time
}

func Info(text string) *StatusMessage {
	return &StatusMessage{Kind: StatusInfo, Text: text, At: time.Now()}
}

func Error(text string) *StatusMessage {
	return &StatusMessage{Kind: StatusError, Text: text, At: time.Now()}
}

// Expired reports whether the message should be dismissed at now.
func (m *StatusMessage) Expired(now time.Time) bool {
	return now.Sub(m.At) > MessageTimeout
}
