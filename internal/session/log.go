// Package session holds the prediction log of a collection session and the
// controller that decides when it may change.
package session

import "github.com/neural-sync/tui/internal/client"

// Log is the ordered prediction record of one session, newest first.
// Entries keep the exact order the bridge delivered them in; timestamps
// are labels and are never used for sorting or deduplication.
type Log struct {
	entries []client.Prediction
	frozen  bool
}

// NewLog returns an empty, writable log.
func NewLog() *Log {
	return &Log{}
}

// Add records p as the newest entry. It reports false and leaves the log
// untouched when the log is frozen.
func (l *Log) Add(p client.Prediction) bool {
	if l.frozen {
		return false
	}
	l.entries = append(l.entries, p)
	return true
}

// Reset empties the log and makes it writable again.
func (l *Log) Reset() {
	l.entries = nil
	l.frozen = false
}

// Freeze makes the log read-only until the next Reset.
func (l *Log) Freeze() {
	l.frozen = true
}

// Frozen reports whether the log is read-only.
func (l *Log) Frozen() bool {
	return l.frozen
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// Newest returns a copy of the entries, newest first.
func (l *Log) Newest() []client.Prediction {
	out := make([]client.Prediction, len(l.entries))
	for i, p := range l.entries {
		out[len(l.entries)-1-i] = p
	}
	return out
}

// Chronological returns a copy of the entries in arrival order.
func (l *Log) Chronological() []client.Prediction {
	out := make([]client.Prediction, len(l.entries))
	copy(out, l.entries)
	return out
}
