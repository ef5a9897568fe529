// Package export derives the trend series and the CSV artifact from a
// session log snapshot and stores artifacts on disk.
package export

import (
	"strings"
	"time"

	"github.com/neural-sync/tui/internal/client"
)

const csvHeader = "Time,Emotion"

// Artifact is a generated export ready to be saved.
type Artifact struct {
	Filename string
	Data     []byte
	Rows     int
}

// CSV renders newest-first predictions as a chronological CSV document:
// a header line and one "time,emotion" line per entry, without a trailing
// newline. Fields are written as-is.
func CSV(newestFirst []client.Prediction) string {
	var b strings.Builder
	b.WriteString(csvHeader)
	b.WriteByte('\n')
	for i := len(newestFirst) - 1; i >= 0; i-- {
		p := newestFirst[i]
		b.WriteString(p.Time)
		b.WriteByte(',')
		b.WriteString(string(p.Emotion))
		if i > 0 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Filename returns the artifact name for an export made at t, e.g.
// eeg_session_2026-10-18T14-03-09.csv.
func Filename(t time.Time) string {
	return "eeg_session_" + t.UTC().Format("2006-01-02T15-04-05") + ".csv"
}

// NewArtifact builds the CSV artifact for the given snapshot.
func NewArtifact(newestFirst []client.Prediction, at time.Time) *Artifact {
	return &Artifact{
		Filename: Filename(at),
		Data:     []byte(CSV(newestFirst)),
		Rows:     len(newestFirst),
	}
}
