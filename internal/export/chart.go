package export

import "github.com/neural-sync/tui/internal/client"

// Point is one sample of the trend chart.
type Point struct {
	Time    string
	Value   int
	Emotion client.Emotion
}

// Series maps newest-first predictions onto the -1/0/1 scale in
// chronological order.
func Series(newestFirst []client.Prediction) []Point {
	out := make([]Point, 0, len(newestFirst))
	for i := len(newestFirst) - 1; i >= 0; i-- {
		p := newestFirst[i]
		out = append(out, Point{Time: p.Time, Value: p.Emotion.Value(), Emotion: p.Emotion})
	}
	return out
}
