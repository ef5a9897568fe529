package core

import (
	"fmt"
	"strings"
	"testing"

	"github.com/neural-sync/tui/internal/client"
)

func predictions(n int) []client.Prediction {
	out := make([]client.Prediction, n)
	for i := range out {
		// newest first
		out[i] = client.Prediction{Time: fmt.Sprintf("10:00:%02d", n-i), Emotion: client.EmotionNeutral}
	}
	return out
}

func TestViewEmpty(t *testing.T) {
	m := New()
	m.Width = 100
	v := m.View()
	for _, want := range []string{"Current State", "---", "No data synced.", "neural link idle"} {
		if !strings.Contains(v, want) {
			t.Errorf("view missing %q:\n%s", want, v)
		}
	}
}

func TestSetEntriesKeepsNewestFive(t *testing.T) {
	m := New()
	in := predictions(8)
	m.SetEntries(in)
	if len(m.recent) != RecentRows {
		t.Fatalf("recent = %d rows, want %d", len(m.recent), RecentRows)
	}
	if m.recent[0].Time != "10:00:08" || m.recent[4].Time != "10:00:04" {
		t.Errorf("recent = %+v", m.recent)
	}

	m.Width = 100
	v := m.View()
	if !strings.Contains(v, "10:00:08") || !strings.Contains(v, "10:00:04") {
		t.Errorf("view missing newest rows:\n%s", v)
	}
	if strings.Contains(v, "10:00:03") {
		t.Errorf("view shows more than %d rows:\n%s", RecentRows, v)
	}

	in[0].Time = "mutated"
	if m.recent[0].Time == "mutated" {
		t.Error("SetEntries must copy its input")
	}
}

func TestViewActive(t *testing.T) {
	m := New()
	m.Width = 100
	m.Active = true
	m.SetMood(client.MoodPositive)
	v := m.View()
	if !strings.Contains(v, "scanning...") || !strings.Contains(v, "POSITIVE") {
		t.Errorf("active view:\n%s", v)
	}
}
