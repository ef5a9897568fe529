package session

import (
	"bytes"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/neural-sync/tui/internal/client"
	"github.com/neural-sync/tui/internal/export"
	"pkt.systems/pslog"
)

// fakeSender records commands and pretends the link is Ready when ready
// is set.
type fakeSender struct {
	ready bool
	sent  []string
	tried []string
}

func (f *fakeSender) Send(command string) bool {
	f.tried = append(f.tried, command)
	if !f.ready {
		return false
	}
	f.sent = append(f.sent, command)
	return true
}

var fixedNow = time.Date(2026, 10, 18, 14, 3, 9, 0, time.UTC)

func newTestController(ready bool) (*Controller, *fakeSender) {
	s := &fakeSender{ready: ready}
	log := pslog.NewWithOptions(&bytes.Buffer{}, pslog.Options{Mode: pslog.ModeStructured, NoColor: true, MinLevel: pslog.DebugLevel})
	c := NewController(s, WithClock(func() time.Time { return fixedNow }), WithLogger(log))
	c.Handle(client.LinkEvent{State: client.LinkReady})
	if !ready {
		c.Handle(client.LinkEvent{State: client.LinkConnecting})
	}
	return c, s
}

func prediction(tm string, e client.Emotion) client.Event {
	return client.PredictionEvent{Entry: client.Prediction{Time: tm, Emotion: e}}
}

func TestInitialState(t *testing.T) {
	c := NewController(&fakeSender{})
	if c.State() != Idle || c.Collecting() {
		t.Error("controller should start Idle")
	}
	if c.Link() != client.LinkDisconnected {
		t.Errorf("Link() = %s, want Disconnected", c.Link())
	}
	if c.Mood() != client.MoodUnknown {
		t.Errorf("Mood() = %q, want %q", c.Mood(), client.MoodUnknown)
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestStartResetsLogAndMood(t *testing.T) {
	c, s := newTestController(true)

	c.Start()
	c.Handle(prediction("10:00", client.EmotionPositive))
	c.Handle(client.MoodEvent{Mood: client.MoodPositive})
	c.Stop()

	c.Start()
	if !c.Collecting() {
		t.Fatal("expected Collecting after Start")
	}
	if c.Len() != 0 {
		t.Errorf("Start should clear the log, have %d entries", c.Len())
	}
	if c.Mood() != client.MoodAnalyzing {
		t.Errorf("Mood() = %q, want Analyzing", c.Mood())
	}
	want := []string{"start", "stop", "start"}
	if !reflect.DeepEqual(s.sent, want) {
		t.Errorf("sent = %v, want %v", s.sent, want)
	}
}

func TestStartWhileNotReadyStillCollects(t *testing.T) {
	c, s := newTestController(false)

	c.Start()
	if !c.Collecting() {
		t.Fatal("Start must not be blocked by link state")
	}
	if len(s.sent) != 0 {
		t.Errorf("command should have been dropped, sent = %v", s.sent)
	}
	if !reflect.DeepEqual(s.tried, []string{"start"}) {
		t.Errorf("tried = %v, want [start]", s.tried)
	}
}

func TestStartWhileCollectingIsNoop(t *testing.T) {
	c, s := newTestController(true)
	c.Start()
	c.Handle(prediction("10:00", client.EmotionNeutral))
	c.Start()
	if c.Len() != 1 {
		t.Errorf("second Start cleared the log")
	}
	if len(s.sent) != 1 {
		t.Errorf("second Start sent a command: %v", s.sent)
	}
}

func TestScenarioThreePredictions(t *testing.T) {
	c, _ := newTestController(true)
	c.Start()
	c.Handle(prediction("10:00", client.EmotionNeutral))
	c.Handle(prediction("10:01", client.EmotionPositive))
	c.Handle(prediction("10:02", client.EmotionNegative))

	newest := c.Entries()
	if newest[0].Time != "10:02" || newest[2].Time != "10:00" {
		t.Errorf("Entries() not newest-first: %+v", newest)
	}

	art := c.Stop()
	if art == nil {
		t.Fatal("Stop with data should produce an artifact")
	}
	want := "Time,Emotion\n10:00,NEUTRAL\n10:01,POSITIVE\n10:02,NEGATIVE"
	if got := string(art.Data); got != want {
		t.Errorf("CSV = %q, want %q", got, want)
	}
	if art.Filename != "eeg_session_2026-10-18T14-03-09.csv" {
		t.Errorf("Filename = %q", art.Filename)
	}
	if art.Rows != 3 {
		t.Errorf("Rows = %d, want 3", art.Rows)
	}
	if c.Mood() != client.MoodUnknown {
		t.Errorf("Mood after Stop = %q, want ---", c.Mood())
	}
}

func TestArrivalOrderPreserved(t *testing.T) {
	c, _ := newTestController(true)
	c.Start()

	// Labels deliberately repeat and go backwards.
	labels := []string{"10:05", "10:01", "10:05", "09:59", "10:05"}
	emotions := []client.Emotion{client.EmotionPositive, client.EmotionNegative, client.EmotionNeutral, client.EmotionNeutral, client.EmotionNegative}
	for i := range labels {
		c.Handle(prediction(labels[i], emotions[i]))
	}

	newest := c.Entries()
	if len(newest) != len(labels) {
		t.Fatalf("len = %d, want %d", len(newest), len(labels))
	}
	for i := range labels {
		got := newest[len(labels)-1-i]
		if got.Time != labels[i] || got.Emotion != emotions[i] {
			t.Errorf("entry %d = %+v, want {%s %s}", i, got, labels[i], emotions[i])
		}
	}

	series := export.Series(newest)
	for i := range labels {
		if series[i].Time != labels[i] || series[i].Emotion != emotions[i] {
			t.Errorf("series[%d] = %+v, want arrival order", i, series[i])
		}
	}
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	c, s := newTestController(true)
	if art := c.Stop(); art != nil {
		t.Error("Stop while Idle produced an artifact")
	}
	if len(s.tried) != 0 {
		t.Errorf("Stop while Idle sent %v", s.tried)
	}

	c.Start()
	c.Handle(prediction("10:00", client.EmotionNeutral))
	if c.Stop() == nil {
		t.Fatal("expected artifact")
	}
	if art := c.Stop(); art != nil {
		t.Error("second Stop regenerated the CSV")
	}
	if !reflect.DeepEqual(s.sent, []string{"start", "stop"}) {
		t.Errorf("sent = %v", s.sent)
	}
}

func TestStopWithoutDataHasNoArtifact(t *testing.T) {
	c, s := newTestController(true)
	c.Start()
	if art := c.Stop(); art != nil {
		t.Errorf("empty session produced artifact %+v", art)
	}
	if c.Collecting() {
		t.Error("still Collecting after Stop")
	}
	if !reflect.DeepEqual(s.sent, []string{"start", "stop"}) {
		t.Errorf("sent = %v", s.sent)
	}
}

func TestDisconnectForcesStopWithExport(t *testing.T) {
	c, s := newTestController(true)
	c.Start()
	c.Handle(client.MoodEvent{Mood: client.MoodNegative})
	c.Handle(prediction("10:00", client.EmotionNeutral))
	c.Handle(prediction("10:01", client.EmotionNegative))

	art := c.Handle(client.LinkEvent{State: client.LinkDisconnected, Err: errors.New("EOF")})
	if c.Collecting() {
		t.Error("disconnect should force Idle")
	}
	if art == nil {
		t.Fatal("disconnect with data should still export")
	}
	lines := strings.Split(string(art.Data), "\n")
	if len(lines) != c.Len()+1 {
		t.Errorf("CSV has %d lines, want %d", len(lines), c.Len()+1)
	}
	if !reflect.DeepEqual(s.sent, []string{"start"}) {
		t.Errorf("forced stop must not send a command, sent = %v", s.sent)
	}
	if c.Mood() != client.MoodUnknown {
		t.Errorf("Mood = %q, want ---", c.Mood())
	}
	if c.Status() != "Disconnected" {
		t.Errorf("Status = %q, want Disconnected", c.Status())
	}
}

func TestDisconnectWhileIdle(t *testing.T) {
	c, _ := newTestController(true)
	c.Handle(client.MoodEvent{Mood: client.MoodPositive})
	if art := c.Handle(client.LinkEvent{State: client.LinkDisconnected}); art != nil {
		t.Error("disconnect while Idle produced an artifact")
	}
	if c.Mood() != client.MoodUnknown {
		t.Errorf("Mood = %q, want --- after disconnect", c.Mood())
	}
}

func TestLogFrozenAfterStop(t *testing.T) {
	c, _ := newTestController(true)
	c.Start()
	c.Handle(prediction("10:00", client.EmotionNeutral))
	c.Stop()

	c.Handle(prediction("10:01", client.EmotionPositive))
	if c.Len() != 1 {
		t.Errorf("log grew while Idle: %d entries", c.Len())
	}
}

func TestMoodWhileIdleDoesNotStartSession(t *testing.T) {
	c, s := newTestController(true)
	c.Handle(client.MoodEvent{Mood: client.MoodPositive})
	if c.Mood() != client.MoodPositive {
		t.Errorf("Mood = %q, want POSITIVE", c.Mood())
	}
	if c.Collecting() {
		t.Error("mood frame must not start a session")
	}
	if len(s.tried) != 0 {
		t.Errorf("unexpected commands %v", s.tried)
	}
}

func TestStatusAndLinkEvents(t *testing.T) {
	c, _ := newTestController(true)
	if c.Status() != "Ready" {
		t.Errorf("Status = %q, want Ready", c.Status())
	}
	c.Start()
	c.Handle(client.StatusEvent{Value: "Headset synced"})
	if c.Status() != "Headset synced" {
		t.Errorf("Status = %q", c.Status())
	}
	if !c.Collecting() || c.Link() != client.LinkReady {
		t.Error("status frame must not change session or link state")
	}

	c.Handle(client.LinkEvent{State: client.LinkConnecting})
	if c.Status() != "Connecting" || c.Link() != client.LinkConnecting {
		t.Errorf("link = %s status = %q", c.Link(), c.Status())
	}
}

func TestIgnoredEventChangesNothing(t *testing.T) {
	c, _ := newTestController(true)
	c.Start()
	c.Handle(prediction("10:00", client.EmotionNeutral))
	before := c.Entries()
	c.Handle(client.IgnoredEvent{Type: "battery"})
	if !reflect.DeepEqual(before, c.Entries()) || c.Mood() != client.MoodAnalyzing || c.Link() != client.LinkReady {
		t.Error("ignored event changed controller state")
	}
}

func TestEntriesIsACopy(t *testing.T) {
	c, _ := newTestController(true)
	c.Start()
	c.Handle(prediction("10:00", client.EmotionNeutral))
	got := c.Entries()
	got[0].Time = "tampered"
	if c.Entries()[0].Time != "10:00" {
		t.Error("Entries exposed internal storage")
	}
}
