// Package client provides the websocket client for the EEG bridge and the
// wire types of the bridge protocol.
package client

import "encoding/json"

// MessageType identifies the kind of inbound bridge frame.
type MessageType string

const (
	MsgStatus         MessageType = "status"
	MsgMood           MessageType = "mood"
	MsgPredictionList MessageType = "prediction_list"
)

// WSMessage is the envelope for all inbound frames.
type WSMessage struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Outbound commands.
const (
	CommandStart = "start"
	CommandStop  = "stop"
)

// CommandFrame is the only outbound frame shape.
type CommandFrame struct {
	Command string `json:"command"`
}

// LinkState is the client's view of the bridge connection.
type LinkState int

const (
	LinkDisconnected LinkState = iota
	LinkConnecting
	LinkReady
)

func (s LinkState) String() string {
	switch s {
	case LinkConnecting:
		return "Connecting"
	case LinkReady:
		return "Ready"
	default:
		return "Disconnected"
	}
}

// Emotion is a classified prediction label.
type Emotion string

const (
	EmotionNegative Emotion = "NEGATIVE"
	EmotionNeutral  Emotion = "NEUTRAL"
	EmotionPositive Emotion = "POSITIVE"
)

// ParseEmotion accepts only the three canonical labels.
func ParseEmotion(s string) (Emotion, bool) {
	switch e := Emotion(s); e {
	case EmotionNegative, EmotionNeutral, EmotionPositive:
		return e, true
	}
	return "", false
}

// Value maps the emotion onto the chart scale.
func (e Emotion) Value() int {
	switch e {
	case EmotionNegative:
		return -1
	case EmotionPositive:
		return 1
	default:
		return 0
	}
}

// Mood is the current-display projection of the bridge's state.
type Mood string

const (
	MoodNegative  Mood = "NEGATIVE"
	MoodNeutral   Mood = "NEUTRAL"
	MoodPositive  Mood = "POSITIVE"
	MoodAnalyzing Mood = "Analyzing"
	MoodUnknown   Mood = "---"
)

// ParseMood normalises anything outside the enum to MoodUnknown.
func ParseMood(s string) Mood {
	switch m := Mood(s); m {
	case MoodNegative, MoodNeutral, MoodPositive, MoodAnalyzing, MoodUnknown:
		return m
	}
	return MoodUnknown
}

// Prediction is one entry of the session log. The time label is opaque.
type Prediction struct {
	Time    string  `json:"time"`
	Emotion Emotion `json:"emotion"`
}

// --- Events ---

// Event is anything the client hands to the session controller.
type Event interface {
	event()
}

// LinkEvent reports a link state transition. Err is set when the
// transition to Disconnected was caused by a transport failure.
type LinkEvent struct {
	State LinkState
	Err   error
}

// StatusEvent carries a free-form status string from the bridge.
type StatusEvent struct{ Value string }

// MoodEvent carries the bridge's current mood.
type MoodEvent struct{ Mood Mood }

// PredictionEvent carries one new prediction.
type PredictionEvent struct{ Entry Prediction }

// IgnoredEvent is a well-formed frame with an unrecognised type.
type IgnoredEvent struct{ Type MessageType }

func (LinkEvent) event()       {}
func (StatusEvent) event()     {}
func (MoodEvent) event()       {}
func (PredictionEvent) event() {}
func (IgnoredEvent) event()    {}
