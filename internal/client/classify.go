package client

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned for frames that are not JSON objects with a
// type field, or whose data does not have the shape the type requires.
var ErrMalformedFrame = errors.New("malformed frame")

// Classify interprets one raw inbound frame. It has no side effects.
// Unknown types yield an IgnoredEvent and a nil error.
func Classify(raw []byte) (Event, error) {
	var msg WSMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}

	switch msg.Type {
	case MsgStatus:
		var s string
		if err := json.Unmarshal(msg.Data, &s); err != nil {
			return nil, fmt.Errorf("%w: status data: %v", ErrMalformedFrame, err)
		}
		return StatusEvent{Value: s}, nil

	case MsgMood:
		var s string
		if err := json.Unmarshal(msg.Data, &s); err != nil {
			return nil, fmt.Errorf("%w: mood data: %v", ErrMalformedFrame, err)
		}
		return MoodEvent{Mood: ParseMood(s)}, nil

	case MsgPredictionList:
		var p struct {
			Time    *string `json:"time"`
			Emotion string  `json:"emotion"`
		}
		if len(msg.Data) == 0 {
			return nil, fmt.Errorf("%w: prediction without data", ErrMalformedFrame)
		}
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			return nil, fmt.Errorf("%w: prediction data: %v", ErrMalformedFrame, err)
		}
		if p.Time == nil {
			return nil, fmt.Errorf("%w: prediction without time", ErrMalformedFrame)
		}
		e, ok := ParseEmotion(p.Emotion)
		if !ok {
			return nil, fmt.Errorf("%w: unknown emotion %q", ErrMalformedFrame, p.Emotion)
		}
		return PredictionEvent{Entry: Prediction{Time: *p.Time, Emotion: e}}, nil
	}

	return IgnoredEvent{Type: msg.Type}, nil
}
