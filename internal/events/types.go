// Package events provides the Pollfish event taxonomy and the emitter the
// native side pushes events through.
package events

import (
	"encoding/json"
	"time"
)

// EventType is the native name of a Pollfish event.
type EventType string

// Event type constants. Values are the names the native SDK emits.
const (
	PollfishClosed           EventType = "onPollfishClosed"
	PollfishOpened           EventType = "onPollfishOpened"
	SurveyNotAvailable       EventType = "onPollfishSurveyNotAvailable"
	UserRejectedSurvey       EventType = "onUserRejectedSurvey"
	UserNotEligible          EventType = "onUserNotEligible"
	SurveyReceived           EventType = "onPollfishSurveyReceived"
	SurveyCompleted          EventType = "onPollfishSurveyCompleted"
	InitFailedWithNullKey    EventType = "onInitFailedWithNullKey"
	InitiatedWithParams      EventType = "onInitiatedWithParams"
	InitiatedWithParamsError EventType = "onInitiatedWithParamsError"
)

var all = [...]EventType{
	PollfishClosed,
	PollfishOpened,
	SurveyNotAvailable,
	UserRejectedSurvey,
	UserNotEligible,
	SurveyReceived,
	SurveyCompleted,
	InitFailedWithNullKey,
	InitiatedWithParams,
	InitiatedWithParamsError,
}

// All returns every known event type in declaration order.
func All() []EventType {
	out := make([]EventType, len(all))
	copy(out, all[:])
	return out
}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	for _, known := range all {
		if t == known {
			return true
		}
	}
	return false
}

func (t EventType) String() string {
	return string(t)
}

// ParseEventType maps a native event name to its EventType.
func ParseEventType(name string) (EventType, bool) {
	t := EventType(name)
	return t, t.Valid()
}

// Event is what listeners receive when the native side fires an event.
// Data is forwarded verbatim from the native payload.
type Event struct {
	Type       EventType       `json:"type"`
	Data       json.RawMessage `json:"data,omitempty"`
	ReceivedAt time.Time       `json:"received_at"`
}

// Listener is a function that handles incoming events.
type Listener func(event Event)
