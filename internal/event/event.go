package event

import (
	"time"
)

const (
	// TimeFormat is the wall-clock format of Event.Timestamp, always in UTC.
	TimeFormat = "15:04:05"

	// DefaultName is the channel name frontends subscribe to.
	DefaultName = "new-backend-event"
)

type Source string

const (
	SourceTelemetry Source = "DRONE"
	SourceCommand   Source = "PAYLOAD"
)

// Event is the uniform envelope for everything forwarded to the frontend.
type Event struct {
	Timestamp string         `json:"timestamp"`
	Source    Source         `json:"source"`
	Message   string         `json:"message"`
	Data      map[string]any `json:"data"`
}

func New(now time.Time, src Source, msg string, data map[string]any) *Event {
	return &Event{
		Timestamp: now.UTC().Format(TimeFormat),
		Source:    src,
		Message:   msg,
		Data:      data,
	}
}

// Message is what a frontend receives: the channel name and the serialized event.
type Message struct {
	Name    string `json:"type"`
	Payload string `json:"payload"`
}

type Publisher interface {
	Publish(ev *Event) bool
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ev *Event) bool

func (f PublisherFunc) Publish(ev *Event) bool {
	return f(ev)
}
