package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kdudkov/mchub/internal/event"
)

func TestParseLines(t *testing.T) {
	tests := []struct {
		in  string
		out []string
	}{
		{in: "  move 10  ", out: []string{"move 10"}},
		{in: "METADATA:foo", out: nil},
		{in: "  METADATA:foo\n", out: nil},
		{in: "metadata:foo", out: []string{"metadata:foo"}},
		{in: "a\r\n\r\n b \nMETADATA: x\nc", out: []string{"a", "b", "c"}},
		{in: "\n\n \t\n", out: nil},
		{in: "", out: nil},
		{in: `{"event":"CAMERA_INIT","level":"INFO"}`, out: []string{`{"event":"CAMERA_INIT","level":"INFO"}`}},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.out, ParseLines(tt.in), "input %q", tt.in)
	}
}

func TestNewEvent(t *testing.T) {
	ev := NewEvent(time.Date(2024, 1, 1, 23, 59, 1, 0, time.UTC), "move 10", "127.0.0.1:5555")

	assert.Equal(t, "23:59:01", ev.Timestamp)
	assert.Equal(t, event.SourceCommand, ev.Source)
	assert.Equal(t, "Command: move 10", ev.Message)
	assert.Equal(t, map[string]any{"command": "move 10", "sender": "127.0.0.1:5555"}, ev.Data)
}

func TestSubmit(t *testing.T) {
	assert.Equal(t, "Command 'zoom in' sent successfully", Submit(nil, "zoom in"))
	assert.Equal(t, "Command '' sent successfully", Submit(nil, ""))
}
