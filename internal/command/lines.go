package command

import (
	"strings"
	"time"

	"github.com/kdudkov/mchub/internal/event"
)

const MetadataPrefix = "METADATA:"

// ParseLines returns the trimmed command lines of text, skipping empty and metadata lines.
func ParseLines(text string) []string {
	var res []string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)

		if line == "" || strings.HasPrefix(line, MetadataPrefix) {
			continue
		}

		res = append(res, line)
	}

	return res
}

func NewEvent(now time.Time, cmd, sender string) *event.Event {
	return event.New(now, event.SourceCommand, "Command: "+cmd, map[string]any{
		"command": cmd,
		"sender":  sender,
	})
}
