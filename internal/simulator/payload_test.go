package simulator

import (
	"context"
	"encoding/json"
	"log/slog"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdudkov/mchub/internal/command"
	"github.com/kdudkov/mchub/internal/event"
)

func TestSendPayload(t *testing.T) {
	ch := make(chan *event.Event, 5)

	l := command.NewListener(&command.ListenerConfig{
		Addr: "127.0.0.1:0",
		Publisher: event.PublisherFunc(func(ev *event.Event) bool {
			ch <- ev
			return true
		}),
	})
	require.NoError(t, l.Bind())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = l.Serve(ctx) }()

	e := DefaultScenario().Find("CAMERA_INIT")
	p := NewPayload(e, rand.New(rand.NewSource(1)), time.Now())

	assert.Len(t, p.EventID, 8)
	assert.Equal(t, payloadSource, p.Source)

	require.NoError(t, Send(ctx, l.Addr().String(), p))

	select {
	case ev := <-ch:
		assert.Equal(t, event.SourceCommand, ev.Source)

		m := make(map[string]any)
		require.NoError(t, json.Unmarshal([]byte(ev.Data["command"].(string)), &m))
		assert.Equal(t, "CAMERA_INIT", m["event"])
		assert.Equal(t, "INFO", m["level"])
		assert.Equal(t, payloadSource, m["source"])
		assert.Contains(t, m, "system_data")
	case <-time.After(time.Second * 2):
		t.Fatal("no event")
	}
}

func TestPayloadRunner(t *testing.T) {
	ch := make(chan *event.Event, 50)

	l := command.NewListener(&command.ListenerConfig{
		Addr: "127.0.0.1:0",
		Publisher: event.PublisherFunc(func(ev *event.Event) bool {
			ch <- ev
			return true
		}),
	})
	require.NoError(t, l.Bind())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() { _ = l.Serve(ctx) }()

	s := DefaultScenario()
	r := &PayloadRunner{
		Logger:    slog.Default(),
		Addr:      l.Addr().String(),
		Scenario:  s,
		Rnd:       rand.New(rand.NewSource(3)),
		InitDelay: time.Millisecond,
		MinDelay:  time.Millisecond,
		MaxDelay:  time.Millisecond * 3,
	}

	runCtx, runCancel := context.WithCancel(ctx)
	done := make(chan error)

	go func() { done <- r.Run(runCtx) }()

	for i, name := range append(s.Init, "") {
		select {
		case ev := <-ch:
			m := make(map[string]any)
			require.NoError(t, json.Unmarshal([]byte(ev.Data["command"].(string)), &m))

			if i < len(s.Init) {
				assert.Equal(t, name, m["event"])
			}
		case <-time.After(time.Second * 2):
			t.Fatal("no event")
		}
	}

	runCancel()
	require.NoError(t, <-done)
}

func TestSendNoServer(t *testing.T) {
	p := NewPayload(&PayloadEvent{Event: "X"}, rand.New(rand.NewSource(1)), time.Now())

	require.Error(t, Send(context.Background(), "127.0.0.1:1", p))
}
