package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kdudkov/mchub/internal/event"
)

func startListener(t *testing.T) (*Listener, chan *event.Event) {
	t.Helper()

	ch := make(chan *event.Event, 10)

	l := NewListener(&ListenerConfig{
		Addr: "127.0.0.1:0",
		Publisher: event.PublisherFunc(func(ev *event.Event) bool {
			ch <- ev
			return true
		}),
	})

	require.NoError(t, l.Bind())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		_ = l.Serve(ctx)
		close(done)
	}()

	t.Cleanup(func() {
		cancel()
		<-done
	})

	return l, ch
}

func send(t *testing.T, addr net.Addr, dat ...[]byte) {
	t.Helper()

	conn, err := net.Dial("udp", addr.String())
	require.NoError(t, err)

	defer conn.Close()

	for _, d := range dat {
		_, err = conn.Write(d)
		require.NoError(t, err)
	}
}

func TestListener(t *testing.T) {
	l, ch := startListener(t)

	send(t, l.Addr(),
		[]byte("not a json"),
		[]byte{0xc3, 0x28},
		[]byte(`{"lat":10}`),
		[]byte(`{"packet_type":"GLOBAL_POSITION_INT","lat":47.1,"alt":100}`),
	)

	select {
	case ev := <-ch:
		assert.Equal(t, event.SourceTelemetry, ev.Source)
		assert.Equal(t, "Position update: GLOBAL_POSITION_INT", ev.Message)
		assert.Equal(t, map[string]any{"lat": 47.1, "alt": int32(100)}, ev.Data)
	case <-time.After(time.Second * 2):
		t.Fatal("no event")
	}

	select {
	case ev := <-ch:
		t.Fatalf("unexpected event %v", ev)
	case <-time.After(time.Millisecond * 100):
	}
}

func TestListenerStops(t *testing.T) {
	l := NewListener(&ListenerConfig{Addr: "127.0.0.1:0", Publisher: event.PublisherFunc(func(*event.Event) bool { return true })})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)

	go func() {
		done <- l.Listen(ctx)
	}()

	require.Eventually(t, func() bool { return l.Addr() != nil }, time.Second, time.Millisecond*10)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second * 2):
		t.Fatal("listener did not stop")
	}
}

func TestBindError(t *testing.T) {
	buf := new(bytes.Buffer)

	l := NewListener(&ListenerConfig{Addr: "127.0.0.1:-1", Logger: slog.New(slog.NewTextHandler(buf, nil))})

	err := l.Bind()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "127.0.0.1:-1")
	assert.Empty(t, buf.String(), "bind errors are logged by the caller")

	require.Error(t, l.Serve(context.Background()))
}
