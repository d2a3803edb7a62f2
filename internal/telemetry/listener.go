package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/kdudkov/mchub/internal/event"
)

const DefaultBufferSize = 1024

type ListenerConfig struct {
	Logger     *slog.Logger
	Addr       string
	BufferSize int
	Publisher  event.Publisher
	Now        func() time.Time
}

// Listener receives telemetry datagrams and publishes one event per decoded packet.
type Listener struct {
	logger  *slog.Logger
	addr    string
	bufSize int
	pub     event.Publisher
	now     func() time.Time

	mx   sync.Mutex
	conn net.PacketConn
}

func NewListener(cfg *ListenerConfig) *Listener {
	l := &Listener{
		logger:  cfg.Logger,
		addr:    cfg.Addr,
		bufSize: cfg.BufferSize,
		pub:     cfg.Publisher,
		now:     cfg.Now,
	}

	if l.logger == nil {
		l.logger = slog.Default()
	}

	l.logger = l.logger.With("logger", "telemetry")

	if l.bufSize <= 0 {
		l.bufSize = DefaultBufferSize
	}

	if l.now == nil {
		l.now = time.Now
	}

	return l
}

func (l *Listener) Bind() error {
	p, err := net.ListenPacket("udp", l.addr)
	if err != nil {
		return fmt.Errorf("telemetry listener %s: %w", l.addr, err)
	}

	l.mx.Lock()
	l.conn = p
	l.mx.Unlock()

	l.logger.Info("listening UDP at " + p.LocalAddr().String())

	return nil
}

func (l *Listener) Addr() net.Addr {
	l.mx.Lock()
	defer l.mx.Unlock()

	if l.conn == nil {
		return nil
	}

	return l.conn.LocalAddr()
}

func (l *Listener) Listen(ctx context.Context) error {
	if err := l.Bind(); err != nil {
		return err
	}

	return l.Serve(ctx)
}

// Serve reads datagrams until ctx is done or the socket is closed.
func (l *Listener) Serve(ctx context.Context) error {
	l.mx.Lock()
	conn := l.conn
	l.mx.Unlock()

	if conn == nil {
		return errors.New("telemetry listener is not bound")
	}

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	buf := make([]byte, l.bufSize)

	for ctx.Err() == nil {
		n, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}

			l.logger.Error("read error", slog.Any("error", err))

			continue
		}

		l.process(buf[:n], addr)
	}

	l.logger.Info("telemetry listener stopped")

	return nil
}

func (l *Listener) process(dat []byte, addr net.Addr) {
	p, err := Decode(dat)
	if err != nil {
		reason := "json"

		switch {
		case errors.Is(err, ErrNotUTF8):
			reason = "utf8"
		case errors.Is(err, ErrNoPacketType):
			reason = "no_type"
		}

		dropMetric.WithLabelValues(reason).Inc()
		l.logger.Debug("discard datagram", slog.String("from", addrString(addr)), slog.String("reason", reason))

		return
	}

	packetsMetric.Inc()
	l.pub.Publish(p.Event(l.now()))
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}

	return addr.String()
}
