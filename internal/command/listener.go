package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/net/netutil"

	"github.com/kdudkov/mchub/internal/event"
)

const DefaultBufferSize = 1024

var ack = []byte("ACK\n")

type ListenerConfig struct {
	Logger     *slog.Logger
	Addr       string
	BufferSize int
	// MaxConns limits simultaneously served connections, 0 means no limit.
	MaxConns  int
	Publisher event.Publisher
	Now       func() time.Time
}

// Listener accepts command connections and publishes one event per command line.
type Listener struct {
	logger   *slog.Logger
	addr     string
	bufSize  int
	maxConns int
	pub      event.Publisher
	now      func() time.Time

	mx       sync.Mutex
	listener net.Listener
	conns    sync.Map
	wg       sync.WaitGroup
}

func NewListener(cfg *ListenerConfig) *Listener {
	l := &Listener{
		logger:   cfg.Logger,
		addr:     cfg.Addr,
		bufSize:  cfg.BufferSize,
		maxConns: cfg.MaxConns,
		pub:      cfg.Publisher,
		now:      cfg.Now,
	}

	if l.logger == nil {
		l.logger = slog.Default()
	}

	l.logger = l.logger.With("logger", "command")

	if l.bufSize <= 0 {
		l.bufSize = DefaultBufferSize
	}

	if l.now == nil {
		l.now = time.Now
	}

	return l
}

func (l *Listener) Bind() error {
	listener, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("command listener %s: %w", l.addr, err)
	}

	if l.maxConns > 0 {
		l.logger.Info(fmt.Sprintf("connections are limited to %d", l.maxConns))
		listener = netutil.LimitListener(listener, l.maxConns)
	}

	l.mx.Lock()
	l.listener = listener
	l.mx.Unlock()

	l.logger.Info("listening TCP at " + listener.Addr().String())

	return nil
}

func (l *Listener) Addr() net.Addr {
	l.mx.Lock()
	defer l.mx.Unlock()

	if l.listener == nil {
		return nil
	}

	return l.listener.Addr()
}

func (l *Listener) Listen(ctx context.Context) error {
	if err := l.Bind(); err != nil {
		return err
	}

	return l.Serve(ctx)
}

// Serve accepts connections until ctx is done. Open connections are closed on return.
func (l *Listener) Serve(ctx context.Context) error {
	l.mx.Lock()
	listener := l.listener
	l.mx.Unlock()

	if listener == nil {
		return errors.New("command listener is not bound")
	}

	stop := context.AfterFunc(ctx, func() {
		_ = listener.Close()
	})
	defer stop()

	for ctx.Err() == nil {
		conn, err := listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				break
			}

			l.logger.Error("accept error", slog.Any("error", err))

			continue
		}

		l.logger.Info("TCP connection from " + conn.RemoteAddr().String())
		l.conns.Store(conn, struct{}{})
		connectionsMetric.Inc()
		l.wg.Add(1)

		go l.handle(conn)
	}

	l.conns.Range(func(key, _ any) bool {
		_ = key.(net.Conn).Close()

		return true
	})

	l.wg.Wait()
	l.logger.Info("command listener stopped")

	return nil
}

func (l *Listener) handle(conn net.Conn) {
	addr := conn.RemoteAddr().String()
	logger := l.logger.With(slog.String("addr", addr))

	defer func() {
		_ = conn.Close()
		l.conns.Delete(conn)
		connectionsMetric.Dec()
		l.wg.Done()
		logger.Info("connection handler finished")
	}()

	buf := make([]byte, l.bufSize)

	for {
		n, err := conn.Read(buf)

		if n > 0 {
			l.process(logger, buf[:n], addr)

			if _, werr := conn.Write(ack); werr != nil {
				logger.Error("failed to send ACK", slog.Any("error", werr))

				return
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				logger.Info("connection closed by client")
			} else {
				logger.Error("read error", slog.Any("error", err))
			}

			return
		}
	}
}

func (l *Listener) process(logger *slog.Logger, dat []byte, addr string) {
	if !utf8.Valid(dat) {
		dropMetric.WithLabelValues("utf8").Inc()
		logger.Warn("failed to decode utf-8", slog.Int("bytes", len(dat)))

		return
	}

	for _, cmd := range ParseLines(string(dat)) {
		logger.Debug("processing command", slog.String("command", cmd))
		linesMetric.Inc()

		if !l.pub.Publish(NewEvent(l.now(), cmd, addr)) {
			dropMetric.WithLabelValues("publish").Inc()
		}
	}
}
