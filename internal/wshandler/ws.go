package wshandler

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gofiber/contrib/websocket"

	"github.com/kdudkov/mchub/internal/event"
)

const queueSize = 50

// JSONWsHandler forwards bus messages to one websocket frontend.
type JSONWsHandler struct {
	log    *slog.Logger
	name   string
	ws     *websocket.Conn
	ch     chan *event.Message
	done   chan struct{}
	wg     sync.WaitGroup
	active int32
}

func NewHandler(log *slog.Logger, name string, ws *websocket.Conn) *JSONWsHandler {
	return &JSONWsHandler{
		log:    log.With("client", name),
		name:   name,
		ws:     ws,
		ch:     make(chan *event.Message, queueSize),
		done:   make(chan struct{}),
		active: 1,
	}
}

func (w *JSONWsHandler) Name() string {
	return w.name
}

func (w *JSONWsHandler) IsActive() bool {
	return w != nil && atomic.LoadInt32(&w.active) == 1
}

func (w *JSONWsHandler) stop() {
	if atomic.CompareAndSwapInt32(&w.active, 1, 0) {
		close(w.done)

		if w.ws != nil {
			_ = w.ws.Close()
		}
	}
}

func (w *JSONWsHandler) stopped() bool {
	select {
	case <-w.done:
		return true
	default:
		return false
	}
}

func (w *JSONWsHandler) writer() {
	defer w.stop()

	for {
		select {
		case <-w.done:
			return
		case msg := <-w.ch:
			if msg == nil || w.stopped() {
				continue
			}

			if err := w.ws.WriteJSON(msg); err != nil {
				w.log.Error("error on write", slog.Any("error", err))

				return
			}
		}
	}
}

func (w *JSONWsHandler) reader() {
	defer w.stop()

	for {
		if _, _, err := w.ws.ReadMessage(); err != nil {
			w.log.Debug("error on read", slog.Any("error", err))

			return
		}
	}
}

// SendMessage queues msg without blocking; a full queue drops it.
// False tells the bus to forget this handler.
func (w *JSONWsHandler) SendMessage(msg *event.Message) bool {
	if w == nil || !w.IsActive() {
		return false
	}

	select {
	case w.ch <- msg:
	default:
		w.log.Warn("frontend is too slow, drop message")
	}

	return true
}

func (w *JSONWsHandler) closehandler(code int, text string) error {
	w.log.Info(fmt.Sprintf("closed with code %d, msg %s", code, text))
	w.stop()

	return nil
}

// Listen blocks until the frontend goes away and the writer has finished with the connection.
func (w *JSONWsHandler) Listen() {
	w.log.Debug("ws start")
	w.ws.SetCloseHandler(w.closehandler)

	w.wg.Add(1)

	go func() {
		defer w.wg.Done()
		w.writer()
	}()

	w.reader()
	w.wg.Wait()
	w.log.Debug("ws stop")
}
