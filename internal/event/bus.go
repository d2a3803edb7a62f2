package event

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/kdudkov/mchub/internal/callbacks"
)

// Bus decouples producers from delivery: Publish only queues,
// a single Run goroutine serializes and fans events out to subscribers.
type Bus struct {
	logger  *slog.Logger
	name    string
	ch      chan *Event
	subs    *callbacks.Callback[*Message]
	history *History
}

type BusConfig struct {
	Logger  *slog.Logger
	Name    string
	Queue   int
	History int
}

func NewBus(cfg *BusConfig) *Bus {
	if cfg == nil {
		cfg = new(BusConfig)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.Name
	if name == "" {
		name = DefaultName
	}

	queue := cfg.Queue
	if queue <= 0 {
		queue = 100
	}

	history := cfg.History
	if history <= 0 {
		history = 100
	}

	return &Bus{
		logger:  logger.With("logger", "bus"),
		name:    name,
		ch:      make(chan *Event, queue),
		subs:    callbacks.New[*Message](),
		history: NewHistory(history),
	}
}

func (b *Bus) Name() string {
	return b.name
}

// Publish queues ev without blocking. False means the event was dropped.
func (b *Bus) Publish(ev *Event) bool {
	if ev == nil {
		return false
	}

	select {
	case b.ch <- ev:
		publishedMetric.WithLabelValues(string(ev.Source)).Inc()

		return true
	default:
		droppedMetric.WithLabelValues("queue_full").Inc()
		b.logger.Warn("event queue is full, drop event", slog.String("source", string(ev.Source)), slog.String("msg", ev.Message))

		return false
	}
}

func (b *Bus) Subscribe(name string, fn func(msg *Message) bool) {
	b.subs.SubscribeNamed(name, fn)
	subscribersMetric.Set(float64(b.subs.Count()))
	b.logger.Info("frontend subscribed", slog.String("name", name))
}

func (b *Bus) Unsubscribe(name string) {
	if b.subs.RemoveCallback(name) {
		b.logger.Info("frontend unsubscribed", slog.String("name", name))
	}

	subscribersMetric.Set(float64(b.subs.Count()))
}

func (b *Bus) Subscribers() int {
	return b.subs.Count()
}

func (b *Bus) History() []*Event {
	return b.history.Snapshot()
}

// Run delivers queued events until ctx is done.
func (b *Bus) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-b.ch:
			b.deliver(ev)
		}
	}
}

func (b *Bus) deliver(ev *Event) {
	dat, err := json.Marshal(ev)
	if err != nil {
		droppedMetric.WithLabelValues("encode").Inc()
		b.logger.Error("event encode error", slog.Any("error", err))

		return
	}

	b.history.Add(ev)

	if n := b.subs.AddMessage(&Message{Name: b.name, Payload: string(dat)}); n == 0 {
		droppedMetric.WithLabelValues("no_frontend").Inc()
		b.logger.Debug("no frontend listening", slog.String("msg", ev.Message))

		return
	}

	b.logger.Debug("event emitted", slog.String("source", string(ev.Source)), slog.String("msg", ev.Message))
	subscribersMetric.Set(float64(b.subs.Count()))
}
