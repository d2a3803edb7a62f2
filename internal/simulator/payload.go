package simulator

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
)

const payloadSource = "PAYLOAD_CONTROLLER"

type Payload struct {
	*PayloadEvent
	EventID    string         `json:"event_id"`
	Timestamp  string         `json:"timestamp"`
	Source     string         `json:"source"`
	SystemData map[string]any `json:"system_data"`
}

func NewPayload(e *PayloadEvent, rnd *rand.Rand, now time.Time) *Payload {
	return &Payload{
		PayloadEvent: e,
		EventID:      strings.ToUpper(uuid.NewString()[:8]),
		Timestamp:    now.UTC().Format(time.RFC3339Nano),
		Source:       payloadSource,
		SystemData:   systemData(rnd),
	}
}

func systemData(rnd *rand.Rand) map[string]any {
	return map[string]any{
		"cpu_usage":      rnd.Intn(41) + 20,
		"memory_usage":   rnd.Intn(31) + 40,
		"storage_used":   rnd.Intn(21) + 65,
		"temperature":    math.Round((rnd.Float64()*20+35)*10) / 10,
		"uptime":         rnd.Intn(14400) + 1800,
		"active_sensors": rnd.Intn(3) + 5,
		"data_rate":      math.Round((rnd.Float64()*15+5)*10) / 10,
	}
}

// Send delivers p as one JSON line on a fresh connection and waits for the acknowledgment.
func Send(ctx context.Context, addr string, p *Payload) error {
	dat, err := json.Marshal(p)
	if err != nil {
		return err
	}

	d := net.Dialer{Timeout: time.Second * 3}

	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return err
	}

	defer conn.Close()

	if _, err := conn.Write(append(dat, '\n')); err != nil {
		return err
	}

	_ = conn.SetReadDeadline(time.Now().Add(time.Second * 3))

	reply, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("no ack: %w", err)
	}

	if reply != "ACK\n" {
		return fmt.Errorf("unexpected reply %q", reply)
	}

	return nil
}

type PayloadRunner struct {
	Logger   *slog.Logger
	Addr     string
	Scenario *Scenario
	Rnd      *rand.Rand
	// InitDelay separates init events, MinDelay..MaxDelay the regular ones.
	InitDelay time.Duration
	MinDelay  time.Duration
	MaxDelay  time.Duration
}

func (r *PayloadRunner) Run(ctx context.Context) error {
	for _, name := range r.Scenario.Init {
		if !sleep(ctx, r.InitDelay) {
			return nil
		}

		r.send(ctx, "init", r.Scenario.Find(name))
	}

	r.Logger.Info("payload initialization complete, starting operational events")

	for {
		delay := r.MinDelay
		if r.MaxDelay > r.MinDelay {
			delay += time.Duration(r.Rnd.Int63n(int64(r.MaxDelay - r.MinDelay)))
		}

		if !sleep(ctx, delay) {
			return nil
		}

		r.send(ctx, "event", r.Scenario.Pick(r.Rnd))
	}
}

func (r *PayloadRunner) send(ctx context.Context, kind string, e *PayloadEvent) {
	p := NewPayload(e, r.Rnd, time.Now())

	if err := Send(ctx, r.Addr, p); err != nil {
		r.Logger.Warn("send error", slog.String("event", e.Event), slog.Any("error", err))

		return
	}

	r.Logger.Info(fmt.Sprintf("%s [%s] %s", kind, e.Level, e.Event), slog.String("details", e.Details))
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
