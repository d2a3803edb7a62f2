package simulator

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"time"
)

const (
	startLat = 47.6062
	startLon = -122.3321
	startAlt = 120

	minAlt = 80
	maxAlt = 200

	startBattery = 95.
	minBattery   = 20.
)

// Drone produces MAVLink-style JSON telemetry with a random walk position.
type Drone struct {
	rnd *rand.Rand
	lat float64
	lon float64
	alt int

	battery float64
}

func NewDrone(rnd *rand.Rand) *Drone {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	return &Drone{rnd: rnd, lat: startLat, lon: startLon, alt: startAlt, battery: startBattery}
}

func (d *Drone) Heartbeat() map[string]any {
	return map[string]any{
		"packet_type":     "HEARTBEAT",
		"system_status":   "standby",
		"mavlink_version": 2,
	}
}

// Position moves the drone a step (about 20 m max) and reports it.
func (d *Drone) Position() map[string]any {
	d.lat += (d.rnd.Float64() - 0.5) * 0.0002
	d.lon += (d.rnd.Float64() - 0.5) * 0.0002
	d.alt += int(math.Floor((d.rnd.Float64() - 0.5) * 10))
	d.alt = max(minAlt, min(maxAlt, d.alt))

	return map[string]any{
		"packet_type":  "GLOBAL_POSITION_INT",
		"lat":          round6(d.lat),
		"lon":          round6(d.lon),
		"alt":          d.alt,
		"relative_alt": d.alt - 50,
		"heading":      d.rnd.Intn(360),
	}
}

func (d *Drone) Attitude() map[string]any {
	return map[string]any{
		"packet_type": "ATTITUDE",
		"roll":        (d.rnd.Float64() - 0.5) * 0.2,
		"pitch":       (d.rnd.Float64() - 0.5) * 0.2,
		"yaw":         d.rnd.Float64() * math.Pi * 2,
		"rollspeed":   (d.rnd.Float64() - 0.5) * 0.1,
		"pitchspeed":  (d.rnd.Float64() - 0.5) * 0.1,
		"yawspeed":    (d.rnd.Float64() - 0.5) * 0.1,
	}
}

// SysStatus drains the battery a little and reports it. The level never drops below 20%.
func (d *Drone) SysStatus() map[string]any {
	d.battery = max(minBattery, d.battery-d.rnd.Float64()*0.5)

	return map[string]any{
		"packet_type":       "SYS_STATUS",
		"voltage_battery":   int(math.Floor(d.battery * 0.42 * 100)),
		"current_battery":   d.rnd.Intn(500) + 100,
		"battery_remaining": int(math.Floor(d.battery)),
	}
}

type TelemetryIntervals struct {
	Heartbeat time.Duration
	Position  time.Duration
	Attitude  time.Duration
	SysStatus time.Duration
}

var DefaultIntervals = TelemetryIntervals{
	Heartbeat: time.Second * 5,
	Position:  time.Second * 2,
	Attitude:  time.Second,
	SysStatus: time.Second * 10,
}

// RunTelemetry writes one datagram per packet to w until ctx is done.
func (d *Drone) RunTelemetry(ctx context.Context, logger *slog.Logger, w io.Writer, iv TelemetryIntervals) error {
	hb := time.NewTicker(iv.Heartbeat)
	defer hb.Stop()

	pos := time.NewTicker(iv.Position)
	defer pos.Stop()

	att := time.NewTicker(iv.Attitude)
	defer att.Stop()

	sys := time.NewTicker(iv.SysStatus)
	defer sys.Stop()

	for {
		var pkt map[string]any

		select {
		case <-ctx.Done():
			return nil
		case <-hb.C:
			pkt = d.Heartbeat()
		case <-pos.C:
			pkt = d.Position()
		case <-att.C:
			pkt = d.Attitude()
		case <-sys.C:
			pkt = d.SysStatus()
		}

		dat, err := json.Marshal(pkt)
		if err != nil {
			return err
		}

		if _, err := w.Write(dat); err != nil {
			logger.Error("error sending "+pkt["packet_type"].(string), slog.Any("error", err))

			continue
		}

		logger.Debug("sent " + pkt["packet_type"].(string))
	}
}

func round6(f float64) float64 {
	return math.Round(f*1e6) / 1e6
}
