package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/kdudkov/mchub/internal/event"
)

var (
	ErrNotUTF8      = errors.New("datagram is not valid utf-8")
	ErrNoPacketType = errors.New("packet_type is missing")
)

// Packet is a MAVLink-style JSON telemetry report. Nil fields were not reported.
type Packet struct {
	PacketType       *string
	Lat              *float64
	Lon              *float64
	Alt              *int32
	BatteryRemaining *int32
	Heading          *float64
	SystemStatus     *string
}

// Decode parses one datagram. Keys match exactly; unknown keys are ignored
// and a repeated known key is an error.
func Decode(b []byte) (*Packet, error) {
	if !utf8.Valid(b) {
		return nil, ErrNotUTF8
	}

	fields, err := decodeObject(b)
	if err != nil {
		return nil, fmt.Errorf("json decode error: %w", err)
	}

	p := new(Packet)

	for key, dst := range p.fields() {
		raw, ok := fields[key]
		if !ok {
			continue
		}

		if err := json.Unmarshal(raw, dst); err != nil {
			return nil, fmt.Errorf("json decode error: field %s: %w", key, err)
		}
	}

	if p.PacketType == nil {
		return nil, ErrNoPacketType
	}

	return p, nil
}

func (p *Packet) fields() map[string]any {
	return map[string]any{
		"packet_type":       &p.PacketType,
		"lat":               &p.Lat,
		"lon":               &p.Lon,
		"alt":               &p.Alt,
		"battery_remaining": &p.BatteryRemaining,
		"heading":           &p.Heading,
		"system_status":     &p.SystemStatus,
	}
}

// decodeObject splits a single JSON object into raw values by key.
func decodeObject(b []byte) (map[string]json.RawMessage, error) {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.ErrUnexpectedEOF
		}

		return nil, err
	}

	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	known := new(Packet).fields()
	res := make(map[string]json.RawMessage)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}

		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}

		if _, ok := known[key]; !ok {
			continue
		}

		if _, ok := res[key]; ok {
			return nil, fmt.Errorf("duplicate field %s", key)
		}

		res[key] = raw
	}

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	if tok, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err != nil {
			return nil, err
		}

		return nil, fmt.Errorf("trailing data %v", tok)
	}

	return res, nil
}

func (p *Packet) Type() string {
	if p == nil || p.PacketType == nil {
		return ""
	}

	return *p.PacketType
}

// Data returns only the reported fields.
func (p *Packet) Data() map[string]any {
	m := make(map[string]any)

	if p.Lat != nil {
		m["lat"] = *p.Lat
	}

	if p.Lon != nil {
		m["lon"] = *p.Lon
	}

	if p.Alt != nil {
		m["alt"] = *p.Alt
	}

	if p.BatteryRemaining != nil {
		m["battery_remaining"] = *p.BatteryRemaining
	}

	if p.Heading != nil {
		m["heading"] = *p.Heading
	}

	if p.SystemStatus != nil {
		m["system_status"] = *p.SystemStatus
	}

	return m
}

func (p *Packet) Event(now time.Time) *event.Event {
	return event.New(now, event.SourceTelemetry, "Position update: "+p.Type(), p.Data())
}
