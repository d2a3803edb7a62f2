package simulator

import (
	_ "embed"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed scenario.yml
var defaultScenario string

type PayloadEvent struct {
	Event     string         `yaml:"event" json:"event"`
	Level     string         `yaml:"level" json:"level"`
	Subsystem string         `yaml:"subsystem" json:"subsystem"`
	Details   string         `yaml:"details" json:"details"`
	Data      map[string]any `yaml:"data" json:"data,omitempty"`
}

type Scenario struct {
	Weights map[string]float64 `yaml:"weights"`
	Init    []string           `yaml:"init"`
	Events  []*PayloadEvent    `yaml:"events"`
}

func DefaultScenario() *Scenario {
	s, err := LoadScenario(strings.NewReader(defaultScenario))
	if err != nil {
		panic(err)
	}

	return s
}

func LoadScenario(r io.Reader) (*Scenario, error) {
	s := new(Scenario)

	if err := yaml.NewDecoder(r).Decode(s); err != nil {
		return nil, fmt.Errorf("scenario decode error: %w", err)
	}

	if len(s.Events) == 0 {
		return nil, errors.New("scenario has no events")
	}

	for _, name := range s.Init {
		if s.Find(name) == nil {
			return nil, fmt.Errorf("unknown init event %s", name)
		}
	}

	return s, nil
}

func (s *Scenario) Find(name string) *PayloadEvent {
	for _, e := range s.Events {
		if e.Event == name {
			return e
		}
	}

	return nil
}

// Pick chooses a level by weight, then an event of that level.
// Levels with no events fall back to any event.
func (s *Scenario) Pick(rnd *rand.Rand) *PayloadEvent {
	total := 0.

	for _, w := range s.Weights {
		total += w
	}

	level := ""

	if total > 0 {
		x := rnd.Float64() * total

		for _, l := range sortedLevels(s.Weights) {
			x -= s.Weights[l]
			if x < 0 {
				level = l

				break
			}
		}
	}

	var candidates []*PayloadEvent

	for _, e := range s.Events {
		if e.Level == level {
			candidates = append(candidates, e)
		}
	}

	if len(candidates) == 0 {
		candidates = s.Events
	}

	return candidates[rnd.Intn(len(candidates))]
}

func sortedLevels(m map[string]float64) []string {
	res := make([]string, 0, len(m))
	for k := range m {
		res = append(res, k)
	}

	slices.Sort(res)

	return res
}
