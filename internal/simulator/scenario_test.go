package simulator

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultScenario(t *testing.T) {
	s := DefaultScenario()

	assert.Len(t, s.Events, 19)
	assert.Len(t, s.Init, 4)
	assert.InDelta(t, 1., s.Weights["INFO"]+s.Weights["WARN"]+s.Weights["CRITICAL"], 0.0001)

	e := s.Find("THERMAL_SCAN_COMPLETE")
	require.NotNil(t, e)
	assert.Equal(t, "THERMAL", e.Subsystem)
	assert.Equal(t, 2, e.Data["anomalies"])
	assert.Nil(t, s.Find("NOPE"))
}

func TestLoadScenarioErrors(t *testing.T) {
	_, err := LoadScenario(strings.NewReader("events: []\n"))
	require.Error(t, err)

	_, err = LoadScenario(strings.NewReader("init: [X]\nevents:\n  - {event: Y, level: INFO}\n"))
	require.Error(t, err)

	_, err = LoadScenario(strings.NewReader("events: {"))
	require.Error(t, err)
}

func TestPick(t *testing.T) {
	s, err := LoadScenario(strings.NewReader(`
weights: {WARN: 1}
events:
  - {event: A, level: INFO}
  - {event: B, level: WARN}
  - {event: C, level: WARN}
`))
	require.NoError(t, err)

	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 100; i++ {
		assert.Equal(t, "WARN", s.Pick(rnd).Level)
	}

	s.Weights = map[string]float64{"CRITICAL": 1}

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		seen[s.Pick(rnd).Event] = true
	}

	assert.Len(t, seen, 3)
}

func TestPickDistribution(t *testing.T) {
	s := DefaultScenario()
	rnd := rand.New(rand.NewSource(7))

	counts := make(map[string]int)
	for i := 0; i < 10000; i++ {
		counts[s.Pick(rnd).Level]++
	}

	assert.InDelta(t, 7000, counts["INFO"], 300)
	assert.InDelta(t, 2500, counts["WARN"], 300)
	assert.InDelta(t, 500, counts["CRITICAL"], 150)
}
