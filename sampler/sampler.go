// Package sampler drives a set of sensors through repeated read cycles and
// reduces each sensor's batch to one averaged reading.
//
// Two policies select the number of cycles:
//
//	COUNT     exactly Samples cycles
//	DURATION  cycles until PeriodMs has elapsed, at least one
//
// Both are capped at MaxCycles. Samples takes precedence when both are set.
package sampler

import (
	"errors"
	"fmt"
	"time"

	"envnode-go/drivers/bmp280"
	"envnode-go/x/mathx"
	"envnode-go/x/timex"
)

const (
	// MaxCycles bounds the per-call batch regardless of policy.
	MaxCycles = 50
	// DefaultSamples applies when neither Samples nor PeriodMs is set.
	DefaultSamples = 15
)

var ErrNoSensors = errors.New("sampler: no sensors registered")

// Sensor is one device the sampler reads. *bmp280.Device satisfies it.
type Sensor interface {
	Read() (bmp280.Measurement, error)
}

// Policy identifies how the number of cycles is chosen.
type Policy uint8

const (
	PolicyCount Policy = iota
	PolicyDuration
)

func (p Policy) String() string {
	if p == PolicyDuration {
		return "duration"
	}
	return "count"
}

// Config selects the policy. Nil means "not supplied".
type Config struct {
	Samples  *int `json:"samples,omitempty"`
	PeriodMs *int `json:"period_ms,omitempty"`
}

// Count returns a COUNT policy config.
func Count(n int) Config { return Config{Samples: &n} }

// Budget returns a DURATION policy config.
func Budget(ms int) Config { return Config{PeriodMs: &ms} }

// Policy reports the effective policy.
func (c Config) Policy() Policy {
	if c.Samples == nil && c.PeriodMs != nil {
		return PolicyDuration
	}
	return PolicyCount
}

// cycles returns the clamped COUNT target.
func (c Config) cycles() int {
	n := DefaultSamples
	if c.Samples != nil {
		n = *c.Samples
	}
	return mathx.Clamp(n, 1, MaxCycles)
}

func (c Config) budget() time.Duration {
	if c.PeriodMs == nil {
		return 0
	}
	return timex.Ms(*c.PeriodMs)
}

// Average is the per-sensor result of one Aggregate call.
type Average struct {
	Name        string
	Temperature float64 // °C
	Pressure    float64 // Pa
}

// Rows flattens averages to [[temperature, pressure], ...] in input order.
func Rows(avgs []Average) [][2]float64 {
	out := make([][2]float64, len(avgs))
	for i, a := range avgs {
		out[i] = [2]float64{a.Temperature, a.Pressure}
	}
	return out
}

type entry struct {
	name   string
	sensor Sensor
}

// Sampler is not safe for concurrent use; it is driven from one control loop.
type Sampler struct {
	cfg     Config
	clock   timex.Clock
	sensors []entry
	cycles  int
}

// New returns a Sampler with no sensors. A nil clock selects timex.System.
func New(cfg Config, clock timex.Clock) *Sampler {
	return &Sampler{cfg: cfg, clock: timex.Or(clock)}
}

// Register appends a sensor. Results follow registration order.
func (s *Sampler) Register(name string, sn Sensor) {
	s.sensors = append(s.sensors, entry{name: name, sensor: sn})
}

// Len returns the number of registered sensors.
func (s *Sampler) Len() int { return len(s.sensors) }

// Config returns the active configuration.
func (s *Sampler) Config() Config { return s.cfg }

// LastCycles returns the number of cycles completed by the last Aggregate.
func (s *Sampler) LastCycles() int { return s.cycles }

// Aggregate runs the configured cycles and returns one Average per sensor.
// It blocks for the whole run. Any read error fails the call and no partial
// averages are returned.
func (s *Sampler) Aggregate() ([]Average, error) {
	s.cycles = 0
	if len(s.sensors) == 0 {
		return nil, ErrNoSensors
	}

	batch := make([][]bmp280.Measurement, len(s.sensors))
	for i := range batch {
		batch[i] = make([]bmp280.Measurement, 0, MaxCycles)
	}

	cycle := func(n int) error {
		for i, e := range s.sensors {
			m, err := e.sensor.Read()
			if err != nil {
				return fmt.Errorf("sampler: %s cycle %d: %w", e.name, n, err)
			}
			batch[i] = append(batch[i], m)
		}
		return nil
	}

	switch s.cfg.Policy() {
	case PolicyDuration:
		budget := s.cfg.budget()
		start := s.clock.Now()
		for n := 0; n < MaxCycles; n++ {
			if err := cycle(n); err != nil {
				return nil, err
			}
			s.cycles++
			if s.clock.Now().Sub(start) > budget {
				break
			}
		}
	default:
		target := s.cfg.cycles()
		for n := 0; n < target; n++ {
			if err := cycle(n); err != nil {
				return nil, err
			}
			s.cycles++
		}
	}

	out := make([]Average, len(s.sensors))
	for i, e := range s.sensors {
		out[i] = Average{
			Name:        e.name,
			Temperature: mathx.MeanBy(batch[i], func(m bmp280.Measurement) float64 { return m.Temperature }),
			Pressure:    mathx.MeanBy(batch[i], func(m bmp280.Measurement) float64 { return m.Pressure }),
		}
	}
	return out, nil
}
