// Package envsense is the sensing control loop: it waits for its config,
// brings up the configured BMP280 sensors, and publishes one averaged
// measurement report per interval.
package envsense

import (
	"context"
	"fmt"
	"io"
	"time"

	"envnode-go/bus"
	"envnode-go/drivers/bmp280"
	"envnode-go/errcode"
	"envnode-go/sampler"
	"envnode-go/services/config"
	"envnode-go/transport/i2chost"
	"envnode-go/x/timex"

	"tinygo.org/x/drivers"
)

const DefaultInterval = 60 * time.Second

var (
	topicConfig = config.Topic("envsense")
	// TopicMeasurement carries Report payloads.
	TopicMeasurement = bus.T("env", "measurement")
)

// Reading is one sensor's averaged values as reported.
type Reading struct {
	Temperature float64 `json:"Temperature"` // °C
	Pressure    float64 `json:"Pressure"`    // hPa
}

// Report is the published measurement message.
type Report struct {
	Message      string             `json:"message"`
	Time         int64              `json:"time"`
	Measurements map[string]Reading `json:"measurements"`
}

// Opener returns the transport for a named bus config.
type Opener func(i2chost.Config) (drivers.I2C, error)

func openHost(c i2chost.Config) (drivers.I2C, error) { return i2chost.Open(c) }

// Options customise a Service. All fields are optional.
type Options struct {
	Open    Opener      // defaults to i2chost.Open
	Clock   timex.Clock // defaults to timex.System
	Metrics *Metrics
}

type Service struct {
	open    Opener
	clock   timex.Clock
	metrics *Metrics

	cfg     Config
	buses   map[string]drivers.I2C
	devices []*bmp280.Device
	sampler *sampler.Sampler
}

func New(opts Options) *Service {
	if opts.Open == nil {
		opts.Open = openHost
	}
	return &Service{
		open:    opts.Open,
		clock:   timex.Or(opts.Clock),
		metrics: opts.Metrics,
	}
}

// Devices returns the sensors brought up by Setup, in descriptor order.
func (s *Service) Devices() []*bmp280.Device { return s.devices }

// Setup validates cfg, opens each referenced bus once, and constructs,
// self-tests and configures every described sensor. Buses from an earlier
// Setup are closed first; on failure the buses opened so far are closed.
func (s *Service) Setup(cfg Config) (err error) {
	if err := cfg.Validate(); err != nil {
		return err
	}
	settings, _ := cfg.Setup.Settings()

	s.Close()
	s.cfg = cfg
	s.buses = make(map[string]drivers.I2C)
	s.sampler = sampler.New(cfg.Config, s.clock)
	defer func() {
		if err != nil {
			s.Close()
		}
	}()

	for _, d := range cfg.Devices {
		i2c, ok := s.buses[d.Bus]
		if !ok {
			i2c, err = s.open(cfg.Buses[d.Bus])
			if err != nil {
				return errcode.Wrap(errcode.BusError, "envsense.open", fmt.Errorf("bus %s: %w", d.Bus, err))
			}
			s.buses[d.Bus] = i2c
		}
		dev, err := s.setupDevice(i2c, d, settings)
		if err != nil {
			return errcode.Wrap(errcode.MapDriverErr(err), "envsense.setup", fmt.Errorf("%s: %w", d.Name, err))
		}
		s.devices = append(s.devices, dev)
		s.sampler.Register(d.Name, dev)
	}
	return nil
}

// Close closes every bus opened by Setup that supports it and drops the
// sensors. The service must be set up again before Measure.
func (s *Service) Close() {
	for name, b := range s.buses {
		if c, ok := b.(io.Closer); ok {
			if err := c.Close(); err != nil {
				println("Warning: envsense: close bus", name+":", err.Error())
			}
		}
	}
	s.buses = nil
	s.devices = nil
	s.sampler = nil
}

func (s *Service) setupDevice(i2c drivers.I2C, d Descriptor, settings bmp280.Settings) (*bmp280.Device, error) {
	dev, err := bmp280.New(i2c, bmp280.Config{
		Address: d.Address,
		Period:  timex.Ms(s.cfg.LimiterMs),
		Clock:   s.clock,
	})
	if err != nil {
		return nil, err
	}
	if err := dev.SelfTest(); err != nil {
		return nil, err
	}
	if err := dev.Configure(settings); err != nil {
		return nil, err
	}
	return dev, nil
}

// Measure runs one aggregation and returns the report. Pressure is
// converted to hPa.
func (s *Service) Measure() (Report, error) {
	if s.sampler == nil {
		return Report{}, &errcode.E{C: errcode.InvalidConfig, Op: "envsense.measure", Msg: "not set up"}
	}
	avgs, err := s.sampler.Aggregate()
	if err != nil {
		s.metrics.failed(s.sampler.LastCycles())
		return Report{}, errcode.Wrap(errcode.MapDriverErr(err), "envsense.measure", err)
	}
	r := Report{
		Message:      "Measurement",
		Time:         s.clock.Now().Unix(),
		Measurements: make(map[string]Reading, len(avgs)),
	}
	for _, a := range avgs {
		r.Measurements[a.Name] = Reading{Temperature: a.Temperature, Pressure: a.Pressure / 100}
	}
	s.metrics.observe(s.sampler.LastCycles(), r)
	return r, nil
}

func (s *Service) interval() time.Duration {
	if s.cfg.IntervalS <= 0 {
		return DefaultInterval
	}
	return time.Duration(s.cfg.IntervalS * float64(time.Second))
}

// Run blocks until ctx is cancelled or a setup or measurement error occurs.
// The first config/envsense message configures the service; later ones are
// ignored until restart.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) error {
	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)

	var cfg Config
	select {
	case <-ctx.Done():
		return nil
	case msg := <-cfgSub.Channel():
		if err := config.Decode(msg.Payload, &cfg); err != nil {
			return errcode.Wrap(errcode.InvalidConfig, "envsense.config", err)
		}
	}
	if err := s.Setup(cfg); err != nil {
		return err
	}
	defer s.Close()
	println("Info: envsense ready,", s.sampler.Len(), "sensors, policy", cfg.Policy().String())

	tick := time.NewTicker(s.interval())
	defer tick.Stop()
	for {
		r, err := s.Measure()
		if err != nil {
			return err
		}
		conn.Publish(conn.NewMessage(TopicMeasurement, r, false))

		select {
		case <-ctx.Done():
			println("Info: envsense service stopping")
			return nil
		case <-tick.C:
		}
	}
}

// Start runs the service in a goroutine. Run's result is sent on the
// returned channel.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) <-chan error {
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx, conn) }()
	return done
}
