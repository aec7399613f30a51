package envsense

import (
	"fmt"

	"envnode-go/drivers/bmp280"
	"envnode-go/errcode"
	"envnode-go/sampler"
	"envnode-go/transport/i2chost"
)

// MaxSlots is the number of limiter slots (two buses, two addresses each).
const MaxSlots = 4

// Descriptor binds one sensor to a bus, an address and a limiter slot.
type Descriptor struct {
	Name    string `json:"name"`
	Bus     string `json:"bus"`
	Address uint16 `json:"addr"`
	Slot    int    `json:"slot"`
}

// OversamplingSetup holds the semantic oversampling indices (0..5).
type OversamplingSetup struct {
	Pressure    int `json:"pressure"`
	Temperature int `json:"temperature"`
}

// Setup is the start-up configuration in semantic indices. Nil fields leave
// the device's current value untouched.
type Setup struct {
	Power   *int               `json:"power,omitempty"`
	IIR     *int               `json:"iir,omitempty"`
	SPI     *bool              `json:"spi,omitempty"`
	OS      *OversamplingSetup `json:"os,omitempty"`
	Standby *int               `json:"standby,omitempty"`
}

// Settings encodes the semantic indices to hardware codes.
func (s Setup) Settings() (bmp280.Settings, error) {
	var out bmp280.Settings
	out.SPI = s.SPI
	if s.Power != nil {
		m, err := bmp280.PowerMode(*s.Power)
		if err != nil {
			return out, err
		}
		out.Power = &m
	}
	if s.IIR != nil {
		f, err := bmp280.IIRMode(*s.IIR)
		if err != nil {
			return out, err
		}
		out.IIR = &f
	}
	if s.OS != nil {
		p, t, err := bmp280.OversamplingMode(s.OS.Pressure, s.OS.Temperature)
		if err != nil {
			return out, err
		}
		out.Pressure, out.Temperature = &p, &t
	}
	if s.Standby != nil {
		sb, err := bmp280.StandbyTime(*s.Standby)
		if err != nil {
			return out, err
		}
		out.Standby = &sb
	}
	return out, nil
}

// Config is the payload of config/envsense.
type Config struct {
	Buses     map[string]i2chost.Config `json:"buses"`
	Devices   []Descriptor              `json:"devices"`
	LimiterMs int                       `json:"limiter_ms,omitempty"`
	Setup     Setup                     `json:"setup"`
	sampler.Config
	IntervalS float64 `json:"interval_s,omitempty"`
}

// Validate checks the descriptor table and setup without touching hardware.
func (c Config) Validate() error {
	const op = "envsense.config"
	if len(c.Devices) == 0 {
		return &errcode.E{C: errcode.InvalidConfig, Op: op, Msg: "no devices"}
	}
	if len(c.Devices) > MaxSlots {
		return &errcode.E{C: errcode.NoSlots, Op: op, Msg: fmt.Sprintf("%d devices, %d slots", len(c.Devices), MaxSlots)}
	}
	if c.LimiterMs < 0 {
		return &errcode.E{C: errcode.InvalidConfig, Op: op, Msg: "negative limiter_ms"}
	}
	var used [MaxSlots]bool
	names := make(map[string]bool, len(c.Devices))
	chips := make(map[string]bool, len(c.Devices))
	for _, d := range c.Devices {
		chip := fmt.Sprintf("%s/%#x", d.Bus, d.Address)
		switch {
		case d.Name == "":
			return &errcode.E{C: errcode.InvalidConfig, Op: op, Msg: "device without name"}
		case names[d.Name]:
			return &errcode.E{C: errcode.InvalidConfig, Op: op, Msg: "duplicate device " + d.Name}
		case d.Slot < 0 || d.Slot >= MaxSlots:
			return &errcode.E{C: errcode.NoSlots, Op: op, Msg: fmt.Sprintf("%s: slot %d", d.Name, d.Slot)}
		case used[d.Slot]:
			return &errcode.E{C: errcode.SlotInUse, Op: op, Msg: fmt.Sprintf("%s: slot %d", d.Name, d.Slot)}
		case d.Address == 0 || d.Address > 0x7F:
			return &errcode.E{C: errcode.InvalidConfig, Op: op, Msg: fmt.Sprintf("%s: address %#x", d.Name, d.Address)}
		}
		if _, ok := c.Buses[d.Bus]; !ok {
			return &errcode.E{C: errcode.UnknownBus, Op: op, Msg: d.Name + ": bus " + d.Bus}
		}
		// One descriptor per chip; a second one would bypass its limiter.
		if chips[chip] {
			return &errcode.E{C: errcode.InvalidConfig, Op: op, Msg: d.Name + ": duplicate address " + chip}
		}
		chips[chip] = true
		names[d.Name] = true
		used[d.Slot] = true
	}
	if _, err := c.Setup.Settings(); err != nil {
		return errcode.Wrap(errcode.InvalidParams, op, err)
	}
	return nil
}
