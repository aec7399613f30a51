package bmp280

import "errors"

// ErrInvalidSetting is returned when a mode index or code is outside the
// datasheet range of its field. Nothing is written to the device.
var ErrInvalidSetting = errors.New("bmp280: setting out of range")

// Field-specific validation errors. All wrap ErrInvalidSetting.
var (
	ErrInvalidPower        = settingError("power mode")
	ErrInvalidFilter       = settingError("iir filter")
	ErrInvalidOversampling = settingError("oversampling")
	ErrInvalidStandby      = settingError("standby time")
)

type invalidSetting struct{ field string }

func settingError(field string) error { return &invalidSetting{field: field} }

func (e *invalidSetting) Error() string { return "bmp280: " + e.field + " out of range" }
func (e *invalidSetting) Unwrap() error { return ErrInvalidSetting }

// Mode is the power mode code held in CTRL_MEAS[1:0] (datasheet 3.6).
type Mode byte

const (
	ModeSleep  Mode = 0x00
	ModeForced Mode = 0x01
	ModeNormal Mode = 0x03
)

// Valid reports whether m fits the 2-bit mode field. 0x02 is a second
// forced-mode encoding and is accepted.
func (m Mode) Valid() bool { return m <= 0x03 }

// Filter is the IIR filter coefficient code held in CONFIG[4:2] (datasheet 3.3.3).
type Filter byte

const (
	FilterOff Filter = iota
	Filter2
	Filter4
	Filter8
	Filter16
)

func (f Filter) Valid() bool { return f <= Filter16 }

// Oversampling is the osrs_p / osrs_t code held in CTRL_MEAS (datasheet 3.3.1).
type Oversampling byte

const (
	SamplingSkipped Oversampling = iota
	Sampling1X
	Sampling2X
	Sampling4X
	Sampling8X
	Sampling16X
)

func (o Oversampling) Valid() bool { return o <= Sampling16X }

// Standby is the t_sb code held in CONFIG[7:5] (datasheet 3.6.3).
type Standby byte

const (
	Standby500us Standby = iota
	Standby62ms5
	Standby125ms
	Standby250ms
	Standby500ms
	Standby1s
	Standby2s
	Standby4s
)

func (s Standby) Valid() bool { return s <= Standby4s }

// Semantic index -> hardware code tables.
var (
	powerCodes   = [...]Mode{ModeSleep, ModeForced, ModeNormal}
	filterCodes  = [...]Filter{FilterOff, Filter2, Filter4, Filter8, Filter16}
	samplingCode = [...]Oversampling{SamplingSkipped, Sampling1X, Sampling2X, Sampling4X, Sampling8X, Sampling16X}
	standbyCodes = [...]Standby{Standby500us, Standby62ms5, Standby125ms, Standby250ms, Standby500ms, Standby1s, Standby2s, Standby4s}
)

// PowerMode maps 0 sleep, 1 forced, 2 normal to the mode code.
func PowerMode(idx int) (Mode, error) {
	if idx < 0 || idx >= len(powerCodes) {
		return 0, ErrInvalidPower
	}
	return powerCodes[idx], nil
}

// IIRMode maps 0 off, 1..4 (coefficient 2, 4, 8, 16) to the filter code.
func IIRMode(idx int) (Filter, error) {
	if idx < 0 || idx >= len(filterCodes) {
		return 0, ErrInvalidFilter
	}
	return filterCodes[idx], nil
}

// OversamplingMode maps 0 skip, 1..5 (x1 .. x16) for each channel.
func OversamplingMode(pressure, temperature int) (Oversampling, Oversampling, error) {
	if pressure < 0 || pressure >= len(samplingCode) ||
		temperature < 0 || temperature >= len(samplingCode) {
		return 0, 0, ErrInvalidOversampling
	}
	return samplingCode[pressure], samplingCode[temperature], nil
}

// StandbyTime maps 0..7 (0.5 ms .. 4 s) to the t_sb code.
func StandbyTime(idx int) (Standby, error) {
	if idx < 0 || idx >= len(standbyCodes) {
		return 0, ErrInvalidStandby
	}
	return standbyCodes[idx], nil
}
