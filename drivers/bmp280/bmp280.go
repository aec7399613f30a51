// Package bmp280 provides a driver for the Bosch BMP280 digital pressure and
// temperature sensor on an I2C bus.
//
// Design notes (datasheet references):
//   - Pressure and temperature counts are taken from one 6-byte burst read
//     (0xF7..0xFC) so they always belong to the same conversion.
//   - Compensation uses the floating-point formulas of ch. 8.1.
//   - Every register access is spaced by a per-device Limiter so the sensor
//     is never polled faster than its conversion cycle.
//   - Settings are validated before any I/O; an out-of-range code never
//     reaches the device.
package bmp280

import (
	"errors"
	"time"

	"envnode-go/x/timex"

	"tinygo.org/x/drivers"
)

var ErrNotConnected = errors.New("bmp280: chip id mismatch")

// Channel selects the values returned by Fetch.
type Channel uint8

const (
	Temperature Channel = 1 << iota
	Pressure

	Both = Temperature | Pressure
)

// Measurement is one compensated reading.
type Measurement struct {
	Temperature float64 // °C
	Pressure    float64 // Pa
}

// Config controls non-hardware behaviour. All fields are optional.
type Config struct {
	// Address defaults to AddressPrimary if zero.
	Address uint16
	// Period is the minimum spacing between bus transactions. Default 25 ms.
	Period time.Duration
	// Clock drives the limiter. Defaults to timex.System.
	Clock timex.Clock
}

// Device represents one BMP280 on an I2C bus. The bus is shared and not owned.
type Device struct {
	i2c   drivers.I2C
	addr  uint16
	lim   *Limiter
	calib Calibration

	// Fixed buffers to avoid per-call heap allocations.
	w [2]byte
	r [calibLen]byte
}

// New constructs a Device and reads its calibration block. The bus must
// already be configured.
func New(i2c drivers.I2C, cfg Config) (*Device, error) {
	addr := cfg.Address
	if addr == 0 {
		addr = AddressPrimary
	}
	d := &Device{
		i2c:  i2c,
		addr: addr,
		lim:  NewLimiter(cfg.Period, cfg.Clock),
	}
	if err := d.readBlock(RegCalib, d.r[:calibLen]); err != nil {
		return nil, err
	}
	d.calib = parseCalibration(d.r[:calibLen])
	return d, nil
}

// Introspection.
func (d *Device) Address() uint16          { return d.addr }
func (d *Device) Limiter() *Limiter        { return d.lim }
func (d *Device) Calibration() Calibration { return d.calib }

// ReadRaw performs one burst read of the data block and decodes both counts.
func (d *Device) ReadRaw() (Raw, error) {
	var buf [dataLen]byte
	if err := d.readBlock(RegPressMSB, buf[:]); err != nil {
		return Raw{}, err
	}
	return decodeRaw(buf[:]), nil
}

// Read returns compensated temperature and pressure from a single burst read.
func (d *Device) Read() (Measurement, error) {
	raw, err := d.ReadRaw()
	if err != nil {
		return Measurement{}, err
	}
	return d.calib.Compensate(raw), nil
}

// Fetch returns the requested channels in the fixed order
// [temperature, pressure]. want == 0 returns an empty slice after the read.
func (d *Device) Fetch(want Channel) ([]float64, error) {
	m, err := d.Read()
	if err != nil {
		return nil, err
	}
	out := make([]float64, 0, 2)
	if want&Temperature != 0 {
		out = append(out, m.Temperature)
	}
	if want&Pressure != 0 {
		out = append(out, m.Pressure)
	}
	return out, nil
}

// Reset issues a soft reset. The device needs its start-up time (~2 ms)
// before it answers again; callers must not assume immediate readiness.
func (d *Device) Reset() error {
	return d.writeByte(RegReset, ResetCommand)
}

// ChipID reads the two identification bytes. The first is always ChipID.
func (d *Device) ChipID() ([2]byte, error) {
	var id [2]byte
	err := d.readBlock(RegChipID, id[:])
	return id, err
}

// Connected is the connectivity self-test.
func (d *Device) Connected() bool {
	id, err := d.ChipID()
	return err == nil && id[0] == ChipID
}

// SelfTest is Connected with the cause preserved.
func (d *Device) SelfTest() error {
	id, err := d.ChipID()
	if err != nil {
		return err
	}
	if id[0] != ChipID {
		return ErrNotConnected
	}
	return nil
}

// Status returns the im_update and measuring bits from one register read.
func (d *Device) Status() (updating, measuring bool, err error) {
	v, err := d.readByte(RegStatus)
	if err != nil {
		return false, false, err
	}
	return v&(1<<statusUpdatingShift) != 0, v&(1<<statusMeasuringShift) != 0, nil
}

// ---------------- Mode accessors ----------------

func (d *Device) Power() (Mode, error) {
	v, err := d.readBits(RegCtrlMeas, ctrlModeWidth, ctrlModeShift)
	return Mode(v), err
}

func (d *Device) SetPower(m Mode) error {
	if !m.Valid() {
		return ErrInvalidPower
	}
	return d.writeBits(RegCtrlMeas, byte(m), ctrlModeWidth, ctrlModeShift)
}

func (d *Device) IIR() (Filter, error) {
	v, err := d.readBits(RegConfig, cfgFilterWidth, cfgFilterShift)
	return Filter(v), err
}

func (d *Device) SetIIR(f Filter) error {
	if !f.Valid() {
		return ErrInvalidFilter
	}
	return d.writeBits(RegConfig, byte(f), cfgFilterWidth, cfgFilterShift)
}

// SPI reports the 3-wire SPI enable bit. The SPI transport itself is not
// implemented by this package.
func (d *Device) SPI() (bool, error) {
	v, err := d.readBits(RegConfig, cfgSPIWidth, cfgSPIShift)
	return v != 0, err
}

func (d *Device) SetSPI(on bool) error {
	var v byte
	if on {
		v = 1
	}
	return d.writeBits(RegConfig, v, cfgSPIWidth, cfgSPIShift)
}

// Oversampling returns (pressure, temperature) codes from one register read.
func (d *Device) Oversampling() (pressure, temperature Oversampling, err error) {
	v, err := d.readByte(RegCtrlMeas)
	if err != nil {
		return 0, 0, err
	}
	pressure = Oversampling((v & fieldMask(ctrlOSPWidth, ctrlOSPShift)) >> ctrlOSPShift)
	temperature = Oversampling((v & fieldMask(ctrlOSTWidth, ctrlOSTShift)) >> ctrlOSTShift)
	return pressure, temperature, nil
}

// SetOversampling writes both osrs fields in one read-modify-write.
func (d *Device) SetOversampling(pressure, temperature Oversampling) error {
	if !pressure.Valid() || !temperature.Valid() {
		return ErrInvalidOversampling
	}
	mask := fieldMask(ctrlOSPWidth, ctrlOSPShift) | fieldMask(ctrlOSTWidth, ctrlOSTShift)
	bits := byte(pressure)<<ctrlOSPShift | byte(temperature)<<ctrlOSTShift
	return d.modifyRegister(RegCtrlMeas, mask, bits)
}

func (d *Device) Standby() (Standby, error) {
	v, err := d.readBits(RegConfig, cfgStandbyWidth, cfgStandbyShift)
	return Standby(v), err
}

func (d *Device) SetStandby(s Standby) error {
	if !s.Valid() {
		return ErrInvalidStandby
	}
	return d.writeBits(RegConfig, byte(s), cfgStandbyWidth, cfgStandbyShift)
}

// Settings groups the start-up configuration. Nil fields are left untouched.
type Settings struct {
	SPI         *bool
	Power       *Mode
	IIR         *Filter
	Pressure    *Oversampling
	Temperature *Oversampling
	Standby     *Standby
}

// Validate checks every set field without touching the device.
func (s Settings) Validate() error {
	if s.Power != nil && !s.Power.Valid() {
		return ErrInvalidPower
	}
	if s.IIR != nil && !s.IIR.Valid() {
		return ErrInvalidFilter
	}
	if (s.Pressure == nil) != (s.Temperature == nil) {
		return ErrInvalidOversampling
	}
	if s.Pressure != nil && (!s.Pressure.Valid() || !s.Temperature.Valid()) {
		return ErrInvalidOversampling
	}
	if s.Standby != nil && !s.Standby.Valid() {
		return ErrInvalidStandby
	}
	return nil
}

// Configure validates s as a whole, then applies SPI, IIR, standby,
// oversampling and finally power. CONFIG writes may be ignored in normal
// mode, so the mode is always written last.
func (d *Device) Configure(s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.SPI != nil {
		if err := d.SetSPI(*s.SPI); err != nil {
			return err
		}
	}
	if s.IIR != nil {
		if err := d.SetIIR(*s.IIR); err != nil {
			return err
		}
	}
	if s.Standby != nil {
		if err := d.SetStandby(*s.Standby); err != nil {
			return err
		}
	}
	if s.Pressure != nil {
		if err := d.SetOversampling(*s.Pressure, *s.Temperature); err != nil {
			return err
		}
	}
	if s.Power != nil {
		if err := d.SetPower(*s.Power); err != nil {
			return err
		}
	}
	return nil
}
