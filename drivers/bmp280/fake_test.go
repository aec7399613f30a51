package bmp280

import (
	"time"
)

// stepClock advances by step on every Now call so that limiter spins end.
type stepClock struct {
	t    time.Time
	step time.Duration
}

func newStepClock(step time.Duration) *stepClock {
	return &stepClock{t: time.Unix(1_700_000_000, 0), step: step}
}

func (c *stepClock) Now() time.Time {
	now := c.t
	c.t = c.t.Add(c.step)
	return now
}

type txRecord struct {
	reg   byte
	read  int // bytes read
	write int // data bytes written (excluding register pointer)
	at    time.Time
}

// fakeI2C is a register-memory BMP280 stand-in that records every Tx.
type fakeI2C struct {
	addr  uint16
	mem   [256]byte
	clock *stepClock
	err   error

	txs    []txRecord
	reads  int
	writes int
	resets int
}

func newFakeI2C(clock *stepClock) *fakeI2C {
	f := &fakeI2C{addr: AddressPrimary, clock: clock}
	f.mem[RegChipID] = ChipID
	f.setCalibration(datasheetCalibration)
	return f
}

func (f *fakeI2C) Tx(addr uint16, w, r []byte) error {
	if f.err != nil {
		return f.err
	}
	if addr != f.addr || len(w) == 0 {
		return errNack
	}
	rec := txRecord{reg: w[0], read: len(r), write: len(w) - 1}
	if f.clock != nil {
		rec.at = f.clock.t
	}
	f.txs = append(f.txs, rec)

	reg := int(w[0])
	if len(r) > 0 {
		f.reads++
		copy(r, f.mem[reg:])
		return nil
	}
	f.writes++
	if w[0] == RegReset {
		if len(w) > 1 && w[1] == ResetCommand {
			f.resets++
		}
		return nil
	}
	copy(f.mem[reg:], w[1:])
	return nil
}

func (f *fakeI2C) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return f.Tx(uint16(addr), []byte{r}, buf)
}

func (f *fakeI2C) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return f.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}

func (f *fakeI2C) setCalibration(c Calibration) {
	words := []uint16{
		c.T1, uint16(c.T2), uint16(c.T3),
		c.P1, uint16(c.P2), uint16(c.P3), uint16(c.P4), uint16(c.P5),
		uint16(c.P6), uint16(c.P7), uint16(c.P8), uint16(c.P9),
	}
	for i, v := range words {
		f.mem[RegCalib+2*i] = byte(v)
		f.mem[RegCalib+2*i+1] = byte(v >> 8)
	}
}

// setRaw stores 20-bit counts in the data block.
func (f *fakeI2C) setRaw(pressure, temperature uint32) {
	enc := func(v uint32, at int) {
		f.mem[at] = byte(v >> 12)
		f.mem[at+1] = byte(v >> 4)
		f.mem[at+2] = byte(v&0x0F) << 4
	}
	enc(pressure, RegPressMSB)
	enc(temperature, RegTempMSB)
}

type nackError struct{}

func (nackError) Error() string { return "i2c: no ack" }

var errNack error = nackError{}

// Datasheet ch. 8.2 worked example.
var datasheetCalibration = Calibration{
	T1: 27504, T2: 26435, T3: -1000,
	P1: 36477, P2: -10685, P3: 3024, P4: 2855, P5: 140,
	P6: -7, P7: 15500, P8: -14600, P9: 6000,
}

const (
	datasheetAdcT = 519888
	datasheetAdcP = 415148
)

func newTestDevice(period time.Duration) (*Device, *fakeI2C, *stepClock) {
	clk := newStepClock(time.Millisecond)
	bus := newFakeI2C(clk)
	d, err := New(bus, Config{Period: period, Clock: clk})
	if err != nil {
		panic(err)
	}
	return d, bus, clk
}
