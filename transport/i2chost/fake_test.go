//go:build !rp2040 && !rp2350

package i2chost

import (
	"errors"

	"periph.io/x/conn/v3/physic"
)

var errFake = errors.New("fake: nack")

// regMem is a 256-byte register file per address.
type regMem map[byte]*[256]byte

func (m regMem) at(addr byte) *[256]byte {
	if m[addr] == nil {
		m[addr] = new([256]byte)
	}
	return m[addr]
}

// fakeEmbd implements embd.I2CBus.
type fakeEmbd struct {
	mem    regMem
	calls  []string
	closed bool
	err    error
}

func newFakeEmbd() *fakeEmbd { return &fakeEmbd{mem: regMem{}} }

func (f *fakeEmbd) ReadByte(addr byte) (byte, error) {
	f.calls = append(f.calls, "ReadByte")
	return f.mem.at(addr)[0], f.err
}

func (f *fakeEmbd) ReadBytes(addr byte, num int) ([]byte, error) {
	f.calls = append(f.calls, "ReadBytes")
	out := make([]byte, num)
	copy(out, f.mem.at(addr)[:])
	return out, f.err
}

func (f *fakeEmbd) WriteByte(addr, value byte) error {
	f.calls = append(f.calls, "WriteByte")
	return f.err
}

func (f *fakeEmbd) WriteBytes(addr byte, value []byte) error {
	f.calls = append(f.calls, "WriteBytes")
	return f.err
}

func (f *fakeEmbd) ReadFromReg(addr, reg byte, value []byte) error {
	f.calls = append(f.calls, "ReadFromReg")
	if f.err != nil {
		return f.err
	}
	copy(value, f.mem.at(addr)[reg:])
	return nil
}

func (f *fakeEmbd) ReadByteFromReg(addr, reg byte) (byte, error) {
	f.calls = append(f.calls, "ReadByteFromReg")
	return f.mem.at(addr)[reg], f.err
}

func (f *fakeEmbd) ReadWordFromReg(addr, reg byte) (uint16, error) {
	f.calls = append(f.calls, "ReadWordFromReg")
	m := f.mem.at(addr)
	return uint16(m[reg])<<8 | uint16(m[reg+1]), f.err
}

func (f *fakeEmbd) WriteToReg(addr, reg byte, value []byte) error {
	f.calls = append(f.calls, "WriteToReg")
	if f.err != nil {
		return f.err
	}
	copy(f.mem.at(addr)[reg:], value)
	return nil
}

func (f *fakeEmbd) WriteByteToReg(addr, reg, value byte) error {
	f.calls = append(f.calls, "WriteByteToReg")
	f.mem.at(addr)[reg] = value
	return f.err
}

func (f *fakeEmbd) WriteWordToReg(addr, reg byte, value uint16) error {
	f.calls = append(f.calls, "WriteWordToReg")
	return f.err
}

func (f *fakeEmbd) Close() error {
	f.closed = true
	return nil
}

// fakePeriph implements periph's i2c.Bus and io.Closer.
type fakePeriph struct {
	mem    regMem
	txs    int
	closed bool
}

func newFakePeriph() *fakePeriph { return &fakePeriph{mem: regMem{}} }

func (f *fakePeriph) String() string                  { return "fake-i2c" }
func (f *fakePeriph) SetSpeed(physic.Frequency) error { return nil }
func (f *fakePeriph) Close() error                    { f.closed = true; return nil }

func (f *fakePeriph) Tx(addr uint16, w, r []byte) error {
	f.txs++
	if len(w) == 0 {
		return errFake
	}
	m := f.mem.at(byte(addr))
	if len(r) > 0 {
		copy(r, m[w[0]:])
		return nil
	}
	copy(m[w[0]:], w[1:])
	return nil
}

// slowBus detects overlapping transactions.
type slowBus struct {
	inside  int32
	overlap bool
	enter   func()
}

func (s *slowBus) Tx(addr uint16, w, r []byte) error {
	s.inside++
	if s.inside > 1 {
		s.overlap = true
	}
	if s.enter != nil {
		s.enter()
	}
	s.inside--
	return nil
}

func (s *slowBus) ReadRegister(addr uint8, r uint8, buf []byte) error  { return s.Tx(0, nil, nil) }
func (s *slowBus) WriteRegister(addr uint8, r uint8, buf []byte) error { return s.Tx(0, nil, nil) }
