//go:build !rp2040 && !rp2350

package i2chost

import (
	"io"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Periph drives a bus through periph.io.
type Periph struct {
	bus i2c.Bus
}

// OpenPeriph initialises the periph host drivers and opens the named bus.
// An empty name selects the first bus found.
func OpenPeriph(name string) (*Periph, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, err
	}
	return &Periph{bus: b}, nil
}

// FromPeriph wraps an already opened periph bus.
func FromPeriph(b i2c.Bus) *Periph { return &Periph{bus: b} }

// Bus exposes the periph bus for periph-native device drivers.
func (p *Periph) Bus() i2c.Bus { return p.bus }

func (p *Periph) Tx(addr uint16, w, r []byte) error {
	return p.bus.Tx(addr, w, r)
}

func (p *Periph) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return p.bus.Tx(uint16(addr), []byte{r}, buf)
}

func (p *Periph) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return p.bus.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}

func (p *Periph) String() string { return p.bus.String() }

func (p *Periph) Close() error {
	if c, ok := p.bus.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
