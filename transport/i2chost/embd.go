//go:build !rp2040 && !rp2350

package i2chost

import (
	"github.com/kidoman/embd"
)

// Embd drives a bus through github.com/kidoman/embd. The host driver must be
// registered by the binary (import _ "github.com/kidoman/embd/host/all").
type Embd struct {
	bus embd.I2CBus
}

// NewEmbd opens /dev/i2c-<id>.
func NewEmbd(id int) (*Embd, error) {
	if err := embd.InitI2C(); err != nil {
		return nil, err
	}
	return &Embd{bus: embd.NewI2CBus(byte(id))}, nil
}

// FromEmbd wraps an already opened embd bus.
func FromEmbd(b embd.I2CBus) *Embd { return &Embd{bus: b} }

// Tx maps the transaction onto embd's register helpers. Supported shapes:
// register read (len(w) == 1, r != nil), register write (len(w) > 1, r == nil),
// plain write and plain read.
func (e *Embd) Tx(addr uint16, w, r []byte) error {
	if addr > 0x7F {
		return ErrAddress
	}
	a := byte(addr)
	switch {
	case len(w) == 0 && len(r) == 0:
		return nil
	case len(r) == 0 && len(w) == 1:
		return e.bus.WriteByte(a, w[0])
	case len(r) == 0:
		return e.bus.WriteToReg(a, w[0], w[1:])
	case len(w) == 1:
		return e.bus.ReadFromReg(a, w[0], r)
	case len(w) == 0:
		b, err := e.bus.ReadBytes(a, len(r))
		if err != nil {
			return err
		}
		copy(r, b)
		return nil
	default:
		return ErrUnsupportedTx
	}
}

func (e *Embd) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return e.Tx(uint16(addr), []byte{r}, buf)
}

func (e *Embd) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return e.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}

func (e *Embd) Close() error { return e.bus.Close() }
