// Package i2chost adapts Linux host I2C stacks to the register-addressed
// bus interface used by the drivers in this module.
//
// Two backends are supported: embd (sysfs /dev/i2c-N by number) and periph
// (bus registry, by name or number). Both are wrapped in Locked so that
// concurrent callers never interleave the write and read halves of a
// transaction.
package i2chost

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

var (
	ErrUnsupportedTx = errors.New("i2chost: unsupported transaction shape")
	ErrAddress       = errors.New("i2chost: address out of 7-bit range")
	ErrUnknownType   = errors.New("i2chost: unknown bus type")
)

// Bus is the transaction surface shared by drivers. It is a superset of
// tinygo.org/x/drivers.I2C.
type Bus interface {
	Tx(addr uint16, w, r []byte) error
	ReadRegister(addr uint8, r uint8, buf []byte) error
	WriteRegister(addr uint8, r uint8, buf []byte) error
}

// Config selects and parameterises a backend.
type Config struct {
	Type string `json:"type"`           // "embd" or "periph"
	ID   int    `json:"id,omitempty"`   // embd bus number
	Name string `json:"name,omitempty"` // periph registry name; "" is the first bus
}

func (c Config) String() string {
	if c.Type == TypePeriph {
		return fmt.Sprintf("%s:%q", c.Type, c.Name)
	}
	return fmt.Sprintf("%s:%d", c.Type, c.ID)
}

const (
	TypeEmbd   = "embd"
	TypePeriph = "periph"
)

// ---------------- Locked ----------------

// Locked serialises every transaction on an underlying Bus.
type Locked struct {
	mu  sync.Mutex
	bus Bus
}

func NewLocked(b Bus) *Locked { return &Locked{bus: b} }

func (l *Locked) Tx(addr uint16, w, r []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bus.Tx(addr, w, r)
}

func (l *Locked) ReadRegister(addr uint8, r uint8, buf []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bus.ReadRegister(addr, r, buf)
}

func (l *Locked) WriteRegister(addr uint8, r uint8, buf []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bus.WriteRegister(addr, r, buf)
}

// Close closes the underlying bus if it supports it.
func (l *Locked) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if c, ok := l.bus.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
