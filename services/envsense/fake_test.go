package envsense

import (
	"errors"
	"sync"

	"envnode-go/drivers/bmp280"
	"envnode-go/transport/i2chost"

	"tinygo.org/x/drivers"
)

var errNack = errors.New("fake: no ack")

// Datasheet ch. 8.2 worked example: T1..T3, P1..P9.
var calibWords = words(
	27504, 26435, -1000,
	36477, -10685, 3024, 2855, 140, -7, 15500, -14600, 6000,
)

func words(vs ...int) []uint16 {
	out := make([]uint16, len(vs))
	for i, v := range vs {
		out[i] = uint16(v)
	}
	return out
}

const (
	adcT = 519888
	adcP = 415148
)

// fakeBus holds one BMP280 register file per populated address.
type fakeBus struct {
	mu      sync.Mutex
	mem     map[uint16]*[256]byte
	failAt  int // fail the n-th data read (1-based); 0 disables
	dataTxs int
	closes  int
}

func (f *fakeBus) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func newFakeBus(addrs ...uint16) *fakeBus {
	f := &fakeBus{mem: map[uint16]*[256]byte{}}
	for _, a := range addrs {
		m := new([256]byte)
		m[bmp280.RegChipID] = bmp280.ChipID
		for i, w := range calibWords {
			m[bmp280.RegCalib+2*i] = byte(w)
			m[bmp280.RegCalib+2*i+1] = byte(w >> 8)
		}
		put := func(v uint32, at int) {
			m[at] = byte(v >> 12)
			m[at+1] = byte(v >> 4)
			m[at+2] = byte(v&0x0F) << 4
		}
		put(adcP, bmp280.RegPressMSB)
		put(adcT, bmp280.RegTempMSB)
		f.mem[a] = m
	}
	return f
}

func (f *fakeBus) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m := f.mem[addr]
	if m == nil || len(w) == 0 {
		return errNack
	}
	if len(r) > 0 {
		if w[0] == bmp280.RegPressMSB {
			f.dataTxs++
			if f.failAt > 0 && f.dataTxs >= f.failAt {
				return errNack
			}
		}
		copy(r, m[w[0]:])
		return nil
	}
	if w[0] != bmp280.RegReset {
		copy(m[w[0]:], w[1:])
	}
	return nil
}

func (f *fakeBus) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return f.Tx(uint16(addr), []byte{r}, buf)
}

func (f *fakeBus) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return f.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}

// opener hands out fake buses by config name and counts opens.
type opener struct {
	buses map[string]*fakeBus
	opens map[string]int
}

func newOpener(buses map[string]*fakeBus) *opener {
	return &opener{buses: buses, opens: map[string]int{}}
}

func (o *opener) open(c i2chost.Config) (drivers.I2C, error) {
	b, ok := o.buses[c.Name]
	if !ok {
		return nil, errNack
	}
	o.opens[c.Name]++
	return b, nil
}

func ptr[T any](v T) *T { return &v }
