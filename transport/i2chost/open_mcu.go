//go:build rp2040 || rp2350

package i2chost

// Open is unavailable on microcontrollers; buses come from the machine
// package and are handed to drivers directly.
func Open(c Config) (*Locked, error) { return nil, ErrUnknownType }
