//go:build !rp2040 && !rp2350

package i2chost

import "fmt"

// Open constructs the backend named by c and returns it wrapped in Locked.
func Open(c Config) (*Locked, error) {
	switch c.Type {
	case TypeEmbd, "":
		b, err := NewEmbd(c.ID)
		if err != nil {
			return nil, err
		}
		return NewLocked(b), nil
	case TypePeriph:
		b, err := OpenPeriph(c.Name)
		if err != nil {
			return nil, err
		}
		return NewLocked(b), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, c.Type)
	}
}
