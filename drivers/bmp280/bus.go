package bmp280

// Register primitives. Every bus transaction goes through the limiter first.

func (d *Device) readBlock(reg byte, buf []byte) error {
	d.lim.Acquire()
	d.w[0] = reg
	return d.i2c.Tx(d.addr, d.w[:1], buf)
}

func (d *Device) readByte(reg byte) (byte, error) {
	if err := d.readBlock(reg, d.r[:1]); err != nil {
		return 0, err
	}
	return d.r[0], nil
}

// readBits returns (reg >> shift) & (2^width - 1).
func (d *Device) readBits(reg byte, width, shift uint8) (byte, error) {
	v, err := d.readByte(reg)
	if err != nil {
		return 0, err
	}
	return (v & fieldMask(width, shift)) >> shift, nil
}

func (d *Device) writeByte(reg, val byte) error {
	d.lim.Acquire()
	d.w[0] = reg
	d.w[1] = val
	return d.i2c.Tx(d.addr, d.w[:2], nil)
}

// writeBits replaces one field and preserves the other bits of reg.
func (d *Device) writeBits(reg, val byte, width, shift uint8) error {
	m := fieldMask(width, shift)
	return d.modifyRegister(reg, m, (val<<shift)&m)
}

// modifyRegister is the read-modify-write helper: clear mask, OR in bits.
func (d *Device) modifyRegister(reg, mask, bits byte) error {
	cur, err := d.readByte(reg)
	if err != nil {
		return err
	}
	return d.writeByte(reg, (cur&^mask)|(bits&mask))
}
