package bmp280

// Floating-point compensation, datasheet ch. 8.1. The integer variant of the
// same chapter is not implemented.

// Raw holds one pair of 20-bit ADC counts taken from a single burst read.
type Raw struct {
	Pressure    uint32
	Temperature uint32
}

// decodeRaw combines MSB/LSB/XLSB triplets: (msb<<12)|(lsb<<4)|(xlsb>>4).
func decodeRaw(b []byte) Raw {
	return Raw{
		Pressure:    uint32(b[0])<<12 | uint32(b[1])<<4 | uint32(b[2])>>4,
		Temperature: uint32(b[3])<<12 | uint32(b[4])<<4 | uint32(b[5])>>4,
	}
}

// fineTemperature returns t_fine, shared by both compensation steps.
func (c *Calibration) fineTemperature(adcT uint32) float64 {
	t := float64(adcT)
	t1 := float64(c.T1)
	var1 := (t/16384.0 - t1/1024.0) * float64(c.T2)
	x := t/131072.0 - t1/8192.0
	var2 := x * x * float64(c.T3)
	return var1 + var2
}

// celsius converts t_fine to °C.
func celsius(tFine float64) float64 {
	return tFine / 5120.0
}

// pascal returns compensated pressure in Pa. A zero denominator yields 0.
func (c *Calibration) pascal(adcP uint32, tFine float64) float64 {
	var1 := tFine/2.0 - 64000.0
	var2 := var1 * var1 * float64(c.P6) / 32768.0
	var2 += var1 * float64(c.P5) * 2.0
	var2 = var2/4.0 + float64(c.P4)*65536.0
	var1 = (float64(c.P3)*var1*var1/524288.0 + float64(c.P2)*var1) / 524288.0
	var1 = (1.0 + var1/32768.0) * float64(c.P1)
	if var1 == 0 {
		return 0
	}
	p := 1048576.0 - float64(adcP)
	p = (p - var2/4096.0) * 6250.0 / var1
	var1 = float64(c.P9) * p * p / 2147483648.0
	var2 = p * float64(c.P8) / 32768.0
	return p + (var1+var2+float64(c.P7))/16.0
}

// Compensate converts raw counts to physical units. Temperature is always
// computed first since pressure depends on t_fine.
func (c *Calibration) Compensate(raw Raw) Measurement {
	tFine := c.fineTemperature(raw.Temperature)
	return Measurement{
		Temperature: celsius(tFine),
		Pressure:    c.pascal(raw.Pressure, tFine),
	}
}
