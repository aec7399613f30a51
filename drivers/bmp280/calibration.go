package bmp280

// Calibration holds the factory trimming parameters (datasheet 3.11.2).
// Read once at construction and never written afterwards.
type Calibration struct {
	T1 uint16
	T2 int16
	T3 int16

	P1 uint16
	P2 int16
	P3 int16
	P4 int16
	P5 int16
	P6 int16
	P7 int16
	P8 int16
	P9 int16
}

// parseCalibration decodes the 24-byte block starting at RegCalib.
// Each word is little-endian: LOW then HIGH.
func parseCalibration(b []byte) Calibration {
	u16 := func(i int) uint16 { return uint16(b[i]) | uint16(b[i+1])<<8 }
	s16 := func(i int) int16 { return int16(u16(i)) }
	return Calibration{
		T1: u16(0),
		T2: s16(2),
		T3: s16(4),
		P1: u16(6),
		P2: s16(8),
		P3: s16(10),
		P4: s16(12),
		P5: s16(14),
		P6: s16(16),
		P7: s16(18),
		P8: s16(20),
		P9: s16(22),
	}
}

// Temperature returns T1..T3 widened to int32, in datasheet order.
func (c Calibration) Temperature() [3]int32 {
	return [3]int32{int32(c.T1), int32(c.T2), int32(c.T3)}
}

// Pressure returns P1..P9 widened to int32, in datasheet order.
func (c Calibration) Pressure() [9]int32 {
	return [9]int32{
		int32(c.P1), int32(c.P2), int32(c.P3),
		int32(c.P4), int32(c.P5), int32(c.P6),
		int32(c.P7), int32(c.P8), int32(c.P9),
	}
}
