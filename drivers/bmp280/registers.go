package bmp280

const (
	// 7-bit I2C addresses (SDO strapped low / high).
	AddressPrimary   = 0x76
	AddressSecondary = 0x77

	// ChipID is the fixed content of RegChipID.
	ChipID = 0x58

	// ResetCommand triggers a power-on-reset when written to RegReset.
	ResetCommand = 0xB6
)

// Register addresses (datasheet ch. 4.3).
const (
	RegCalib    = 0x88 // dig_T1 .. dig_P9, 24 bytes little-endian
	RegChipID   = 0xD0 // 2 bytes read, first is ChipID
	RegReset    = 0xE0
	RegStatus   = 0xF3
	RegCtrlMeas = 0xF4
	RegConfig   = 0xF5

	RegPressMSB  = 0xF7
	RegPressLSB  = 0xF8
	RegPressXLSB = 0xF9
	RegTempMSB   = 0xFA
	RegTempLSB   = 0xFB
	RegTempXLSB  = 0xFC
)

const (
	calibLen = 24
	dataLen  = 6 // press[3] + temp[3], contiguous for one burst read
)

// Bit fields as (width, shift).
const (
	// STATUS
	statusUpdatingShift  = 0
	statusMeasuringShift = 3

	// CTRL_MEAS
	ctrlModeWidth = 2
	ctrlModeShift = 0
	ctrlOSPWidth  = 3
	ctrlOSPShift  = 2
	ctrlOSTWidth  = 3
	ctrlOSTShift  = 5

	// CONFIG
	cfgSPIWidth     = 1
	cfgSPIShift     = 0
	cfgFilterWidth  = 3
	cfgFilterShift  = 2
	cfgStandbyWidth = 3
	cfgStandbyShift = 5
)

// fieldMask returns the in-register mask of a width/shift field.
func fieldMask(width, shift uint8) byte {
	return byte((1<<width)-1) << shift
}
