// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package it8951

import "fmt"

// command is a 16 bit IT8951 command code.
type command uint16

// Commands
const (
	sysRun    command = 0x0001
	standby   command = 0x0002
	sleepMode command = 0x0003
	regRead   command = 0x0010
	regWrite  command = 0x0011

	loadImage     command = 0x0020
	loadImageArea command = 0x0021
	loadImageEnd  command = 0x0022

	// I80 user defined commands.
	displayAreaCmd    command = 0x0034
	displayBufAreaCmd command = 0x0037
	vcomCmd           command = 0x0039
	getDevInfo        command = 0x0302
)

func (c command) String() string {
	switch c {
	case sysRun:
		return "SYS_RUN"
	case standby:
		return "STANDBY"
	case sleepMode:
		return "SLEEP"
	case regRead:
		return "REG_RD"
	case regWrite:
		return "REG_WR"
	case loadImage:
		return "LD_IMG"
	case loadImageArea:
		return "LD_IMG_AREA"
	case loadImageEnd:
		return "LD_IMG_END"
	case displayAreaCmd:
		return "DPY_AREA"
	case displayBufAreaCmd:
		return "DPY_BUF_AREA"
	case vcomCmd:
		return "VCOM"
	case getDevInfo:
		return "GET_DEV_INFO"
	}
	return fmt.Sprintf("0x%04x", uint16(c))
}

// Preambles prefix every bus transaction.
const (
	preambleCommand uint16 = 0x6000
	preambleWrite   uint16 = 0x0000
	preambleRead    uint16 = 0x1000
)

// register is a 16 bit IT8951 register address.
type register uint16

// Registers
const (
	// I80 command packed mode control.
	i80cpcr register = 0x0004
	// Driving capability, undocumented; see EnhanceDrivingCapability.
	drivingCapability register = 0x0038
	// Load image start address, low half; the high half is at +2.
	lisar register = 0x0208
	// Update parameter 1 setting; bit 2 of the high half (+2) selects 1bpp
	// display mode.
	up1sr register = 0x1138
	// LUT engines status, non-zero while a refresh is running.
	lutafsr register = 0x1224
	// Bitmap (1bpp) color table: foreground<<8 | background.
	bgvr register = 0x1250
)

const up1sr1bppMode = 1 << 2

// vcomCmd sub-commands.
const (
	vcomGet uint16 = 0
	vcomSet uint16 = 1
)

// devInfoWords is the size of the GET_DEV_INFO response.
const devInfoWords = 4 + 8 + 8

// PixelFormat is the pixel format field of a load image transaction.
type PixelFormat uint8

func (f PixelFormat) bitsPerPixel() int {
	switch f {
	case Format2bpp:
		return 2
	case Format4bpp:
		return 4
	case Format8bpp:
		return 8
	}
	return 0
}

// Pixel formats understood by the controller. There is no 1bpp load format,
// 1bpp images are loaded as 8bpp with the horizontal geometry divided by 8.
const (
	Format2bpp PixelFormat = 0
	Format4bpp PixelFormat = 2
	Format8bpp PixelFormat = 3
)

// Endian is the byte order the controller applies to loaded pixel words.
type Endian uint8

// Load image endianness.
const (
	LittleEndian Endian = 0
	BigEndian    Endian = 1
)

// Rotation applied by the controller while loading.
type Rotation uint8

// Rotations
const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// WaveformMode selects one of the update algorithms stored in the panel's
// waveform LUT. The driver passes it through untouched; the actual meaning of
// each value depends on the LUT shipped with the panel.
type WaveformMode uint16

// Waveform modes found on most IT8951 panels.
const (
	// ModeInit clears the panel to white with heavy flashing. Use it after
	// power up or after many A2 refreshes.
	ModeInit WaveformMode = 0
	// ModeDU is a fast, non flashy, monochrome update.
	ModeDU WaveformMode = 1
	// ModeGC16 is a full 16 level grayscale update.
	ModeGC16 WaveformMode = 2
	// ModeGL16 is a 16 level update tuned for text on white.
	ModeGL16 WaveformMode = 3
	// ModeA2 is the fastest, monochrome, update. The actual value is panel
	// specific; see DeviceInfo.A2Mode.
	ModeA2 WaveformMode = 6
)
