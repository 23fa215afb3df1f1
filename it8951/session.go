// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package it8951

import (
	"bytes"
	"fmt"
	"image"
)

// DeviceInfo is the panel description returned by the controller at Init.
type DeviceInfo struct {
	Width  int
	Height int
	// MemoryAddress is the base of the image buffer in controller memory.
	MemoryAddress   uint32
	FirmwareVersion string
	LUTVersion      string
}

// Bounds returns the panel rectangle.
func (i *DeviceInfo) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.Width, i.Height)
}

// A2Mode returns the waveform mode implementing A2 on this panel. Panels
// shipped with the M641 LUT number it 4 instead of 6.
func (i *DeviceInfo) A2Mode() WaveformMode {
	if i.LUTVersion == "M641" {
		return 4
	}
	return ModeA2
}

func (i *DeviceInfo) String() string {
	return fmt.Sprintf("%dx%d @0x%08X FW:%q LUT:%q", i.Width, i.Height, i.MemoryAddress, i.FirmwareVersion, i.LUTVersion)
}

// parseDeviceInfo decodes the GET_DEV_INFO response. The version strings are
// stored low byte first in each word and NUL terminated.
func parseDeviceInfo(w []uint16) DeviceInfo {
	if len(w) < devInfoWords {
		return DeviceInfo{}
	}
	return DeviceInfo{
		Width:           int(w[0]),
		Height:          int(w[1]),
		MemoryAddress:   uint32(w[2]) | uint32(w[3])<<16,
		FirmwareVersion: wordString(w[4:12]),
		LUTVersion:      wordString(w[12:20]),
	}
}

func wordString(w []uint16) string {
	b := make([]byte, 0, 2*len(w))
	for _, v := range w {
		b = append(b, byte(v), byte(v>>8))
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(bytes.TrimSpace(b))
}

func systemRun(ctrl controller) {
	ctrl.writeCommand(sysRun)
}

func getDeviceInfo(ctrl controller) DeviceInfo {
	ctrl.writeCommand(getDevInfo)
	return parseDeviceInfo(ctrl.readMultiData(devInfoWords))
}

// initSession brings the controller from reset to ready: run, query the
// panel, enable packed writes and reconcile VCOM. VCOM is only written when
// it differs from the stored value. It stops after the query when the panel
// reports no pixels.
func initSession(ctrl controller, vcom uint16) DeviceInfo {
	systemRun(ctrl)
	info := getDeviceInfo(ctrl)
	if info.Width == 0 || info.Height == 0 {
		return info
	}
	writeRegister(ctrl, i80cpcr, 1)
	if getVCOM(ctrl) != vcom {
		setVCOM(ctrl, vcom)
	}
	return info
}
