// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package it8951

// LoadImageInfo describes one image load into controller memory.
type LoadImageInfo struct {
	// Source holds the packed pixels, rows contiguous. It is only read for
	// the duration of the load.
	Source        []byte
	Endian        Endian
	Format        PixelFormat
	Rotation      Rotation
	TargetAddress uint32
}

// arg returns the argument word of LD_IMG and LD_IMG_AREA.
func (l *LoadImageInfo) arg() uint16 {
	return uint16(l.Endian)<<8 | uint16(l.Format)<<4 | uint16(l.Rotation)
}

// AreaImageInfo is a load rectangle, in pixels of the load format.
type AreaImageInfo struct {
	X, Y, W, H uint16
}

// setTargetMemoryAddr points the next load at addr. The high half is written
// first.
func setTargetMemoryAddr(ctrl controller, addr uint32) {
	writeRegister(ctrl, lisar+2, uint16(addr>>16))
	writeRegister(ctrl, lisar, uint16(addr))
}

// beginLoad starts a full panel load.
func beginLoad(ctrl controller, l *LoadImageInfo) {
	setTargetMemoryAddr(ctrl, l.TargetAddress)
	writeMultiArg(ctrl, loadImage, l.arg())
}

// beginLoadArea starts a load restricted to a.
func beginLoadArea(ctrl controller, l *LoadImageInfo, a AreaImageInfo) {
	setTargetMemoryAddr(ctrl, l.TargetAddress)
	writeMultiArg(ctrl, loadImageArea, l.arg(), a.X, a.Y, a.W, a.H)
}

func endLoad(ctrl controller) {
	ctrl.writeCommand(loadImageEnd)
}
