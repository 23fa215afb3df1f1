// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package it8951

// displayArea refreshes the area from the default image buffer.
func displayArea(ctrl controller, x, y, w, h uint16, mode WaveformMode) {
	writeMultiArg(ctrl, displayAreaCmd, x, y, w, h, uint16(mode))
}

// displayAreaBuf refreshes the area from the image buffer at addr.
func displayAreaBuf(ctrl controller, x, y, w, h uint16, mode WaveformMode, addr uint32) {
	writeMultiArg(ctrl, displayBufAreaCmd, x, y, w, h, uint16(mode), uint16(addr), uint16(addr>>16))
}

// display1bpp refreshes a 1bpp area, rendering bits with the bg and fg gray
// levels. The 1bpp mode bit is cleared only once the LUT engines are idle.
func display1bpp(ctrl controller, x, y, w, h uint16, mode WaveformMode, addr uint32, bg, fg uint8) {
	writeRegister(ctrl, up1sr+2, readRegister(ctrl, up1sr+2)|up1sr1bppMode)
	writeRegister(ctrl, bgvr, uint16(fg)<<8|uint16(bg))
	if addr == 0 {
		displayArea(ctrl, x, y, w, h, mode)
	} else {
		displayAreaBuf(ctrl, x, y, w, h, mode, addr)
	}
	ctrl.waitForDisplayReady()
	writeRegister(ctrl, up1sr+2, readRegister(ctrl, up1sr+2)&^up1sr1bppMode)
}
