// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package it8951

// controller is the transaction level view of the IT8951. Every method waits
// for the busy line before and after the preamble.
type controller interface {
	writeCommand(command)
	writeData(uint16)
	writeMultiData([]uint16)
	writeBurst([]byte)
	readMultiData(n int) []uint16
	waitUntilIdle()
	waitForDisplayReady()
	lastErr() error
}

// writeMultiArg sends cmd followed by each argument in its own data
// transaction.
func writeMultiArg(ctrl controller, cmd command, args ...uint16) {
	ctrl.writeCommand(cmd)
	for _, a := range args {
		ctrl.writeData(a)
	}
}

func readData(ctrl controller) uint16 {
	w := ctrl.readMultiData(1)
	if len(w) == 0 {
		return 0
	}
	return w[0]
}

func readRegister(ctrl controller, reg register) uint16 {
	ctrl.writeCommand(regRead)
	ctrl.writeData(uint16(reg))
	return readData(ctrl)
}

func writeRegister(ctrl controller, reg register, v uint16) {
	ctrl.writeCommand(regWrite)
	ctrl.writeData(uint16(reg))
	ctrl.writeData(v)
}

// getVCOM returns the VCOM setting in mV, as a positive number.
func getVCOM(ctrl controller) uint16 {
	ctrl.writeCommand(vcomCmd)
	ctrl.writeData(vcomGet)
	return readData(ctrl)
}

func setVCOM(ctrl controller, v uint16) {
	ctrl.writeCommand(vcomCmd)
	ctrl.writeData(vcomSet)
	ctrl.writeData(v)
}
