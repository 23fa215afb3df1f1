// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package epaper is a container for the IT8951 e-paper controller driver
// and its tooling.
//
// See it8951 for the driver, imagegray for packed gray frame buffers,
// screen2d for a terminal preview and cmd/it8951 for the command line tool.
package epaper
