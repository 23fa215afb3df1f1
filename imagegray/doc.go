// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package imagegray implements packed grayscale images of 1, 2, 4 or 8 bits
// per pixel.
//
// Pixels are packed horizontally, most significant bits first: at 4 bits per
// pixel the even column of a pair lives in the high nibble, at 1 bit per pixel
// column 0 of a byte is bit 7. Each row starts on a byte boundary. This is the
// frame buffer layout the it8951 writers stream to the controller.
//
// The highest level is white, level 0 is black.
package imagegray
