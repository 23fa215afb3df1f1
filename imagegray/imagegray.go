// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package imagegray

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// Depth is the number of bits used per pixel.
type Depth int

// Supported depths.
const (
	Depth1 Depth = 1
	Depth2 Depth = 2
	Depth4 Depth = 4
	Depth8 Depth = 8
)

// Valid reports whether d is one of the supported depths.
func (d Depth) Valid() bool {
	switch d {
	case Depth1, Depth2, Depth4, Depth8:
		return true
	}
	return false
}

// Max returns the highest level (white) representable at this depth.
func (d Depth) Max() uint8 {
	return uint8(1<<uint(d) - 1)
}

// Level converts a color to the nearest level at this depth.
func (d Depth) Level(c color.Color) uint8 {
	if g, ok := c.(color.Gray); ok {
		return g.Y >> (8 - uint(d))
	}
	r, g, b, _ := c.RGBA()
	// Same weights as color.GrayModel.
	y := (19595*r + 38470*g + 7471*b + 1<<15) >> 24
	return uint8(y) >> (8 - uint(d))
}

// Gray returns the 8 bit gray value of a level at this depth.
func (d Depth) Gray(level uint8) color.Gray {
	m := uint32(d.Max())
	return color.Gray{Y: uint8(uint32(level&d.Max()) * 0xFF / m)}
}

// Model returns the color model that quantizes to this depth.
func (d Depth) Model() color.Model {
	return models[d]
}

var models = map[Depth]color.Model{
	Depth1: color.ModelFunc(func(c color.Color) color.Color { return Depth1.Gray(Depth1.Level(c)) }),
	Depth2: color.ModelFunc(func(c color.Color) color.Color { return Depth2.Gray(Depth2.Level(c)) }),
	Depth4: color.ModelFunc(func(c color.Color) color.Color { return Depth4.Gray(Depth4.Level(c)) }),
	Depth8: color.GrayModel,
}

// Image is a packed grayscale image.
type Image struct {
	// Pix holds the packed pixels, Stride bytes per row.
	Pix    []byte
	Stride int
	Rect   image.Rectangle
	Depth  Depth
}

// New returns an image of the given depth, filled with level 0 (black).
//
// It panics if depth is not supported.
func New(r image.Rectangle, depth Depth) *Image {
	if !depth.Valid() {
		panic(fmt.Sprintf("imagegray: unsupported depth %d", depth))
	}
	w, h := r.Dx(), r.Dy()
	if w <= 0 || h <= 0 {
		return &Image{Rect: r, Depth: depth}
	}
	stride := (w*int(depth) + 7) / 8
	return &Image{
		Pix:    make([]byte, stride*h),
		Stride: stride,
		Rect:   r,
		Depth:  depth,
	}
}

// ColorModel implements image.Image.
func (p *Image) ColorModel() color.Model {
	return p.Depth.Model()
}

// Bounds implements image.Image.
func (p *Image) Bounds() image.Rectangle {
	return p.Rect
}

// At implements image.Image.
func (p *Image) At(x, y int) color.Color {
	return p.Depth.Gray(p.LevelAt(x, y))
}

// LevelAt returns the raw level of the pixel at (x, y).
func (p *Image) LevelAt(x, y int) uint8 {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return 0
	}
	offset, shift := p.pixOffset(x, y)
	return (p.Pix[offset] >> shift) & p.Depth.Max()
}

// Set implements draw.Image.
func (p *Image) Set(x, y int, c color.Color) {
	p.SetLevel(x, y, p.Depth.Level(c))
}

// SetLevel sets the raw level of the pixel at (x, y). Bits above the depth
// are ignored.
func (p *Image) SetLevel(x, y int, level uint8) {
	if !(image.Point{X: x, Y: y}.In(p.Rect)) {
		return
	}
	offset, shift := p.pixOffset(x, y)
	m := p.Depth.Max()
	p.Pix[offset] = p.Pix[offset]&^(m<<shift) | (level&m)<<shift
}

// Fill sets every pixel to level.
func (p *Image) Fill(level uint8) {
	var b byte
	for i := 0; i < 8; i += int(p.Depth) {
		b = b<<uint(p.Depth) | level&p.Depth.Max()
	}
	for i := range p.Pix {
		p.Pix[i] = b
	}
}

// Crop returns a copy of the part of p visible through r, packed from the
// left edge of r. The result shares no memory with p.
func (p *Image) Crop(r image.Rectangle) *Image {
	r = r.Intersect(p.Rect)
	dst := New(r, p.Depth)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.SetLevel(x, y, p.LevelAt(x, y))
		}
	}
	return dst
}

// pixOffset returns the byte offset and bit shift of the pixel at (x, y).
func (p *Image) pixOffset(x, y int) (int, uint) {
	d := int(p.Depth)
	bit := (x - p.Rect.Min.X) * d
	offset := (y-p.Rect.Min.Y)*p.Stride + bit/8
	shift := uint(8 - d - bit%8)
	return offset, shift
}

var _ draw.Image = &Image{}
