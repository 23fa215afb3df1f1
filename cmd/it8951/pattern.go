// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// grayBars renders the 16 gray levels as vertical bars, black on the left,
// with label in a box at the bottom.
func grayBars(w, h int, label string) (image.Image, error) {
	dc := gg.NewContext(w, h)
	bar := float64(w) / 16
	for i := 0; i < 16; i++ {
		v := float64(i) / 15
		dc.SetRGB(v, v, v)
		dc.DrawRectangle(float64(i)*bar, 0, bar+1, float64(h))
		dc.Fill()
	}
	if label == "" {
		return dc.Image(), nil
	}
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}
	size := float64(h) / 24
	if size < 8 {
		size = 8
	}
	dc.SetFontFace(truetype.NewFace(f, &truetype.Options{Size: size}))
	tw, th := dc.MeasureString(label)
	padding := size / 2
	x := (float64(w) - tw) / 2
	y := float64(h) - th - 3*padding
	dc.SetRGB(1, 1, 1)
	dc.DrawRoundedRectangle(x-padding, y-padding, tw+2*padding, th+2*padding, padding)
	dc.FillPreserve()
	dc.SetRGB(0, 0, 0)
	dc.Stroke()
	dc.DrawStringAnchored(label, x, y, 0, 1)
	return dc.Image(), nil
}

// checker renders a black and white checkerboard of square cells with label
// on a white strip at the top left.
func checker(w, h, cell int, label string) image.Image {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.Gray{Y: 0xFF}
			if (x/cell+y/cell)%2 == 1 {
				c.Y = 0
			}
			img.SetGray(x, y, c)
		}
	}
	if label == "" {
		return img
	}
	f := basicfont.Face7x13
	strip := image.Rect(0, 0, font.MeasureString(f, label).Ceil()+8, f.Height+8)
	draw.Draw(img, strip, image.White, image.Point{}, draw.Src)
	d := font.Drawer{
		Dst:  img,
		Src:  image.Black,
		Face: f,
		Dot:  fixed.P(4, 4+f.Ascent),
	}
	d.DrawString(label)
	return img
}

// portrait renders with r at swapped dimensions, then rotates the result
// to fill a w x h landscape panel.
func portrait(w, h int, r func(w, h int) (image.Image, error)) (image.Image, error) {
	img, err := r(h, w)
	if err != nil {
		return nil, err
	}
	return imaging.Rotate90(img), nil
}
