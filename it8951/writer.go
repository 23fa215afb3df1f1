// Copyright 2024 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package it8951

import "time"

// Chunking limits. A telegram is bounded by the rows the controller buffers
// per LD_IMG_AREA, a burst by the words sent under one chip select.
const (
	defaultTelegramRows = 100
	defaultBurstWords   = 8190
	interBurstDelay     = time.Millisecond
)

// wordsPerRow returns the number of 16 bit words holding one row of width
// pixels at bpp bits per pixel.
func wordsPerRow(width, bpp int) int {
	return (width * bpp / 8) / 2
}

// span is a contiguous run of rows or words.
type span struct {
	start int
	count int
}

// telegrams splits rows into runs of at most limit rows.
func telegrams(rows, limit int) []span {
	return split(rows, limit)
}

// bursts splits words into runs of at most limit words.
func bursts(words, limit int) []span {
	return split(words, limit)
}

func split(n, limit int) []span {
	if n <= 0 {
		return nil
	}
	if limit <= 0 {
		limit = n
	}
	out := make([]span, 0, (n+limit-1)/limit)
	for start := 0; start < n; start += limit {
		c := limit
		if n-start < c {
			c = n - start
		}
		out = append(out, span{start: start, count: c})
	}
	return out
}

// packWords groups src bytes in pairs forming 16 bit words. With
// LittleEndian the first byte is the low half.
func packWords(src []byte, e Endian) []uint16 {
	words := make([]uint16, len(src)/2)
	for i := range words {
		b0, b1 := uint16(src[2*i]), uint16(src[2*i+1])
		if e == LittleEndian {
			words[i] = b0 | b1<<8
		} else {
			words[i] = b0<<8 | b1
		}
	}
	return words
}

// unpackWords is the inverse of packWords.
func unpackWords(words []uint16, e Endian) []byte {
	b := make([]byte, 2*len(words))
	for i, w := range words {
		if e == LittleEndian {
			b[2*i], b[2*i+1] = byte(w), byte(w>>8)
		} else {
			b[2*i], b[2*i+1] = byte(w>>8), byte(w)
		}
	}
	return b
}

// encodeWords writes the words packed from src to dst as sent on the wire,
// high byte first. It is packWords followed by big endian encoding without
// the intermediate slice.
func encodeWords(dst, src []byte, e Endian) {
	if e != LittleEndian {
		copy(dst, src)
		return
	}
	for i := 0; i+1 < len(src); i += 2 {
		dst[i], dst[i+1] = src[i+1], src[i]
	}
}

// writer streams a packed frame buffer through the image load protocol.
type writer struct {
	strategy     Strategy
	telegramRows int
	burstWords   int
	// maxTransfer bounds the OneChunk transfer buffer, in bytes. 0 means
	// unbounded.
	maxTransfer int
}

// sourceLen returns the bytes of Source consumed for area a.
func sourceLen(l *LoadImageInfo, a AreaImageInfo) int {
	return wordsPerRow(int(a.W), l.Format.bitsPerPixel()) * 2 * int(a.H)
}

// check returns the errors write would hit before touching the bus.
func (w *writer) check(l *LoadImageInfo, a AreaImageInfo, packed bool) error {
	need := sourceLen(l, a)
	if len(l.Source) < need {
		return &BufferError{Need: need, Have: len(l.Source), What: "pixel buffer"}
	}
	if packed && w.strategy == OneChunk && w.maxTransfer > 0 && need+2 > w.maxTransfer {
		return &BufferError{Need: need + 2, Have: w.maxTransfer, What: "transfer buffer"}
	}
	return nil
}

// write loads l.Source into area a. full selects LD_IMG instead of
// LD_IMG_AREA for the strategies loading the image in one transaction.
// Unpacked writes always go word by word.
func (w *writer) write(ctrl controller, l *LoadImageInfo, a AreaImageInfo, full, packed bool) {
	wpr := wordsPerRow(int(a.W), l.Format.bitsPerPixel())
	src := l.Source[:wpr*2*int(a.H)]
	s := w.strategy
	if !packed {
		s = WordByWord
	}
	switch s {
	case PerRow:
		for y := 0; y < int(a.H) && ctrl.lastErr() == nil; y++ {
			row := a
			row.Y += uint16(y)
			row.H = 1
			beginLoadArea(ctrl, l, row)
			ctrl.writeMultiData(packWords(src[y*wpr*2:(y+1)*wpr*2], l.Endian))
			endLoad(ctrl)
			ctrl.waitUntilIdle()
		}
	case WholeImage:
		w.begin(ctrl, l, a, full)
		w.writeBursts(ctrl, src, l.Endian)
		endLoad(ctrl)
		ctrl.waitUntilIdle()
	case OneChunk:
		p := make([]byte, len(src))
		encodeWords(p, src, l.Endian)
		w.begin(ctrl, l, a, full)
		ctrl.writeBurst(p)
		endLoad(ctrl)
		ctrl.waitUntilIdle()
	case WordByWord:
		beginLoadArea(ctrl, l, a)
		for _, v := range packWords(src, l.Endian) {
			ctrl.writeData(v)
		}
		endLoad(ctrl)
	default:
		limit := w.telegramRows
		if limit <= 0 {
			limit = defaultTelegramRows
		}
		for _, t := range telegrams(int(a.H), limit) {
			if ctrl.lastErr() != nil {
				return
			}
			ta := a
			ta.Y += uint16(t.start)
			ta.H = uint16(t.count)
			beginLoadArea(ctrl, l, ta)
			w.writeBursts(ctrl, src[t.start*wpr*2:(t.start+t.count)*wpr*2], l.Endian)
			endLoad(ctrl)
			ctrl.waitUntilIdle()
		}
	}
}

func (w *writer) begin(ctrl controller, l *LoadImageInfo, a AreaImageInfo, full bool) {
	if full {
		beginLoad(ctrl, l)
	} else {
		beginLoadArea(ctrl, l, a)
	}
}

// writeBursts sends src in bursts of at most burstWords words, pausing
// between bursts so the controller FIFO drains.
func (w *writer) writeBursts(ctrl controller, src []byte, e Endian) {
	limit := w.burstWords
	if limit <= 0 {
		limit = defaultBurstWords
	}
	words := len(src) / 2
	if words < limit {
		limit = words
	}
	buf := make([]byte, 2*limit)
	for i, b := range bursts(words, limit) {
		if ctrl.lastErr() != nil {
			return
		}
		if i != 0 {
			sleep(interBurstDelay)
		}
		p := buf[:2*b.count]
		encodeWords(p, src[2*b.start:2*(b.start+b.count)], e)
		ctrl.writeBurst(p)
	}
}
