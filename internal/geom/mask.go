// Package geom provides bit-packed occupancy masks and pixel-accurate overlap tests.
package geom

import "math"

const wordBits = 64

// Mask is a rectangular occupancy bitmap. Each row is packed into uint64 words,
// least significant bit first.
type Mask struct {
	w, h   int
	stride int // words per row
	bits   []uint64
}

// NewMask returns an empty mask of the given size.
func NewMask(w, h int) *Mask {
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	stride := (w + wordBits - 1) / wordBits
	return &Mask{w: w, h: h, stride: stride, bits: make([]uint64, stride*h)}
}

// RectMask returns a fully set w×h mask.
func RectMask(w, h int) *Mask {
	m := NewMask(w, h)
	m.FillRect(0, 0, w, h, true)
	return m
}

// Circle returns a d×d mask with the inscribed disc set.
// A pixel is set when its center lies inside the circle.
func Circle(d int) *Mask {
	m := NewMask(d, d)
	r := float64(d) / 2
	for y := 0; y < d; y++ {
		for x := 0; x < d; x++ {
			cx := float64(x) + 0.5 - r
			cy := float64(y) + 0.5 - r
			if cx*cx+cy*cy <= r*r {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.w }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.h }

// Get reports whether pixel (x, y) is set. Pixels outside the mask are unset.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return false
	}
	return m.bits[y*m.stride+x/wordBits]&(1<<uint(x%wordBits)) != 0
}

// Set sets or clears pixel (x, y). Out of range coordinates are ignored.
func (m *Mask) Set(x, y int, v bool) {
	if x < 0 || y < 0 || x >= m.w || y >= m.h {
		return
	}
	i := y*m.stride + x/wordBits
	bit := uint64(1) << uint(x%wordBits)
	if v {
		m.bits[i] |= bit
	} else {
		m.bits[i] &^= bit
	}
}

// FillRect sets or clears every pixel of the rectangle, clipped to the mask.
func (m *Mask) FillRect(x, y, w, h int, v bool) {
	x0, y0 := max(x, 0), max(y, 0)
	x1, y1 := min(x+w, m.w), min(y+h, m.h)
	for py := y0; py < y1; py++ {
		for px := x0; px < x1; px++ {
			m.Set(px, py, v)
		}
	}
}

// Count returns the number of set pixels.
func (m *Mask) Count() int {
	n := 0
	for y := 0; y < m.h; y++ {
		for x := 0; x < m.w; x++ {
			if m.Get(x, y) {
				n++
			}
		}
	}
	return n
}

// Overlaps reports whether other, placed at offset (dx, dy) relative to m,
// shares at least one set pixel with m.
func (m *Mask) Overlaps(other *Mask, dx, dy int) bool {
	x0, y0 := max(0, dx), max(0, dy)
	x1, y1 := min(m.w, dx+other.w), min(m.h, dy+other.h)
	if x0 >= x1 || y0 >= y1 {
		return false
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x += wordBits {
			n := min(wordBits, x1-x)
			if m.window(y, x, n)&other.window(y-dy, x-dx, n) != 0 {
				return true
			}
		}
	}
	return false
}

// window extracts n (1..64) bits of row y starting at column x.
// The caller guarantees the range lies inside the mask.
func (m *Mask) window(y, x, n int) uint64 {
	row := m.bits[y*m.stride : (y+1)*m.stride]
	i, s := x/wordBits, uint(x%wordBits)
	v := row[i] >> s
	if s != 0 && i+1 < len(row) {
		v |= row[i+1] << (wordBits - s)
	}
	if n < wordBits {
		v &= (1 << uint(n)) - 1
	}
	return v
}

// Offset converts a pair of float positions into the integer offset of b
// relative to a, rounding to the nearest pixel.
func Offset(ax, ay, bx, by float64) (int, int) {
	return Round(bx) - Round(ax), Round(by) - Round(ay)
}

// Round rounds a screen coordinate to the nearest pixel.
func Round(v float64) int {
	return int(math.Round(v))
}
