package layout

import (
	"math"
	"sync"
)

// Point is a pointer or window origin in viewport pixels.
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Add offsets p by d.
func (p Point) Add(d Point) Point {
	return Point{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns p - o.
func (p Point) Sub(o Point) Point {
	return Point{X: p.X - o.X, Y: p.Y - o.Y}
}

// Size is a window width/height pair.
type Size struct {
	W float64 `json:"w" yaml:"w"`
	H float64 `json:"h" yaml:"h"`
}

// Position is a window origin plus its stacking rank.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z int     `json:"z"`
}

// Point drops the stacking rank.
func (p Position) Point() Point {
	return Point{X: p.X, Y: p.Y}
}

// Rect represents a floating window geometry in logical pixels.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"w"`
	Height float64 `json:"h"`
}

// Origin returns the top-left corner.
func (r Rect) Origin() Point {
	return Point{X: r.X, Y: r.Y}
}

// Size returns the rect dimensions.
func (r Rect) Size() Size {
	return Size{W: r.Width, H: r.Height}
}

// Contains reports whether p lies inside r. Right and bottom edges are exclusive.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.Width && p.Y >= r.Y && p.Y < r.Y+r.Height
}

// RectFrom builds a rect from an origin and a size.
func RectFrom(origin Point, size Size) Rect {
	return Rect{X: origin.X, Y: origin.Y, Width: size.W, Height: size.H}
}

// Viewport is the visible page area.
type Viewport struct {
	Width  float64 `json:"w" yaml:"width"`
	Height float64 `json:"h" yaml:"height"`
}

// Margins describe the gap kept between windows and the viewport edges plus
// the height of the navigation bar pinned to the top of the page.
type Margins struct {
	Offset    float64
	NavHeight float64
}

// UsableArea returns the rect a maximized window fills.
func UsableArea(vp Viewport, m Margins) Rect {
	usable := Rect{
		X:      m.Offset,
		Y:      m.NavHeight + m.Offset,
		Width:  vp.Width - 2*m.Offset,
		Height: vp.Height - m.NavHeight - 2*m.Offset,
	}
	if usable.Width < 0 {
		usable.Width = 0
	}
	if usable.Height < 0 {
		usable.Height = 0
	}
	return usable
}

// ClampOrigin keeps a window of the given size inside the usable area. When the
// window is larger than the area the left/top edge wins.
func ClampOrigin(p Point, size Size, vp Viewport, m Margins) Point {
	minX := m.Offset
	minY := m.NavHeight + m.Offset
	maxX := vp.Width - size.W - m.Offset
	maxY := vp.Height - size.H - m.Offset
	if p.X > maxX {
		p.X = maxX
	}
	if p.X < minX {
		p.X = minX
	}
	if p.Y > maxY {
		p.Y = maxY
	}
	if p.Y < minY {
		p.Y = minY
	}
	return p
}

// ApproximatelyEqual reports whether two rects are almost equal.
func ApproximatelyEqual(a, b Rect, tolerance float64) bool {
	return math.Abs(a.X-b.X) <= tolerance && math.Abs(a.Y-b.Y) <= tolerance &&
		math.Abs(a.Width-b.Width) <= tolerance && math.Abs(a.Height-b.Height) <= tolerance
}

// Coords is the live, frequently updated position of a window while it is
// being dragged. It is written on every pointer move and committed to the
// window store only at the end of the interaction.
type Coords interface {
	Current() Point
	Set(Point)
}

// LiveCoords is a Coords backed by a mutex-guarded point with change
// notification.
type LiveCoords struct {
	mu       sync.Mutex
	p        Point
	onChange func(Point)
}

// NewLiveCoords returns coords starting at p. onChange may be nil.
func NewLiveCoords(p Point, onChange func(Point)) *LiveCoords {
	return &LiveCoords{p: p, onChange: onChange}
}

func (c *LiveCoords) Current() Point {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.p
}

func (c *LiveCoords) Set(p Point) {
	c.mu.Lock()
	c.p = p
	fn := c.onChange
	c.mu.Unlock()
	if fn != nil {
		fn(p)
	}
}
