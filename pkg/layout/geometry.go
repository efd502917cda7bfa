package layout

import "math"

// epsilon is the tolerance for treating coordinates as equal.
const epsilon = 0.001

// Point is a position in layout space. Y grows downwards.
type Point struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// Rect is an axis-aligned rectangle with its top-left corner at (X, Y).
type Rect struct {
	X      float64 `json:"x" bson:"x"`
	Y      float64 `json:"y" bson:"y"`
	Width  float64 `json:"width" bson:"width"`
	Height float64 `json:"height" bson:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// Center returns the rectangle's center point.
func (r Rect) Center() Point { return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2} }

// Contains reports whether o lies entirely inside r.
func (r Rect) Contains(o Rect) bool {
	return o.X >= r.X-epsilon && o.Y >= r.Y-epsilon &&
		o.Right() <= r.Right()+epsilon && o.Bottom() <= r.Bottom()+epsilon
}

// Expand grows r by pad on every side.
func (r Rect) Expand(pad float64) Rect {
	return Rect{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}

// bounds accumulates the smallest rectangle covering a set of rectangles
// and points.
type bounds struct {
	minX, minY, maxX, maxY float64
	empty                  bool
}

func newBounds() bounds { return bounds{empty: true} }

func (b *bounds) addRect(r Rect) {
	b.addPoint(Point{X: r.X, Y: r.Y})
	b.addPoint(Point{X: r.Right(), Y: r.Bottom()})
}

func (b *bounds) addPoint(p Point) {
	if b.empty {
		b.minX, b.minY, b.maxX, b.maxY = p.X, p.Y, p.X, p.Y
		b.empty = false
		return
	}
	b.minX = math.Min(b.minX, p.X)
	b.minY = math.Min(b.minY, p.Y)
	b.maxX = math.Max(b.maxX, p.X)
	b.maxY = math.Max(b.maxY, p.Y)
}

func (b bounds) rect() Rect {
	if b.empty {
		return Rect{}
	}
	return Rect{X: b.minX, Y: b.minY, Width: b.maxX - b.minX, Height: b.maxY - b.minY}
}

// PolylineLength returns the Euclidean length of the path through pts.
func PolylineLength(pts []Point) float64 {
	total := 0.0
	for i := 1; i < len(pts); i++ {
		total += math.Hypot(pts[i].X-pts[i-1].X, pts[i].Y-pts[i-1].Y)
	}
	return total
}

// Simplify removes repeated points and the middle point of every run of
// three points that lie on one horizontal or vertical line.
func Simplify(pts []Point) []Point {
	out := make([]Point, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && near(out[n-1], p) {
			continue
		}
		out = append(out, p)
		for {
			n := len(out)
			if n >= 2 && near(out[n-2], out[n-1]) {
				out = out[:n-1]
				continue
			}
			if n >= 3 && aligned(out[n-3], out[n-2], out[n-1]) {
				out[n-2] = out[n-1]
				out = out[:n-1]
				continue
			}
			break
		}
	}
	return out
}

func near(a, b Point) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon
}

func aligned(a, b, c Point) bool {
	sameX := math.Abs(a.X-b.X) < epsilon && math.Abs(b.X-c.X) < epsilon
	sameY := math.Abs(a.Y-b.Y) < epsilon && math.Abs(b.Y-c.Y) < epsilon
	return sameX || sameY
}
