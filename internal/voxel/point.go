package voxel

import "fmt"

// Side is the edge length of the cube.
const Side = 4

// Point addresses a voxel by position. Z is the layer; X and Y select the
// column within the layer.
type Point struct{ X, Y, Z int }

// Column maps an (x,y) position within a layer to its column index.
func Column(x, y int) int { return Side*x + y }

// Cell returns the (layer, column) pair for p.
func (p Point) Cell() (layer, column int) { return p.Z, Column(p.X, p.Y) }

// Valid reports whether p is inside the cube.
func (p Point) Valid() bool {
	return inSide(p.X) && inSide(p.Y) && inSide(p.Z)
}

func (p Point) String() string { return fmt.Sprintf("(%d,%d,%d)", p.X, p.Y, p.Z) }

// PointAt decodes a voxel number in [0,64): x = n/16, y = n/4%4, z = n%4.
func PointAt(n int) Point {
	if n < 0 || n >= Cells {
		panic(fmt.Sprintf("voxel: point %d out of range [0,%d)", n, Cells))
	}
	return Point{X: n / 16, Y: n / Side % Side, Z: n % Side}
}

// SetPoint writes brightness at p.
func (g *Grid) SetPoint(p Point, brightness int) {
	l, c := p.Cell()
	g.Set(l, c, brightness)
}

func inSide(v int) bool { return v >= 0 && v < Side }
