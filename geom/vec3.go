// Package geom provides the 3-component coordinate type used to
// position pixels and readout cells, and the axis-aligned overlap
// volume calculation used to prune geometry with no charge in it.
package geom

import (
	"fmt"
	"math"
)

// Vec3 is a 3-component coordinate with component-wise arithmetic.
type Vec3 struct {
	X, Y, Z float64
}

// New builds a Vec3 from its three components.
func New(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add returns the component-wise sum of v and o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns the component-wise difference v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v multiplied by the scalar s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Dot returns the dot product of v and o.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross returns the cross product v x o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Norm returns the Euclidean (L2) length of v.
func (v Vec3) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

// IsZero reports whether every component of v is exactly zero.
func (v Vec3) IsZero() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Less reports whether v is strictly less than o on every axis.
func (v Vec3) Less(o Vec3) bool {
	return v.X < o.X && v.Y < o.Y && v.Z < o.Z
}

// LessEqual reports whether v is less than or equal to o on every axis.
func (v Vec3) LessEqual(o Vec3) bool {
	return v.X <= o.X && v.Y <= o.Y && v.Z <= o.Z
}

// Greater reports whether v is strictly greater than o on every axis.
func (v Vec3) Greater(o Vec3) bool {
	return v.X > o.X && v.Y > o.Y && v.Z > o.Z
}

// GreaterEqual reports whether v is greater than or equal to o on every axis.
func (v Vec3) GreaterEqual(o Vec3) bool {
	return v.X >= o.X && v.Y >= o.Y && v.Z >= o.Z
}

// String renders v for logging.
func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Box is an axis-aligned box given in (low, high) form.
type Box struct {
	Lo, Hi Vec3
}

// Union returns the tightest box containing both a and b.
func (a Box) Union(b Box) Box {
	return Box{
		Lo: Vec3{min(a.Lo.X, b.Lo.X), min(a.Lo.Y, b.Lo.Y), min(a.Lo.Z, b.Lo.Z)},
		Hi: Vec3{max(a.Hi.X, b.Hi.X), max(a.Hi.Y, b.Hi.Y), max(a.Hi.Z, b.Hi.Z)},
	}
}

// OverlapVolume returns the product of the per-axis overlaps of a and b,
// clamped to zero on any axis with no overlap.
func OverlapVolume(a, b Box) float64 {
	ox := axisOverlap(a.Lo.X, a.Hi.X, b.Lo.X, b.Hi.X)
	oy := axisOverlap(a.Lo.Y, a.Hi.Y, b.Lo.Y, b.Hi.Y)
	oz := axisOverlap(a.Lo.Z, a.Hi.Z, b.Lo.Z, b.Hi.Z)
	return ox * oy * oz
}

func axisOverlap(aLo, aHi, bLo, bHi float64) float64 {
	return math.Max(0, math.Min(aHi, bHi)-math.Max(aLo, bLo))
}
