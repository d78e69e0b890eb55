// pkg/core/types.go
package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Handle identifies a live entity in the host scene. Zero means no entity.
type Handle uint32

// NoHandle is the empty live-handle slot.
const NoHandle Handle = 0

// Position3D represents a world-space coordinate
type Position3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"` // up
}

// Vec converts the position into an mgl64 vector for math.
func (p Position3D) Vec() mgl64.Vec3 {
	return mgl64.Vec3{p.X, p.Y, p.Z}
}

// PositionFromVec converts an mgl64 vector back into a Position3D.
func PositionFromVec(v mgl64.Vec3) Position3D {
	return Position3D{X: v.X(), Y: v.Y(), Z: v.Z()}
}

// Add returns p offset by o.
func (p Position3D) Add(o Position3D) Position3D {
	return PositionFromVec(p.Vec().Add(o.Vec()))
}

// Sub returns p minus o.
func (p Position3D) Sub(o Position3D) Position3D {
	return PositionFromVec(p.Vec().Sub(o.Vec()))
}

// DistanceTo returns the euclidean distance between two positions.
func (p Position3D) DistanceTo(o Position3D) float64 {
	return p.Vec().Sub(o.Vec()).Len()
}

// Up returns a vertical offset of dz.
func Up(dz float64) Position3D {
	return Position3D{Z: dz}
}

// Rotation3D holds euler angles in degrees
type Rotation3D struct {
	Pitch float64 `json:"pitch"`
	Roll  float64 `json:"roll"`
	Yaw   float64 `json:"yaw"`
}

// WithYaw returns r with the yaw rotated by delta degrees, wrapped to [0, 360).
func (r Rotation3D) WithYaw(delta float64) Rotation3D {
	y := math.Mod(r.Yaw+delta, 360)
	if y < 0 {
		y += 360
	}
	r.Yaw = y
	return r
}

// Direction returns the unit forward vector for the rotation.
// Yaw 0 faces +Y, pitch is positive upward.
func (r Rotation3D) Direction() mgl64.Vec3 {
	yaw := mgl64.DegToRad(r.Yaw)
	pitch := mgl64.DegToRad(r.Pitch)
	cp := math.Cos(pitch)
	return mgl64.Vec3{-math.Sin(yaw) * cp, math.Cos(yaw) * cp, math.Sin(pitch)}.Normalize()
}

// Color is an RGBA colour
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Transform is the placement of a live entity
type Transform struct {
	Position Position3D
	Rotation Rotation3D
}
