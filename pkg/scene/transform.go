package scene

import "cogentcore.org/core/math32"

// Transform holds local position, rotation (Euler angles in degrees) and scale.
type Transform struct {
	Position math32.Vector3
	Rotation math32.Vector3
	Scale    math32.Vector3
}

// NewTransform returns a transform at the origin with unit scale.
func NewTransform() Transform {
	return Transform{Scale: math32.Vec3(1, 1, 1)}
}

// Matrix returns the local transform matrix.
func (t Transform) Matrix() math32.Matrix4 {
	var m math32.Matrix4
	q := math32.NewQuatEuler(t.Rotation.MulScalar(math32.DegToRadFactor))
	m.SetTransform(t.Position, q, t.Scale)
	return m
}

// World composes the local transform under the parent's world transform.
func (t Transform) World(parent *math32.Matrix4) math32.Matrix4 {
	local := t.Matrix()
	var w math32.Matrix4
	w.MulMatrices(parent, &local)
	return w
}

// Fields returns the serialized form of the transform.
func (t Transform) Fields() map[string]any {
	return map[string]any{
		"position": Vec3Array(t.Position),
		"rotation": Vec3Array(t.Rotation),
		"scale":    Vec3Array(t.Scale),
	}
}

// WorldPosition extracts the translation of a world matrix.
func WorldPosition(m *math32.Matrix4) math32.Vector3 {
	return math32.Vec3(0, 0, 0).MulMatrix4(m)
}

// Vec3Array is the file representation of a vector.
func Vec3Array(v math32.Vector3) []float32 {
	return []float32{v.X, v.Y, v.Z}
}

// Vec4Array is the file representation of a colour or tint.
func Vec4Array(v math32.Vector4) []float32 {
	return []float32{v.X, v.Y, v.Z, v.W}
}
