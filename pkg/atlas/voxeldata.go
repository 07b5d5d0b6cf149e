// Package atlas provides the volumetric data model shared by the
// atlas-commons packages together with consistency checks across datasets.
package atlas

// VoxelData couples a dense voxel array with its placement in space.
//
// Raw is flat with the component axis fastest, then x, then y, then z:
//
//	idx = c + Components*(x + Dims[0]*(y + Dims[1]*z))
//
// which is the payload order of the NRRD files this library consumes, so
// codecs can copy data without reordering.
type VoxelData[T any] struct {
	// Raw is the flat voxel payload.
	Raw []T

	// Dims holds the spatial dimension sizes (W, H, D).
	Dims []int

	// Components is the number of payload components per voxel:
	// 1 for label and scalar volumes, 3 for direction vectors,
	// 4 for quaternion fields.
	Components int

	// VoxelDims is the physical size of a voxel along each spatial axis.
	VoxelDims []float64

	// Origin is the spatial position of the array origin.
	Origin []float64
}

// NewVoxelData wraps raw into a VoxelData after checking that the payload
// length matches the declared dimensions. components may be 0, meaning 1.
func NewVoxelData[T any](raw []T, dims []int, components int, voxelDims, origin []float64) (*VoxelData[T], error) {
	if components == 0 {
		components = 1
	}
	if components < 0 {
		return nil, Errorf("components must be positive, got %d", components)
	}
	n := components
	for _, d := range dims {
		if d < 0 {
			return nil, Errorf("negative dimension size %d", d)
		}
		n *= d
	}
	if len(raw) != n {
		return nil, Errorf("payload length %d does not match dimensions %v with %d components", len(raw), dims, components)
	}
	return &VoxelData[T]{
		Raw:        raw,
		Dims:       dims,
		Components: components,
		VoxelDims:  voxelDims,
		Origin:     origin,
	}, nil
}

// Like returns a zero-valued volume of U elements sharing v's spatial
// dimensions and placement metadata.
func Like[U, T any](v *VoxelData[T], components int) *VoxelData[U] {
	out := &VoxelData[U]{
		Raw:        make([]U, v.VoxelCount()*components),
		Dims:       append([]int(nil), v.Dims...),
		Components: components,
		VoxelDims:  append([]float64(nil), v.VoxelDims...),
		Origin:     append([]float64(nil), v.Origin...),
	}
	return out
}

// Shape returns the spatial dimension sizes.
func (v *VoxelData[T]) Shape() []int { return v.Dims }

// RawShape returns the full payload shape: the spatial dimensions followed
// by a trailing component axis when the volume is not scalar.
func (v *VoxelData[T]) RawShape() []int {
	if v.Components <= 1 {
		return v.Dims
	}
	return append(append([]int(nil), v.Dims...), v.Components)
}

// VoxelDimensions returns the physical voxel size per spatial axis.
func (v *VoxelData[T]) VoxelDimensions() []float64 { return v.VoxelDims }

// Offset returns the spatial position of the array origin.
func (v *VoxelData[T]) Offset() []float64 { return v.Origin }

// VoxelCount returns the number of voxels (components not included).
func (v *VoxelData[T]) VoxelCount() int {
	n := 1
	for _, d := range v.Dims {
		n *= d
	}
	return n
}

// Index returns the Raw offset of the first component of voxel (x, y, z).
func (v *VoxelData[T]) Index(x, y, z int) int {
	return v.Components * (x + v.Dims[0]*(y+v.Dims[1]*z))
}

// Clone returns a deep copy of v.
func (v *VoxelData[T]) Clone() *VoxelData[T] {
	return &VoxelData[T]{
		Raw:        append([]T(nil), v.Raw...),
		Dims:       append([]int(nil), v.Dims...),
		Components: v.Components,
		VoxelDims:  append([]float64(nil), v.VoxelDims...),
		Origin:     append([]float64(nil), v.Origin...),
	}
}

// MaskToUint8 converts a boolean mask into a uint8 volume, true voxels
// becoming 1. Useful for writing masks to formats without a bool type.
func MaskToUint8(m *VoxelData[bool]) *VoxelData[uint8] {
	out := Like[uint8](m, m.Components)
	for i, set := range m.Raw {
		if set {
			out.Raw[i] = 1
		}
	}
	return out
}
