package atlas

// SplitIntoHalves splits a 3D volume into two halves along the middle plane
// orthogonal to the z-axis. Both halves keep the full shape of the input;
// the left half is zeroed for z >= zh and the right half for z < zh, where
// zh = D/2 + halfwayOffset. The input is not modified.
func SplitIntoHalves[T any](v *VoxelData[T], halfwayOffset int) (left, right *VoxelData[T], err error) {
	if len(v.Dims) != 3 {
		return nil, nil, Errorf("splitting requires a 3D volume, got %d spatial dimensions", len(v.Dims))
	}
	zh := v.Dims[2]/2 + halfwayOffset
	if zh < 0 {
		zh = 0
	}
	if zh > v.Dims[2] {
		zh = v.Dims[2]
	}

	// One z-plane is a contiguous run of Raw under the component-fastest
	// layout, so each half is a single range fill.
	plane := v.Components * v.Dims[0] * v.Dims[1]
	cut := zh * plane

	left = v.Clone()
	right = v.Clone()
	var zero T
	for i := cut; i < len(left.Raw); i++ {
		left.Raw[i] = zero
	}
	for i := 0; i < cut; i++ {
		right.Raw[i] = zero
	}
	return left, right, nil
}
