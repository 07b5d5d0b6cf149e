package atlas

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// volume of shape (2, 2, 3); Raw is component-fastest, x, y, z, so each
// group of four values below is one z-plane.
func splitFixture(t *testing.T) *VoxelData[int64] {
	t.Helper()
	v, err := NewVoxelData([]int64{
		0, 4, 2, 7,
		1, 5, 3, 8,
		2, 6, 4, 9,
	}, []int{2, 2, 3}, 1, nil, nil)
	require.NoError(t, err)
	return v
}

func TestSplitIntoHalves(t *testing.T) {
	volume := splitFixture(t)
	left, right, err := SplitIntoHalves(volume, 0)
	require.NoError(t, err)

	// z halfway = 3/2 = 1
	assert.Empty(t, cmp.Diff([]int64{
		0, 4, 2, 7,
		0, 0, 0, 0,
		0, 0, 0, 0,
	}, left.Raw))
	assert.Empty(t, cmp.Diff([]int64{
		0, 0, 0, 0,
		1, 5, 3, 8,
		2, 6, 4, 9,
	}, right.Raw))

	assert.Equal(t, volume.Shape(), left.Shape())
	assert.Equal(t, volume.Shape(), right.Shape())
}

func TestSplitIntoHalvesDoesNotMutateInput(t *testing.T) {
	volume := splitFixture(t)
	original := append([]int64(nil), volume.Raw...)
	_, _, err := SplitIntoHalves(volume, 0)
	require.NoError(t, err)
	assert.Equal(t, original, volume.Raw)
}

func TestSplitIntoHalvesRecombines(t *testing.T) {
	volume := splitFixture(t)
	left, right, err := SplitIntoHalves(volume, 0)
	require.NoError(t, err)
	for i := range volume.Raw {
		assert.Equal(t, volume.Raw[i], left.Raw[i]+right.Raw[i])
	}
}

func TestSplitIntoHalvesOffset(t *testing.T) {
	volume := splitFixture(t)
	left, _, err := SplitIntoHalves(volume, 1)
	require.NoError(t, err)
	// cutting plane moved to z = 2
	assert.Empty(t, cmp.Diff([]int64{
		0, 4, 2, 7,
		1, 5, 3, 8,
		0, 0, 0, 0,
	}, left.Raw))

	_, right, err := SplitIntoHalves(volume, -1)
	require.NoError(t, err)
	assert.Equal(t, volume.Raw, right.Raw)
}

func TestSplitIntoHalvesVectorVolume(t *testing.T) {
	field, err := NewVoxelData(
		[]float64{1, 2, 3, 4, 5, 6, 7, 8},
		[]int{1, 1, 4}, 2, nil, nil)
	require.NoError(t, err)
	left, right, err := SplitIntoHalves(field, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3, 4, 0, 0, 0, 0}, left.Raw)
	assert.Equal(t, []float64{0, 0, 0, 0, 5, 6, 7, 8}, right.Raw)
}

func TestSplitIntoHalvesRequires3D(t *testing.T) {
	flat, err := NewVoxelData(make([]uint32, 4), []int{2, 2}, 1, nil, nil)
	require.NoError(t, err)
	_, _, err = SplitIntoHalves(flat, 0)
	require.Error(t, err)
}
