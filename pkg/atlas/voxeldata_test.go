package atlas

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVoxelData(t *testing.T) {
	raw := make([]uint32, 27)
	v, err := NewVoxelData(raw, []int{3, 3, 3}, 1, []float64{25, 25, 25}, []float64{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{3, 3, 3}, v.Shape())
	assert.Equal(t, []int{3, 3, 3}, v.RawShape())
	assert.Equal(t, 27, v.VoxelCount())
}

func TestNewVoxelDataComponentsDefault(t *testing.T) {
	v, err := NewVoxelData(make([]float64, 8), []int{2, 2, 2}, 0, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, v.Components)
}

func TestNewVoxelDataLengthMismatch(t *testing.T) {
	_, err := NewVoxelData(make([]uint32, 26), []int{3, 3, 3}, 1, nil, nil)
	require.Error(t, err)
	var domainErr *Error
	assert.ErrorAs(t, err, &domainErr)
}

func TestRawShapeVectorVolume(t *testing.T) {
	v, err := NewVoxelData(make([]float64, 2*2*2*3), []int{2, 2, 2}, 3, []float64{25, 25, 25}, []float64{0, 0, 0})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2}, v.Shape())
	assert.Equal(t, []int{2, 2, 2, 3}, v.RawShape())
}

func TestIndex(t *testing.T) {
	v, err := NewVoxelData(make([]float64, 2*3*4*2), []int{2, 3, 4}, 2, nil, nil)
	require.NoError(t, err)
	// component axis fastest, then x, y, z
	assert.Equal(t, 0, v.Index(0, 0, 0))
	assert.Equal(t, 2, v.Index(1, 0, 0))
	assert.Equal(t, 4, v.Index(0, 1, 0))
	assert.Equal(t, 12, v.Index(0, 0, 1))
	assert.Equal(t, 2*(1+2*(2+3*3)), v.Index(1, 2, 3))
}

func TestCloneIsDeep(t *testing.T) {
	v, err := NewVoxelData([]uint8{1, 2, 3, 4}, []int{4}, 1, []float64{10}, []float64{-5})
	require.NoError(t, err)
	clone := v.Clone()
	clone.Raw[0] = 9
	clone.VoxelDims[0] = 99
	assert.Equal(t, uint8(1), v.Raw[0])
	assert.Equal(t, float64(10), v.VoxelDims[0])
}

func TestLike(t *testing.T) {
	v, err := NewVoxelData(make([]uint32, 27), []int{3, 3, 3}, 1, []float64{25, 25, 25}, []float64{1, 2, 3})
	require.NoError(t, err)
	mask := Like[bool](v, 1)
	assert.Len(t, mask.Raw, 27)
	assert.Empty(t, cmp.Diff(v.Dims, mask.Dims))
	assert.Empty(t, cmp.Diff(v.Origin, mask.Origin))

	field := Like[float64](v, 3)
	assert.Len(t, field.Raw, 81)
	assert.Equal(t, 3, field.Components)
}

func TestMaskToUint8(t *testing.T) {
	mask, err := NewVoxelData([]bool{true, false, false, true}, []int{4}, 1, nil, nil)
	require.NoError(t, err)
	got := MaskToUint8(mask)
	assert.Equal(t, []uint8{1, 0, 0, 1}, got.Raw)
	assert.Equal(t, mask.Dims, got.Dims)
}
