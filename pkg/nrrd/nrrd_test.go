package nrrd

import (
	"bytes"
	"encoding/binary"
	"math"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
)

func TestRoundTripUint32Gzip(t *testing.T) {
	raw := make([]uint32, 27)
	for i := range raw {
		raw[i] = uint32(i)
	}
	volume, err := atlas.NewVoxelData(raw, []int{3, 3, 3}, 1, []float64{25, 25, 25}, []float64{-1, 0, 5})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "annotation.nrrd")
	require.NoError(t, WriteFile(path, volume, EncodingGzip))

	file, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "uint32", file.Header.Type)
	assert.Equal(t, "gzip", file.Header.Encoding)
	assert.Equal(t, []int{3, 3, 3}, file.Header.Sizes)

	got, err := file.Uint32Volume()
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(volume.Raw, got.Raw))
	assert.Equal(t, volume.Dims, got.Dims)
	assert.Empty(t, cmp.Diff(volume.VoxelDims, got.VoxelDims))
	assert.Empty(t, cmp.Diff(volume.Origin, got.Origin))
}

func TestRoundTripUint8Raw(t *testing.T) {
	volume, err := atlas.NewVoxelData([]uint8{0, 1, 2, 3, 2, 1}, []int{1, 2, 3}, 1, []float64{10, 10, 10}, []float64{0, 0, 0})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "layers.nrrd")
	require.NoError(t, WriteFile(path, volume, EncodingRaw))

	file, err := ReadFile(path)
	require.NoError(t, err)
	got, err := file.Uint8Volume()
	require.NoError(t, err)
	assert.Equal(t, volume.Raw, got.Raw)
	assert.Equal(t, []int{1, 2, 3}, got.Dims)
}

func TestRoundTripVectorField(t *testing.T) {
	raw := make([]float64, 2*2*2*3)
	for i := range raw {
		raw[i] = float64(i) / 2
	}
	field, err := atlas.NewVoxelData(raw, []int{2, 2, 2}, 3, []float64{25, 25, 25}, []float64{0, 0, 0})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "directions.nrrd")
	require.NoError(t, WriteFile(path, field, EncodingGzip))

	file, err := ReadFile(path)
	require.NoError(t, err)
	// component axis is listed first
	assert.Equal(t, []int{3, 2, 2, 2}, file.Header.Sizes)
	require.Len(t, file.Header.SpaceDirections, 4)
	assert.Nil(t, file.Header.SpaceDirections[0])

	got, err := file.Float64Volume()
	require.NoError(t, err)
	assert.Equal(t, 3, got.Components)
	assert.Equal(t, []int{2, 2, 2}, got.Dims)
	assert.Empty(t, cmp.Diff(field.Raw, got.Raw))
}

func TestFloat64VolumeFromIntegerFile(t *testing.T) {
	volume, err := atlas.NewVoxelData([]uint8{0, 3, 7, 1}, []int{4, 1, 1}, 1, []float64{1, 1, 1}, []float64{0, 0, 0})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, volume, EncodingRaw))

	file, err := Read(&buf)
	require.NoError(t, err)
	got, err := file.Float64Volume()
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 3, 7, 1}, got.Raw)
}

func TestUint32VolumeRejectsFloatFile(t *testing.T) {
	volume, err := atlas.NewVoxelData([]float64{0.5}, []int{1, 1, 1}, 1, nil, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, volume, EncodingRaw))

	file, err := Read(&buf)
	require.NoError(t, err)
	_, err = file.Uint32Volume()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integer sample type")
}

func TestUint8VolumeRejectsOutOfRange(t *testing.T) {
	volume, err := atlas.NewVoxelData([]int16{-1, 300}, []int{2, 1, 1}, 1, nil, nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, volume, EncodingRaw))

	file, err := Read(&buf)
	require.NoError(t, err)
	_, err = file.Uint8Volume()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

// Files written with the component axis last store the payload planar;
// the reader interleaves it into the component-fastest layout.
func TestComponentLastIsInterleaved(t *testing.T) {
	header := "NRRD0004\n" +
		"type: double\n" +
		"dimension: 4\n" +
		"sizes: 2 1 1 3\n" +
		"encoding: raw\n" +
		"endian: little\n" +
		"space directions: (1,0,0) (0,1,0) (0,0,1) none\n" +
		"space origin: (0,0,0)\n" +
		"\n"
	var buf bytes.Buffer
	buf.WriteString(header)
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, []float64{1, 2, 3, 4, 5, 6}))

	file, err := Read(&buf)
	require.NoError(t, err)
	got, err := file.Float64Volume()
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1, 1}, got.Dims)
	assert.Equal(t, 3, got.Components)
	assert.Equal(t, []float64{1, 3, 5, 2, 4, 6}, got.Raw)
}

func TestReadNoSpaceFieldsDefaults(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("NRRD0001\ntype: uchar\ndimension: 3\nsizes: 1 1 2\nencoding: raw\n\n")
	buf.Write([]byte{7, 9})

	file, err := Read(&buf)
	require.NoError(t, err)
	got, err := file.Uint8Volume()
	require.NoError(t, err)
	assert.Equal(t, []uint8{7, 9}, got.Raw)
	assert.Equal(t, []float64{1, 1, 1}, got.VoxelDims)
	assert.Equal(t, []float64{0, 0, 0}, got.Origin)
}

func TestReadErrors(t *testing.T) {
	cases := map[string]string{
		"bad magic":       "NOTNRRD0\ntype: uchar\ndimension: 1\nsizes: 1\nencoding: raw\n\nx",
		"detached data":   "NRRD0004\ntype: uchar\ndimension: 1\nsizes: 1\nencoding: raw\ndata file: payload.raw\n\n",
		"bad encoding":    "NRRD0004\ntype: uchar\ndimension: 1\nsizes: 1\nencoding: bz2\n\nx",
		"bad type":        "NRRD0004\ntype: block\ndimension: 1\nsizes: 1\nencoding: raw\n\nx",
		"big endian":      "NRRD0004\ntype: uint\ndimension: 1\nsizes: 1\nencoding: raw\nendian: big\n\nxxxx",
		"sizes mismatch":  "NRRD0004\ntype: uchar\ndimension: 2\nsizes: 1\nencoding: raw\n\nx",
		"short payload":   "NRRD0004\ntype: uchar\ndimension: 1\nsizes: 4\nencoding: raw\n\nxx",
		"missing type":    "NRRD0004\ndimension: 1\nsizes: 1\nencoding: raw\n\nx",
		"malformed field": "NRRD0004\ntype uchar\ndimension: 1\nsizes: 1\nencoding: raw\n\nx",
	}
	for name, content := range cases {
		_, err := Read(bytes.NewReader([]byte(content)))
		assert.Error(t, err, name)
	}
}

func TestReadSkipsCommentsAndKeyValues(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("NRRD0004\n# a comment\nspace units:= microns\ntype: uchar\ndimension: 1\nsizes: 1\nencoding: raw\n\nx")
	file, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("x"), file.Data)
}

func TestReadRotatedDirectionsRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("NRRD0004\ntype: uchar\ndimension: 3\nsizes: 1 1 1\nencoding: raw\n" +
		"space directions: (1,1,0) (0,1,0) (0,0,1)\n\nx")
	file, err := Read(&buf)
	require.NoError(t, err)
	_, err = file.Uint8Volume()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "axis-aligned")
}

func TestNaNSurvivesFloatRoundTrip(t *testing.T) {
	field, err := atlas.NewVoxelData([]float64{math.NaN(), 1, 0, -2}, []int{2, 1, 1}, 2, []float64{1, 1, 1}, []float64{0, 0, 0})
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, field, EncodingGzip))

	file, err := Read(&buf)
	require.NoError(t, err)
	got, err := file.Float64Volume()
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Raw[0]))
	assert.Equal(t, []float64{1, 0, -2}, got.Raw[1:])
}
