package nrrd

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
)

// Encoding selects the payload encoding of a written file.
type Encoding string

const (
	EncodingRaw  Encoding = "raw"
	EncodingGzip Encoding = "gzip"
)

// Sample covers the element types this package can write.
type Sample interface {
	~uint8 | ~uint16 | ~uint32 | ~int16 | ~int32 | ~float32 | ~float64
}

// WriteFile writes a volume as an NRRD file.
func WriteFile[T Sample](path string, v *atlas.VoxelData[T], encoding Encoding) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "creating NRRD file")
	}
	if err := Write(f, v, encoding); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", path)
	}
	return errors.Wrapf(f.Close(), "closing %s", path)
}

// Write writes a volume as an NRRD stream: little-endian samples, the
// component axis (if any) listed first, which matches the in-memory layout
// of VoxelData so the payload is emitted as-is.
func Write[T Sample](w io.Writer, v *atlas.VoxelData[T], encoding Encoding) error {
	if encoding != EncodingRaw && encoding != EncodingGzip {
		return errors.Errorf("unsupported encoding %q", encoding)
	}
	sampleType, sampleSize := sampleTypeOf[T]()

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "NRRD0004")
	fmt.Fprintln(bw, "# written by atlas-commons")
	fmt.Fprintf(bw, "type: %s\n", sampleType)

	sizes := v.Dims
	if v.Components > 1 {
		sizes = append([]int{v.Components}, v.Dims...)
	}
	fmt.Fprintf(bw, "dimension: %d\n", len(sizes))
	fmt.Fprintf(bw, "sizes: %s\n", joinInts(sizes))
	fmt.Fprintf(bw, "encoding: %s\n", encoding)
	if sampleSize > 1 {
		fmt.Fprintln(bw, "endian: little")
	}
	writeSpaceFields(bw, v.Components > 1, spatialSteps(v), spatialOrigin(v))
	fmt.Fprintln(bw)

	var payload io.Writer = bw
	var zw *gzip.Writer
	if encoding == EncodingGzip {
		zw = gzip.NewWriter(bw)
		payload = zw
	}
	if err := binary.Write(payload, binary.LittleEndian, v.Raw); err != nil {
		return errors.Wrap(err, "writing payload")
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			return errors.Wrap(err, "closing gzip payload")
		}
	}
	return errors.Wrap(bw.Flush(), "flushing output")
}

func writeSpaceFields(w io.Writer, componentAxis bool, steps, origin []float64) {
	fmt.Fprintf(w, "space dimension: %d\n", len(steps))

	var directions []string
	if componentAxis {
		directions = append(directions, "none")
	}
	for i, step := range steps {
		vec := make([]float64, len(steps))
		vec[i] = step
		directions = append(directions, formatVector(vec))
	}
	fmt.Fprintf(w, "space directions: %s\n", strings.Join(directions, " "))
	fmt.Fprintf(w, "space origin: %s\n", formatVector(origin))
}

// spatialSteps returns one physical step per spatial axis, defaulting to
// 1.0 when the volume carries no voxel dimensions.
func spatialSteps[T any](v *atlas.VoxelData[T]) []float64 {
	if len(v.VoxelDims) == len(v.Dims) {
		return v.VoxelDims
	}
	steps := make([]float64, len(v.Dims))
	for i := range steps {
		steps[i] = 1.0
	}
	return steps
}

func spatialOrigin[T any](v *atlas.VoxelData[T]) []float64 {
	if len(v.Origin) == len(v.Dims) {
		return v.Origin
	}
	return make([]float64, len(v.Dims))
}

func sampleTypeOf[T Sample]() (name string, size int) {
	switch any(*new(T)).(type) {
	case uint8:
		return "uint8", 1
	case uint16:
		return "uint16", 2
	case uint32:
		return "uint32", 4
	case int16:
		return "int16", 2
	case int32:
		return "int32", 4
	case float32:
		return "float", 4
	default:
		return "double", 8
	}
}

func joinInts(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func formatVector(vec []float64) string {
	parts := make([]string, len(vec))
	for i, v := range vec {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "(" + strings.Join(parts, ",") + ")"
}
