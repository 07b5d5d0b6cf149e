// Package nrrd reads and writes the subset of the NRRD format used by
// atlas pipelines: attached data, raw or gzip encoding, little-endian
// samples, axis-aligned space directions and at most one component axis
// (direction vectors, quaternions) marked by a "none" space direction.
// Everything outside this subset is reported as an explicit error.
package nrrd

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
)

// Header holds the parsed NRRD header fields this package understands.
type Header struct {
	Dimension int
	Sizes     []int

	// Type is the canonical sample type: int8, uint8, int16, uint16,
	// int32, uint32, int64, uint64, float32 or float64.
	Type string

	// Encoding is "raw" or "gzip".
	Encoding string

	// SpaceDirections has one entry per axis; a nil entry marks a
	// non-spatial (component) axis.
	SpaceDirections [][]float64

	SpaceOrigin []float64
}

// File is a fully read NRRD file: its header plus the decoded (inflated)
// little-endian payload bytes.
type File struct {
	Header Header
	Data   []byte
}

var typeNames = map[string]string{
	"signed char": "int8", "int8": "int8", "int8_t": "int8",
	"uchar": "uint8", "unsigned char": "uint8", "uint8": "uint8", "uint8_t": "uint8",
	"short": "int16", "short int": "int16", "signed short": "int16",
	"signed short int": "int16", "int16": "int16", "int16_t": "int16",
	"ushort": "uint16", "unsigned short": "uint16",
	"unsigned short int": "uint16", "uint16": "uint16", "uint16_t": "uint16",
	"int": "int32", "signed int": "int32", "int32": "int32", "int32_t": "int32",
	"uint": "uint32", "unsigned int": "uint32", "uint32": "uint32", "uint32_t": "uint32",
	"longlong": "int64", "long long": "int64", "long long int": "int64",
	"signed long long": "int64", "signed long long int": "int64",
	"int64": "int64", "int64_t": "int64",
	"ulonglong": "uint64", "unsigned long long": "uint64",
	"unsigned long long int": "uint64", "uint64": "uint64", "uint64_t": "uint64",
	"float": "float32", "float32": "float32",
	"double": "float64", "float64": "float64",
}

var typeSizes = map[string]int{
	"int8": 1, "uint8": 1, "int16": 2, "uint16": 2,
	"int32": 4, "uint32": 4, "int64": 8, "uint64": 8,
	"float32": 4, "float64": 8,
}

// ReadFile reads an NRRD file from disk.
func ReadFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening NRRD file")
	}
	defer f.Close()
	file, err := Read(f)
	return file, errors.Wrapf(err, "reading %s", path)
}

// Read parses an NRRD stream: magic, header fields, blank line, payload.
func Read(r io.Reader) (*File, error) {
	br := bufio.NewReader(r)
	header, err := readHeader(br)
	if err != nil {
		return nil, err
	}

	var payload io.Reader = br
	if header.Encoding == "gzip" {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, errors.Wrap(err, "opening gzip payload")
		}
		defer zr.Close()
		payload = zr
	}
	data, err := io.ReadAll(payload)
	if err != nil {
		return nil, errors.Wrap(err, "reading payload")
	}

	want := typeSizes[header.Type]
	for _, s := range header.Sizes {
		want *= s
	}
	if len(data) != want {
		return nil, errors.Errorf("payload is %d bytes, header promises %d", len(data), want)
	}
	return &File{Header: *header, Data: data}, nil
}

func readHeader(br *bufio.Reader) (*Header, error) {
	magic, err := br.ReadString('\n')
	if err != nil {
		return nil, errors.Wrap(err, "reading magic")
	}
	magic = strings.TrimRight(magic, "\r\n")
	if !strings.HasPrefix(magic, "NRRD000") || len(magic) != 8 || magic[7] < '1' || magic[7] > '5' {
		return nil, errors.Errorf("not an NRRD file, magic %q", magic)
	}

	h := &Header{Encoding: "raw"}
	endian := ""
	for {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "reading header")
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, ":=") {
			// Key-value metadata, nothing this package consumes.
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, errors.Errorf("malformed header line %q", line)
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if err := parseField(h, &endian, key, value); err != nil {
			return nil, err
		}
	}

	if err := validateHeader(h, endian); err != nil {
		return nil, err
	}
	return h, nil
}

func parseField(h *Header, endian *string, key, value string) error {
	switch key {
	case "dimension":
		n, err := strconv.Atoi(value)
		if err != nil {
			return errors.Wrap(err, "parsing dimension")
		}
		h.Dimension = n
	case "sizes":
		for _, tok := range strings.Fields(value) {
			n, err := strconv.Atoi(tok)
			if err != nil || n <= 0 {
				return errors.Errorf("bad size %q", tok)
			}
			h.Sizes = append(h.Sizes, n)
		}
	case "type":
		canonical, ok := typeNames[strings.ToLower(value)]
		if !ok {
			return errors.Errorf("unsupported sample type %q", value)
		}
		h.Type = canonical
	case "encoding":
		switch strings.ToLower(value) {
		case "raw":
			h.Encoding = "raw"
		case "gzip", "gz":
			h.Encoding = "gzip"
		default:
			return errors.Errorf("unsupported encoding %q", value)
		}
	case "endian":
		*endian = strings.ToLower(value)
	case "space directions":
		for _, tok := range strings.Fields(value) {
			if tok == "none" {
				h.SpaceDirections = append(h.SpaceDirections, nil)
				continue
			}
			vec, err := parseVector(tok)
			if err != nil {
				return errors.Wrapf(err, "parsing space direction %q", tok)
			}
			h.SpaceDirections = append(h.SpaceDirections, vec)
		}
	case "space origin":
		vec, err := parseVector(value)
		if err != nil {
			return errors.Wrap(err, "parsing space origin")
		}
		h.SpaceOrigin = vec
	case "data file", "datafile":
		return errors.New("detached data files are not supported")
	default:
		// Fields like space, kinds, space units or content do not
		// affect how the payload is interpreted here.
	}
	return nil
}

func validateHeader(h *Header, endian string) error {
	if h.Type == "" {
		return errors.New("header misses the type field")
	}
	if h.Dimension == 0 {
		return errors.New("header misses the dimension field")
	}
	if len(h.Sizes) != h.Dimension {
		return errors.Errorf("dimension is %d but sizes lists %d axes", h.Dimension, len(h.Sizes))
	}
	if typeSizes[h.Type] > 1 && endian != "" && endian != "little" {
		return errors.Errorf("unsupported endianness %q", endian)
	}
	if h.SpaceDirections != nil && len(h.SpaceDirections) != h.Dimension {
		return errors.Errorf("space directions lists %d axes, dimension is %d", len(h.SpaceDirections), h.Dimension)
	}
	return nil
}

func parseVector(s string) ([]float64, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "(") || !strings.HasSuffix(s, ")") {
		return nil, errors.Errorf("expected a parenthesized vector, got %q", s)
	}
	var vec []float64
	for _, tok := range strings.Split(s[1:len(s)-1], ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok), 64)
		if err != nil {
			return nil, err
		}
		vec = append(vec, v)
	}
	return vec, nil
}

// layout describes how the payload axes map onto a VoxelData.
type layout struct {
	spatial    []int // spatial sizes in axis order
	components int
	// componentLast is set when the component axis is the slowest on
	// disk, requiring interleaving into the component-fastest layout.
	componentLast bool
	voxelDims     []float64
	origin        []float64
}

func (f *File) layout() (*layout, error) {
	h := &f.Header
	l := &layout{components: 1, origin: h.SpaceOrigin}

	componentAxis := -1
	if h.SpaceDirections != nil {
		for axis, dir := range h.SpaceDirections {
			if dir == nil {
				if componentAxis >= 0 {
					return nil, errors.New("more than one component axis")
				}
				componentAxis = axis
			}
		}
		if componentAxis > 0 && componentAxis != h.Dimension-1 {
			return nil, errors.Errorf("component axis must be first or last, got axis %d", componentAxis)
		}
	}

	for axis, size := range h.Sizes {
		if axis == componentAxis {
			l.components = size
			l.componentLast = axis == h.Dimension-1
			continue
		}
		l.spatial = append(l.spatial, size)
		if h.SpaceDirections != nil {
			step, err := axisStep(h.SpaceDirections[axis], len(l.spatial)-1)
			if err != nil {
				return nil, err
			}
			l.voxelDims = append(l.voxelDims, step)
		}
	}
	if l.voxelDims == nil {
		l.voxelDims = make([]float64, len(l.spatial))
		for i := range l.voxelDims {
			l.voxelDims[i] = 1.0
		}
	}
	if l.origin == nil {
		l.origin = make([]float64, len(l.spatial))
	}
	return l, nil
}

// axisStep extracts the voxel step of an axis-aligned space direction.
func axisStep(dir []float64, spatialIndex int) (float64, error) {
	for i, v := range dir {
		if i != spatialIndex && v != 0 {
			return 0, errors.Errorf("only axis-aligned space directions are supported, got %v", dir)
		}
	}
	if spatialIndex >= len(dir) {
		return 0, errors.Errorf("space direction %v has no entry for axis %d", dir, spatialIndex)
	}
	return dir[spatialIndex], nil
}

// Uint8Volume decodes an integer-typed file into a uint8 volume.
func (f *File) Uint8Volume() (*atlas.VoxelData[uint8], error) {
	return integerVolume[uint8](f, 0, math.MaxUint8)
}

// Uint32Volume decodes an integer-typed file, such as a brain-region
// annotation, into a uint32 label volume.
func (f *File) Uint32Volume() (*atlas.VoxelData[uint32], error) {
	return integerVolume[uint32](f, 0, math.MaxUint32)
}

// Float64Volume decodes any numeric file into a float64 volume.
func (f *File) Float64Volume() (*atlas.VoxelData[float64], error) {
	l, err := f.layout()
	if err != nil {
		return nil, err
	}
	values, err := f.asFloat64()
	if err != nil {
		return nil, err
	}
	if l.componentLast {
		values = interleave(values, l.components)
	}
	return atlas.NewVoxelData(values, l.spatial, l.components, l.voxelDims, l.origin)
}

func integerVolume[T uint8 | uint32](f *File, lo, hi int64) (*atlas.VoxelData[T], error) {
	l, err := f.layout()
	if err != nil {
		return nil, err
	}
	values, err := f.asInt64()
	if err != nil {
		return nil, err
	}
	out := make([]T, len(values))
	for i, v := range values {
		if v < lo || v > hi {
			return nil, errors.Errorf("sample %d is out of range [%d, %d]", v, lo, hi)
		}
		out[i] = T(v)
	}
	if l.componentLast {
		out = interleave(out, l.components)
	}
	return atlas.NewVoxelData(out, l.spatial, l.components, l.voxelDims, l.origin)
}

// interleave converts a component-slowest (planar) payload into the
// component-fastest layout VoxelData uses.
func interleave[T any](src []T, components int) []T {
	voxels := len(src) / components
	out := make([]T, len(src))
	for c := 0; c < components; c++ {
		for v := 0; v < voxels; v++ {
			out[v*components+c] = src[c*voxels+v]
		}
	}
	return out
}

func (f *File) asInt64() ([]int64, error) {
	switch f.Header.Type {
	case "int8":
		return convertSamples(f.Data, 1, func(b []byte) int64 { return int64(int8(b[0])) }), nil
	case "uint8":
		return convertSamples(f.Data, 1, func(b []byte) int64 { return int64(b[0]) }), nil
	case "int16":
		return convertSamples(f.Data, 2, func(b []byte) int64 { return int64(int16(binary.LittleEndian.Uint16(b))) }), nil
	case "uint16":
		return convertSamples(f.Data, 2, func(b []byte) int64 { return int64(binary.LittleEndian.Uint16(b)) }), nil
	case "int32":
		return convertSamples(f.Data, 4, func(b []byte) int64 { return int64(int32(binary.LittleEndian.Uint32(b))) }), nil
	case "uint32":
		return convertSamples(f.Data, 4, func(b []byte) int64 { return int64(binary.LittleEndian.Uint32(b)) }), nil
	case "int64", "uint64":
		return convertSamples(f.Data, 8, func(b []byte) int64 { return int64(binary.LittleEndian.Uint64(b)) }), nil
	default:
		return nil, errors.Errorf("expected an integer sample type, file has %s", f.Header.Type)
	}
}

func (f *File) asFloat64() ([]float64, error) {
	switch f.Header.Type {
	case "float32":
		return convertSamples(f.Data, 4, func(b []byte) float64 {
			return float64(math.Float32frombits(binary.LittleEndian.Uint32(b)))
		}), nil
	case "float64":
		return convertSamples(f.Data, 8, func(b []byte) float64 {
			return math.Float64frombits(binary.LittleEndian.Uint64(b))
		}), nil
	default:
		ints, err := f.asInt64()
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(ints))
		for i, v := range ints {
			out[i] = float64(v)
		}
		return out, nil
	}
}

func convertSamples[T any](data []byte, width int, decode func([]byte) T) []T {
	out := make([]T, len(data)/width)
	for i := range out {
		out[i] = decode(data[i*width:])
	}
	return out
}
