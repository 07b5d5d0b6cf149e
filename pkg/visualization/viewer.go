// Package visualization renders 2D slices of a volume as grayscale images,
// for quick visual inspection of annotation volumes, masks and layered
// volumes.
package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
)

// Viewer extracts and saves 2D slices of a scalar volume. Intensities are
// windowed to the volume's min/max range, so label volumes with small
// integer values render with visible contrast.
type Viewer struct {
	volume *atlas.VoxelData[float64]

	// intensity window, computed once at construction
	lo, hi float64
}

// NewViewer creates a viewer for a scalar volume.
func NewViewer(volume *atlas.VoxelData[float64]) (*Viewer, error) {
	if len(volume.Dims) != 3 {
		return nil, fmt.Errorf("viewer requires a 3D volume, got %d dimensions", len(volume.Dims))
	}
	if volume.Components != 1 {
		return nil, fmt.Errorf("viewer requires a scalar volume, got %d components per voxel", volume.Components)
	}
	v := &Viewer{volume: volume}
	if len(volume.Raw) > 0 {
		v.lo = floats.Min(volume.Raw)
		v.hi = floats.Max(volume.Raw)
	}
	return v, nil
}

// ExtractSlice extracts the 2D slice at position along the given axis
// ("x", "y" or "z") as a 16-bit grayscale image.
func (v *Viewer) ExtractSlice(axis string, position int) (image.Image, error) {
	w, h, d := v.volume.Dims[0], v.volume.Dims[1], v.volume.Dims[2]
	if position < 0 {
		return nil, fmt.Errorf("position must be non-negative, got %d", position)
	}

	var img *image.Gray16
	switch axis {
	case "x", "X":
		if position >= w {
			return nil, fmt.Errorf("position %d exceeds width %d", position, w)
		}
		img = image.NewGray16(image.Rect(0, 0, d, h))
		for y := 0; y < h; y++ {
			for z := 0; z < d; z++ {
				img.SetGray16(z, y, v.gray(position, y, z))
			}
		}
	case "y", "Y":
		if position >= h {
			return nil, fmt.Errorf("position %d exceeds height %d", position, h)
		}
		img = image.NewGray16(image.Rect(0, 0, w, d))
		for z := 0; z < d; z++ {
			for x := 0; x < w; x++ {
				img.SetGray16(x, z, v.gray(x, position, z))
			}
		}
	case "z", "Z":
		if position >= d {
			return nil, fmt.Errorf("position %d exceeds depth %d", position, d)
		}
		img = image.NewGray16(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetGray16(x, y, v.gray(x, y, position))
			}
		}
	default:
		return nil, fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}
	return img, nil
}

// gray windows the voxel value at (x, y, z) into the 16-bit range.
func (v *Viewer) gray(x, y, z int) color.Gray16 {
	value := v.volume.Raw[v.volume.Index(x, y, z)]
	if v.hi <= v.lo {
		return color.Gray16{}
	}
	scaled := (value - v.lo) / (v.hi - v.lo) * 65535
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 65535 {
		scaled = 65535
	}
	return color.Gray16{Y: uint16(scaled)}
}

// ExtractRegion copies a 3D subregion out of the volume.
func (v *Viewer) ExtractRegion(startX, startY, startZ, sizeX, sizeY, sizeZ int) (*atlas.VoxelData[float64], error) {
	if startX < 0 || startY < 0 || startZ < 0 {
		return nil, fmt.Errorf("start coordinates must be non-negative")
	}
	if sizeX <= 0 || sizeY <= 0 || sizeZ <= 0 {
		return nil, fmt.Errorf("size dimensions must be positive")
	}
	w, h, d := v.volume.Dims[0], v.volume.Dims[1], v.volume.Dims[2]
	if startX+sizeX > w || startY+sizeY > h || startZ+sizeZ > d {
		return nil, fmt.Errorf("region extends beyond volume boundaries")
	}

	region := &atlas.VoxelData[float64]{
		Raw:        make([]float64, sizeX*sizeY*sizeZ),
		Dims:       []int{sizeX, sizeY, sizeZ},
		Components: 1,
		VoxelDims:  append([]float64(nil), v.volume.VoxelDims...),
		Origin:     append([]float64(nil), v.volume.Origin...),
	}
	for z := 0; z < sizeZ; z++ {
		for y := 0; y < sizeY; y++ {
			for x := 0; x < sizeX; x++ {
				region.Raw[region.Index(x, y, z)] = v.volume.Raw[v.volume.Index(startX+x, startY+y, startZ+z)]
			}
		}
	}
	return region, nil
}

// SaveSlice saves an extracted slice as a JPEG image.
func (v *Viewer) SaveSlice(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
}

// SaveSliceSequence extracts and saves every slice along the given axis.
func (v *Viewer) SaveSliceSequence(axis string, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}

	var maxPos int
	switch axis {
	case "x", "X":
		maxPos = v.volume.Dims[0]
	case "y", "Y":
		maxPos = v.volume.Dims[1]
	case "z", "Z":
		maxPos = v.volume.Dims[2]
	default:
		return fmt.Errorf("invalid axis: %s (must be x, y, or z)", axis)
	}

	for pos := 0; pos < maxPos; pos++ {
		img, err := v.ExtractSlice(axis, pos)
		if err != nil {
			return err
		}
		filename := filepath.Join(outputDir, fmt.Sprintf("slice_%s_%03d.jpg", axis, pos))
		if err := v.SaveSlice(img, filename); err != nil {
			return err
		}
	}
	return nil
}
