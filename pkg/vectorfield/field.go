// Package vectorfield normalizes vector and quaternion fields with respect
// to the Euclidean norm. Fields are flat float64 slices with dim components
// per vector, vector i occupying field[i*dim : (i+1)*dim], matching the
// component-fastest layout of atlas.VoxelData.
//
// A zero vector cannot define a direction or an orientation, so degenerate
// vectors are invalidated to all-NaN rather than kept at zero. NaN
// orientations then propagate through downstream arithmetic instead of
// silently pointing somewhere.
package vectorfield

import (
	"math"

	"golang.org/x/exp/constraints"
	"gonum.org/v1/gonum/floats"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
)

// Numeric covers the element types accepted by Normalized.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// ZeroToNaN replaces, in place, every vector of exactly-zero Euclidean norm
// with an all-NaN vector. Non-degenerate vectors are left untouched.
func ZeroToNaN(field []float64, dim int) error {
	if err := checkDim(len(field), dim); err != nil {
		return err
	}
	for i := 0; i < len(field); i += dim {
		if floats.Norm(field[i:i+dim], 2) == 0 {
			for j := i; j < i+dim; j++ {
				field[j] = math.NaN()
			}
		}
	}
	return nil
}

// Normalize scales, in place, every vector to unit Euclidean norm. Zero
// vectors are divided by 1.0 instead of their norm and then invalidated via
// the ZeroToNaN rule; vectors that already hold NaN components pass through
// unchanged.
func Normalize(field []float64, dim int) error {
	if err := checkDim(len(field), dim); err != nil {
		return err
	}
	for i := 0; i < len(field); i += dim {
		vec := field[i : i+dim]
		// A NaN norm fails the > 0 test, leaving NaN vectors alone.
		if norm := floats.Norm(vec, 2); norm > 0 {
			floats.Scale(1/norm, vec)
		}
	}
	return ZeroToNaN(field, dim)
}

// Normalized is the pure variant of Normalize: it accepts any numeric
// element type and returns a fresh float64 field, leaving the input intact.
func Normalized[T Numeric](field []T, dim int) ([]float64, error) {
	if err := checkDim(len(field), dim); err != nil {
		return nil, err
	}
	out := make([]float64, len(field))
	for i, v := range field {
		out[i] = float64(v)
	}
	if err := Normalize(out, dim); err != nil {
		return nil, err
	}
	return out, nil
}

func checkDim(length, dim int) error {
	if dim <= 0 {
		return atlas.Errorf("vector dimension must be positive, got %d", dim)
	}
	if length%dim != 0 {
		return atlas.Errorf("field length %d is not a multiple of the vector dimension %d", length, dim)
	}
	return nil
}
