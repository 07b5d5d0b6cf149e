package atlas

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// propertyTol is the tolerance used when comparing dataset properties.
// Voxel dimensions and offsets coming from different files may differ by
// float32 round-off.
const propertyTol = 1e-6

// Properties is the metadata surface shared by volume-like datasets. Any
// value exposing these accessors can be fed to the consistency checks;
// *VoxelData implements it.
type Properties interface {
	RawShape() []int
	Shape() []int
	VoxelDimensions() []float64
	Offset() []float64
}

type property struct {
	name string
	get  func(Properties) []float64
}

// AssertProperties checks that all datasets share the same raw payload
// shape, voxel dimensions and offset, within tolerance. The first
// mismatching property is named in the returned domain error. With fewer
// than two datasets there is nothing to compare and the check passes.
func AssertProperties(datasets ...Properties) error {
	return assertSame(datasets, []property{
		{"shape", func(p Properties) []float64 { return intsAsFloats(p.RawShape()) }},
		{"voxel_dimensions", Properties.VoxelDimensions},
		{"offset", Properties.Offset},
	})
}

// AssertMetaProperties is AssertProperties over the logical spatial shape
// instead of the raw payload shape: a (W, H, D) label volume is compatible
// with a (W, H, D, 3) direction-vector volume.
func AssertMetaProperties(datasets ...Properties) error {
	return assertSame(datasets, []property{
		{"shape", func(p Properties) []float64 { return intsAsFloats(p.Shape()) }},
		{"voxel_dimensions", Properties.VoxelDimensions},
		{"offset", Properties.Offset},
	})
}

func assertSame(datasets []Properties, props []property) error {
	if len(datasets) < 2 {
		return nil
	}
	for _, p := range props {
		ok, err := compareAll(datasets, p.get)
		if err != nil {
			return err
		}
		if !ok {
			return Errorf("need to have the same %s for all files", p.name)
		}
	}
	return nil
}

// compareAll compares the first dataset pairwise against every other one.
// A comparison that cannot be performed at all, such as vectors of unequal
// length, is reported as a distinct wrapped error rather than a mismatch.
func compareAll(datasets []Properties, get func(Properties) []float64) (bool, error) {
	ref := get(datasets[0])
	for _, other := range datasets[1:] {
		got := get(other)
		if len(got) != len(ref) {
			return false, WrapErr(
				fmt.Errorf("cannot compare %d values against %d", len(got), len(ref)),
				"bad operation during comparison")
		}
		if !floats.EqualApprox(ref, got, propertyTol) {
			return false, nil
		}
	}
	return true, nil
}

func intsAsFloats(values []int) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
