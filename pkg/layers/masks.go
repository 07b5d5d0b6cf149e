package layers

import (
	"golang.org/x/exp/constraints"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
	"github.com/BlueBrain/atlas-commons/pkg/hierarchy"
)

// QueryRegionMask resolves region against the hierarchy and returns a
// boolean volume of the same shape as annotation, true where the voxel
// label belongs to the resolved region.
func QueryRegionMask[T constraints.Integer](region Region, annotation *atlas.VoxelData[T], rm *hierarchy.RegionMap) (*atlas.VoxelData[bool], error) {
	if err := requireScalar(annotation); err != nil {
		return nil, err
	}
	ids, err := rm.Find(region.Query, region.Attribute, region.WithDescendants)
	if err != nil {
		return nil, err
	}
	return maskForIDs(annotation, ids), nil
}

// RegionMask masks the region identified by acronym, descendants included.
// An acronym starting with '@' is interpreted as a regular expression.
func RegionMask[T constraints.Integer](acronym string, annotation *atlas.VoxelData[T], rm *hierarchy.RegionMap) (*atlas.VoxelData[bool], error) {
	region := Region{Query: acronym, Attribute: "acronym", WithDescendants: true}
	return QueryRegionMask(region, annotation, rm)
}

// CreateLayeredVolume labels every voxel of annotation with the 1-based
// index of the layer it belongs to, 0 meaning outside all layers. Layers
// are applied in metadata order and later layers overwrite earlier ones
// when a label satisfies several queries. Each layer is restricted to the
// region of interest defined by the metadata.
func CreateLayeredVolume[T constraints.Integer](annotation *atlas.VoxelData[T], rm *hierarchy.RegionMap, metadata *Metadata) (*atlas.VoxelData[uint8], error) {
	if err := metadata.Validate(); err != nil {
		return nil, err
	}
	if err := requireScalar(annotation); err != nil {
		return nil, err
	}
	regionIDs, err := rm.Find(metadata.Region.Query, metadata.Region.Attribute, metadata.Region.WithDescendants)
	if err != nil {
		return nil, err
	}

	layered := atlas.Like[uint8](annotation, 1)
	for i, query := range metadata.Layers.Queries {
		layerIDs, err := rm.Find(query, metadata.Layers.Attribute, metadata.Layers.WithDescendants)
		if err != nil {
			return nil, err
		}
		ids := layerIDs.Intersect(regionIDs)
		index := uint8(i + 1)
		for j, label := range annotation.Raw {
			if ids.Contains(int(label)) {
				layered.Raw[j] = index
			}
		}
	}
	return layered, nil
}

// LayerMasks builds one boolean mask per layer defined in the metadata,
// keyed by layer name. Iterate metadata.Layers.Names for the layer order.
func LayerMasks[T constraints.Integer](annotation *atlas.VoxelData[T], rm *hierarchy.RegionMap, metadata *Metadata) (map[string]*atlas.VoxelData[bool], error) {
	layered, err := CreateLayeredVolume(annotation, rm, metadata)
	if err != nil {
		return nil, err
	}
	masks := make(map[string]*atlas.VoxelData[bool], len(metadata.Layers.Names))
	for i, name := range metadata.Layers.Names {
		index := uint8(i + 1)
		mask := atlas.Like[bool](layered, 1)
		for j, value := range layered.Raw {
			if value == index {
				mask.Raw[j] = true
			}
		}
		masks[name] = mask
	}
	return masks, nil
}

func maskForIDs[T constraints.Integer](annotation *atlas.VoxelData[T], ids hierarchy.IDSet) *atlas.VoxelData[bool] {
	mask := atlas.Like[bool](annotation, 1)
	for i, label := range annotation.Raw {
		if ids.Contains(int(label)) {
			mask.Raw[i] = true
		}
	}
	return mask
}

func requireScalar[T any](v *atlas.VoxelData[T]) error {
	if v.Components > 1 {
		return atlas.Errorf("annotation volume must be scalar, got %d components per voxel", v.Components)
	}
	return nil
}
