package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
	"github.com/BlueBrain/atlas-commons/pkg/hierarchy"
	"github.com/BlueBrain/atlas-commons/pkg/layers"
	"github.com/BlueBrain/atlas-commons/pkg/nrrd"
)

var layersCmd = &cobra.Command{
	Use:   "layers",
	Short: "Build a layered volume from an annotation and a region hierarchy",
	Long: `Labels every voxel of the annotation volume with the 1-based index of
the layer it belongs to, as defined by the metadata descriptor; voxels
outside all layers are labeled 0. Optionally writes one boolean mask per
layer next to the layered volume.`,
	RunE: runLayers,
}

func init() {
	addCommonAtlasFlags(layersCmd)
	layersCmd.Flags().String("metadata-path", "",
		"path to the YAML metadata descriptor defining the region and its layers")
	layersCmd.Flags().String("output-path", "layers.nrrd",
		"where to write the layered volume")
	layersCmd.Flags().Bool("write-masks", false,
		"also write one boolean mask per layer")
	layersCmd.Flags().String("masks-dir", "layer_masks",
		"directory for the per-layer masks")
	_ = layersCmd.MarkFlagRequired("metadata-path")
}

func runLayers(cmd *cobra.Command, args []string) error {
	annotationPath, err := pathFlag(cmd, "annotation-path")
	if err != nil {
		return err
	}
	hierarchyPath, err := pathFlag(cmd, "hierarchy-path")
	if err != nil {
		return err
	}
	metadataPath, err := pathFlag(cmd, "metadata-path")
	if err != nil {
		return err
	}
	outputPath, _ := cmd.Flags().GetString("output-path")
	writeMasks, _ := cmd.Flags().GetBool("write-masks")
	masksDir, _ := cmd.Flags().GetString("masks-dir")
	logInvocation(cmd)

	annotation, regionMap, err := loadAtlas(annotationPath, hierarchyPath)
	if err != nil {
		return err
	}
	metadata, err := layers.LoadMetadata(metadataPath)
	if err != nil {
		return err
	}

	layered, err := layers.CreateLayeredVolume(annotation, regionMap, metadata)
	if err != nil {
		return err
	}
	if err := nrrd.WriteFile(outputPath, layered, nrrd.EncodingGzip); err != nil {
		return err
	}
	logger.Info("wrote layered volume",
		zap.String("path", outputPath),
		zap.Int("layers", len(metadata.Layers.Names)))

	if !writeMasks {
		return nil
	}
	masks, err := layers.LayerMasks(annotation, regionMap, metadata)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(masksDir, 0755); err != nil {
		return err
	}
	for _, name := range metadata.Layers.Names {
		maskPath := filepath.Join(masksDir, name+".nrrd")
		if err := nrrd.WriteFile(maskPath, atlas.MaskToUint8(masks[name]), nrrd.EncodingGzip); err != nil {
			return err
		}
		logger.Debug("wrote layer mask", zap.String("layer", name), zap.String("path", maskPath))
	}
	return nil
}

// loadAtlas reads the annotation volume and the region hierarchy.
func loadAtlas(annotationPath, hierarchyPath string) (*atlas.VoxelData[uint32], *hierarchy.RegionMap, error) {
	file, err := nrrd.ReadFile(annotationPath)
	if err != nil {
		return nil, nil, err
	}
	annotation, err := file.Uint32Volume()
	if err != nil {
		return nil, nil, err
	}
	regionMap, err := hierarchy.Load(hierarchyPath)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("loaded atlas",
		zap.Ints("shape", annotation.Shape()),
		zap.Int("regions", regionMap.Size()))
	return annotation, regionMap, nil
}
