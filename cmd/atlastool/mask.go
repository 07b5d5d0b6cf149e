package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
	"github.com/BlueBrain/atlas-commons/pkg/layers"
	"github.com/BlueBrain/atlas-commons/pkg/nrrd"
)

var maskCmd = &cobra.Command{
	Use:   "mask",
	Short: "Build the boolean mask of a region identified by acronym",
	Long: `Resolves the acronym against the region hierarchy, descendants included,
and writes a mask volume that is 1 where the annotation labels belong to
the region. An acronym starting with @ is treated as a regular expression.`,
	RunE: runMask,
}

func init() {
	addCommonAtlasFlags(maskCmd)
	maskCmd.Flags().String("acronym", "", "acronym of the region to mask")
	maskCmd.Flags().String("output-path", "mask.nrrd", "where to write the mask")
	_ = maskCmd.MarkFlagRequired("acronym")
}

func runMask(cmd *cobra.Command, args []string) error {
	annotationPath, err := pathFlag(cmd, "annotation-path")
	if err != nil {
		return err
	}
	hierarchyPath, err := pathFlag(cmd, "hierarchy-path")
	if err != nil {
		return err
	}
	acronym, _ := cmd.Flags().GetString("acronym")
	outputPath, _ := cmd.Flags().GetString("output-path")
	logInvocation(cmd)

	annotation, regionMap, err := loadAtlas(annotationPath, hierarchyPath)
	if err != nil {
		return err
	}
	mask, err := layers.RegionMask(acronym, annotation, regionMap)
	if err != nil {
		return err
	}
	if err := nrrd.WriteFile(outputPath, atlas.MaskToUint8(mask), nrrd.EncodingGzip); err != nil {
		return err
	}
	logger.Info("wrote region mask",
		zap.String("acronym", acronym),
		zap.String("path", outputPath))
	return nil
}
