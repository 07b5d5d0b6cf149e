package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
	"github.com/BlueBrain/atlas-commons/pkg/nrrd"
)

var splitCmd = &cobra.Command{
	Use:   "split",
	Short: "Split a volume into hemispheres along the z middle plane",
	Long: `Writes two volumes of the full input shape: the left half with voxels
zeroed above the middle z plane, and the right half with voxels zeroed
below it. The cutting plane can be shifted with --halfway-offset.`,
	RunE: runSplit,
}

func init() {
	splitCmd.Flags().String("annotation-path", "",
		"path to the volume to split (nrrd)")
	splitCmd.Flags().String("output-dir", ".",
		"directory for left.nrrd and right.nrrd")
	splitCmd.Flags().Int("halfway-offset", 0,
		"offset of the cutting plane relative to the z middle")
	_ = splitCmd.MarkFlagRequired("annotation-path")
}

func runSplit(cmd *cobra.Command, args []string) error {
	annotationPath, err := pathFlag(cmd, "annotation-path")
	if err != nil {
		return err
	}
	outputDir, _ := cmd.Flags().GetString("output-dir")
	offset, _ := cmd.Flags().GetInt("halfway-offset")
	logInvocation(cmd)

	file, err := nrrd.ReadFile(annotationPath)
	if err != nil {
		return err
	}
	volume, err := file.Uint32Volume()
	if err != nil {
		return err
	}
	left, right, err := atlas.SplitIntoHalves(volume, offset)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return err
	}
	for name, half := range map[string]*atlas.VoxelData[uint32]{"left": left, "right": right} {
		path := filepath.Join(outputDir, name+".nrrd")
		if err := nrrd.WriteFile(path, half, nrrd.EncodingGzip); err != nil {
			return err
		}
		logger.Info("wrote hemisphere", zap.String("half", name), zap.String("path", path))
	}
	return nil
}
