package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BlueBrain/atlas-commons/pkg/nrrd"
	"github.com/BlueBrain/atlas-commons/pkg/visualization"
)

var slicesCmd = &cobra.Command{
	Use:   "slices",
	Short: "Save grayscale slice previews of a volume",
	RunE:  runSlices,
}

func init() {
	slicesCmd.Flags().String("input-path", "",
		"path to the volume to preview (nrrd)")
	slicesCmd.Flags().String("axes", "z",
		"axes to slice along, any subset of xyz")
	slicesCmd.Flags().String("output-dir", "slices",
		"directory for the slice images, one subdirectory per axis")
	_ = slicesCmd.MarkFlagRequired("input-path")
}

func runSlices(cmd *cobra.Command, args []string) error {
	inputPath, err := pathFlag(cmd, "input-path")
	if err != nil {
		return err
	}
	axes, _ := cmd.Flags().GetString("axes")
	outputDir, _ := cmd.Flags().GetString("output-dir")
	logInvocation(cmd)

	file, err := nrrd.ReadFile(inputPath)
	if err != nil {
		return err
	}
	volume, err := file.Float64Volume()
	if err != nil {
		return err
	}
	viewer, err := visualization.NewViewer(volume)
	if err != nil {
		return err
	}

	for _, axis := range strings.Split(axes, "") {
		if !strings.Contains("xyz", axis) {
			return fmt.Errorf("invalid axis %q, expected a subset of xyz", axis)
		}
		axisDir := filepath.Join(outputDir, axis)
		if err := viewer.SaveSliceSequence(axis, axisDir); err != nil {
			return err
		}
		logger.Info("wrote slice previews", zap.String("axis", axis), zap.String("dir", axisDir))
	}
	return nil
}
