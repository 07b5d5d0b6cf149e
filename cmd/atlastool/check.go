package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
	"github.com/BlueBrain/atlas-commons/pkg/nrrd"
)

var checkCmd = &cobra.Command{
	Use:   "check <nrrd file>...",
	Short: "Check shape/voxel-size/offset consistency across volumes",
	Long: `Compares shape, voxel dimensions and offset across the given volumes and
fails on the first mismatch. With --meta, only the spatial shape is
compared, so a scalar (W, H, D) volume is accepted next to a
direction-vector (W, H, D, 3) volume.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().Bool("meta", false,
		"compare logical spatial shapes instead of raw payload shapes")
}

func runCheck(cmd *cobra.Command, args []string) error {
	meta, _ := cmd.Flags().GetBool("meta")
	logInvocation(cmd)

	datasets := make([]atlas.Properties, 0, len(args))
	for _, arg := range args {
		path, err := existingFilePath(arg)
		if err != nil {
			return err
		}
		file, err := nrrd.ReadFile(path)
		if err != nil {
			return err
		}
		volume, err := file.Float64Volume()
		if err != nil {
			return err
		}
		logger.Debug("loaded volume",
			zap.String("path", path),
			zap.Ints("raw_shape", volume.RawShape()))
		datasets = append(datasets, volume)
	}

	assert := atlas.AssertProperties
	if meta {
		assert = atlas.AssertMetaProperties
	}
	if err := assert(datasets...); err != nil {
		return err
	}
	fmt.Printf("%d volumes are consistent\n", len(datasets))
	return nil
}
