package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/BlueBrain/atlas-commons/pkg/nrrd"
	"github.com/BlueBrain/atlas-commons/pkg/vectorfield"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Unit-normalize a direction-vector or quaternion field",
	Long: `Scales every vector of the field to unit Euclidean norm. Zero vectors
cannot define a direction, so they come out as all-NaN vectors.`,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().String("input-path", "",
		"path to the vector field volume (nrrd with a component axis)")
	normalizeCmd.Flags().String("output-path", "normalized.nrrd",
		"where to write the normalized field")
	_ = normalizeCmd.MarkFlagRequired("input-path")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	inputPath, err := pathFlag(cmd, "input-path")
	if err != nil {
		return err
	}
	outputPath, _ := cmd.Flags().GetString("output-path")
	logInvocation(cmd)

	file, err := nrrd.ReadFile(inputPath)
	if err != nil {
		return err
	}
	field, err := file.Float64Volume()
	if err != nil {
		return err
	}
	if field.Components < 2 {
		return fmt.Errorf("%s holds a scalar volume, expected a vector field", inputPath)
	}
	if err := vectorfield.Normalize(field.Raw, field.Components); err != nil {
		return err
	}
	if err := nrrd.WriteFile(outputPath, field, nrrd.EncodingGzip); err != nil {
		return err
	}
	logger.Info("wrote normalized field",
		zap.String("path", outputPath),
		zap.Int("components", field.Components))
	return nil
}
