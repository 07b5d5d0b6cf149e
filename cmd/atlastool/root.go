package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbosity int

	logger *zap.Logger
)

// rootCmd is the base command of the atlastool CLI.
var rootCmd = &cobra.Command{
	Use:   "atlastool",
	Short: "Brain-atlas volume utilities",
	Long: `atlastool bundles shared brain-atlas operations:

  layers      build a layered volume from an annotation and a region hierarchy
  mask        build the boolean mask of a region identified by acronym
  check       check shape/voxel-size/offset consistency across volumes
  normalize   unit-normalize a direction-vector or quaternion field
  split       split a volume into hemispheres along the z middle plane
  slices      save grayscale slice previews of a volume`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initLogger()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v",
		"use -v for info and -vv for debug output, defaults to warnings only")
	rootCmd.AddCommand(layersCmd, maskCmd, checkCmd, normalizeCmd, splitCmd, slicesCmd)
}

// initLogger maps the counting verbose flag onto zap levels:
// 0 warn, 1 info, 2 and above debug.
func initLogger() error {
	config := zap.NewProductionConfig()
	switch {
	case verbosity <= 0:
		config.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case verbosity == 1:
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	var err error
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// logInvocation records the command and the flags it was invoked with.
func logInvocation(cmd *cobra.Command) {
	fields := []zap.Field{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		fields = append(fields, zap.String(f.Name, f.Value.String()))
	})
	logger.Info("running "+cmd.Name(), fields...)
}
