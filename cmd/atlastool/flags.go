package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

// addCommonAtlasFlags registers the options every atlas command built on an
// annotation volume and a region hierarchy shares.
func addCommonAtlasFlags(cmd *cobra.Command) {
	cmd.Flags().String("annotation-path", "",
		"path to the brain annotation volume (nrrd)")
	cmd.Flags().String("hierarchy-path", "",
		"path to the region hierarchy file, e.g. AIBS 1.json")
	_ = cmd.MarkFlagRequired("annotation-path")
	_ = cmd.MarkFlagRequired("hierarchy-path")
}

// existingFilePath validates that path names an existing, readable,
// non-directory file and resolves it to an absolute path.
func existingFilePath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%q does not exist: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%q is a directory, expected a file", path)
	}
	f, err := os.Open(abs)
	if err != nil {
		return "", fmt.Errorf("%q is not readable: %w", path, err)
	}
	_ = f.Close()
	return abs, nil
}

// pathFlag reads a string flag and validates it as an existing file path.
func pathFlag(cmd *cobra.Command, name string) (string, error) {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", err
	}
	return existingFilePath(value)
}
