// Package layers builds labeled layer sub-volumes and region masks from an
// annotated volume and a region hierarchy, driven by a metadata descriptor.
package layers

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/BlueBrain/atlas-commons/pkg/atlas"
)

// maxLayers is the highest layer count a uint8 layered volume can label.
const maxLayers = 255

// Region selects the region of interest inside the hierarchy.
type Region struct {
	// Name identifies the region in reports and file names.
	Name string `yaml:"name"`

	// Query is passed to RegionMap.Find; a leading '@' makes it a
	// regular expression.
	Query string `yaml:"query"`

	// Attribute is the hierarchy attribute the query runs against,
	// "acronym" or "name".
	Attribute string `yaml:"attribute"`

	// WithDescendants extends every query match with its full subtree.
	WithDescendants bool `yaml:"with_descendants"`
}

// Layers lists the layer definitions, one query per layer name. Layer i of
// the output volume (1-based, in list order) is the set of voxels matched
// by Queries[i-1], restricted to the region of interest.
type Layers struct {
	Names           []string `yaml:"names"`
	Queries         []string `yaml:"queries"`
	Attribute       string   `yaml:"attribute"`
	WithDescendants bool     `yaml:"with_descendants"`
}

// Metadata describes a region of interest and its layers.
type Metadata struct {
	Region Region `yaml:"region"`
	Layers Layers `yaml:"layers"`
}

// LoadMetadata reads and validates a YAML metadata descriptor.
func LoadMetadata(path string) (*Metadata, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading metadata file: %w", err)
	}
	md := &Metadata{}
	if err := yaml.Unmarshal(data, md); err != nil {
		return nil, fmt.Errorf("parsing metadata file: %w", err)
	}
	if err := md.Validate(); err != nil {
		return nil, err
	}
	return md, nil
}

// Validate checks that every mandatory field of the descriptor is present
// and that the layer names and queries line up. It returns a domain error
// describing the first problem found.
func (m *Metadata) Validate() error {
	if m.Region == (Region{}) {
		return atlas.Errorf(`missing "region" metadata block`)
	}
	if missing := missingFields(map[string]string{
		"name":      m.Region.Name,
		"query":     m.Region.Query,
		"attribute": m.Region.Attribute,
	}); len(missing) > 0 {
		return atlas.Errorf(`the "region" block requires "name", "query" and "attribute"; missing: %s`,
			strings.Join(missing, ", "))
	}

	if len(m.Layers.Names) == 0 && len(m.Layers.Queries) == 0 && m.Layers.Attribute == "" {
		return atlas.Errorf(`missing "layers" metadata block`)
	}
	var missing []string
	if len(m.Layers.Names) == 0 {
		missing = append(missing, "names")
	}
	if len(m.Layers.Queries) == 0 {
		missing = append(missing, "queries")
	}
	if m.Layers.Attribute == "" {
		missing = append(missing, "attribute")
	}
	if len(missing) > 0 {
		return atlas.Errorf(`the "layers" block requires "names", "queries" and "attribute"; missing: %s`,
			strings.Join(missing, ", "))
	}
	if len(m.Layers.Names) != len(m.Layers.Queries) {
		return atlas.Errorf(`the values of "names" and "queries" must be lists of the same length, got %d and %d`,
			len(m.Layers.Names), len(m.Layers.Queries))
	}
	if len(m.Layers.Names) > maxLayers {
		return atlas.Errorf("at most %d layers are supported, got %d", maxLayers, len(m.Layers.Names))
	}
	return nil
}

// missingFields returns the sorted-by-declaration names of empty fields.
func missingFields(fields map[string]string) []string {
	var missing []string
	for _, name := range []string{"name", "query", "attribute"} {
		if value, ok := fields[name]; ok && value == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
