package registry

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/intentlab/fanout-cli/internal/model"
)

// LoadClustersFromFile reads a YAML sequence of cluster definitions from the
// given path. Sequence order is preserved, so the file controls cluster
// priority directly.
func LoadClustersFromFile(path string) ([]model.ClusterDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read cluster definitions")
	}

	var clusters []model.ClusterDefinition
	if err := yaml.Unmarshal(data, &clusters); err != nil {
		return nil, eris.Wrap(err, "registry: unmarshal cluster definitions")
	}
	if len(clusters) == 0 {
		return nil, eris.Errorf("registry: no cluster definitions in %s", path)
	}

	for i, c := range clusters {
		if c.Name == "" {
			return nil, eris.Errorf("registry: cluster definition %d has no name", i)
		}
		if len(c.Keywords) == 0 {
			return nil, eris.Errorf("registry: cluster %q has no keywords", c.Name)
		}
	}

	return clusters, nil
}
