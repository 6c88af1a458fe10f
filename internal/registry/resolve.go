package registry

import (
	"context"

	"go.uber.org/zap"

	"github.com/intentlab/fanout-cli/internal/model"
	"github.com/intentlab/fanout-cli/pkg/notion"
)

// Resolve picks the cluster definitions for a run. A configured Notion
// database wins, then a local definitions file, then the embedded defaults.
// Load failures are returned rather than silently falling through, so a
// misconfigured source stops the run before any spend happens. An empty
// Notion database is the one exception: it falls back with a warning.
func Resolve(ctx context.Context, client notion.Client, dbID, path string) ([]model.ClusterDefinition, error) {
	if client != nil && dbID != "" {
		clusters, err := LoadClusterRegistry(ctx, client, dbID)
		if err != nil {
			return nil, err
		}
		if len(clusters) > 0 {
			zap.L().Info("registry: cluster definitions loaded from notion",
				zap.Int("clusters", len(clusters)),
			)
			return clusters, nil
		}
		zap.L().Warn("registry: notion cluster database has no usable definitions, falling back",
			zap.String("db_id", dbID),
		)
	}

	if path != "" {
		clusters, err := LoadClustersFromFile(path)
		if err != nil {
			return nil, err
		}
		zap.L().Info("registry: cluster definitions loaded from file",
			zap.String("path", path),
			zap.Int("clusters", len(clusters)),
		)
		return clusters, nil
	}

	return DefaultClusters(), nil
}
