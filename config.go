package osmlr2graph

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"
)

// Config Run configuration loaded from a JSON file
type Config struct {
	Graph GraphConfig `json:"graph"`
}

// GraphConfig Location and search settings of the graph tile store
type GraphConfig struct {
	TileDir            string  `json:"tile_dir"`
	SearchRadiusMeters float64 `json:"search_radius_meters"`
}

// LoadConfig reads configuration from JSON file
func LoadConfig(fileName string) (*Config, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrap(err, "File open")
	}
	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "Can't parse configuration")
	}
	if cfg.Graph.TileDir == "" {
		return nil, errors.New("Configuration must provide graph.tile_dir")
	}
	if cfg.Graph.SearchRadiusMeters == 0 {
		cfg.Graph.SearchRadiusMeters = DefaultSearchRadiusMeters
	}
	return cfg, nil
}
