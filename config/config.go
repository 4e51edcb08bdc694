package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/medfleet/dispatch/api"
	"github.com/medfleet/dispatch/core/dispatch"
	"github.com/medfleet/dispatch/core/geo"
	"github.com/medfleet/dispatch/core/scheduler"
	"github.com/medfleet/dispatch/core/scoring"
	"github.com/medfleet/dispatch/infra/broadcast"
	"github.com/medfleet/dispatch/infra/metrics"
)

type Config struct {
	Geo       geo.Config       `json:"geo"`
	Scoring   scoring.Weights  `json:"scoring"`
	Dispatch  dispatch.Config  `json:"dispatch"`
	Scheduler scheduler.Config `json:"scheduler"`
	API       api.Config       `json:"api"`
	Broadcast broadcast.Config `json:"broadcast"`
	Metrics   metrics.Config   `json:"metrics"`
	Logging   LoggingConfig    `json:"logging"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("EMS_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "ems_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Geo.SetDefaults()
	cfg.Dispatch.SetDefaults()
	cfg.Scheduler.SetDefaults()
	cfg.API.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
