package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds parameters for the fleet simulator.
type Config struct {
	Broker      string  `json:"broker" yaml:"broker"`
	TopicPrefix string  `json:"topic_prefix" yaml:"topic_prefix"`
	FleetSize   int     `json:"fleet_size" yaml:"fleet_size"`
	TickSeconds int     `json:"tick_seconds" yaml:"tick_seconds"`
	CenterLat   float64 `json:"center_lat" yaml:"center_lat"`
	CenterLon   float64 `json:"center_lon" yaml:"center_lon"`
	RadiusKm    float64 `json:"radius_km" yaml:"radius_km"`
	Seed        int64   `json:"seed" yaml:"seed"`
}

// SetDefaults fills zero values. The default service area is central New
// Delhi, matching the engine's demo fixtures.
func (c *Config) SetDefaults() {
	if c.Broker == "" {
		c.Broker = "tcp://localhost:1883"
	}
	if c.TopicPrefix == "" {
		c.TopicPrefix = "ems"
	}
	if c.FleetSize <= 0 {
		c.FleetSize = 10
	}
	if c.TickSeconds <= 0 {
		c.TickSeconds = 5
	}
	if c.CenterLat == 0 && c.CenterLon == 0 {
		c.CenterLat = 28.6139
		c.CenterLon = 77.209
	}
	if c.RadiusKm <= 0 {
		c.RadiusKm = 15
	}
}

// LoadConfig loads a Config from a JSON or YAML file.
func LoadConfig(path string) (Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	ext := strings.ToLower(filepath.Ext(path))
	var cfg Config
	switch ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return Config{}, fmt.Errorf("unsupported config format: %s", ext)
	}
	cfg.SetDefaults()
	return cfg, err
}
