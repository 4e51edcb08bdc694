package geo

import "time"

// Config defines the travel-time model and freshness thresholds.
type Config struct {
	EmergencySpeedKmh float64 `json:"emergency_speed_kmh"`
	GeneralSpeedKmh   float64 `json:"general_speed_kmh"`
	PointFreshnessMin int     `json:"point_freshness_min"`
	ListFreshnessMin  int     `json:"list_freshness_min"`
}

// SetDefaults fills zero values with the defaults used throughout testing.
func (c *Config) SetDefaults() {
	if c.EmergencySpeedKmh <= 0 {
		c.EmergencySpeedKmh = 60
	}
	if c.GeneralSpeedKmh <= 0 {
		c.GeneralSpeedKmh = 40
	}
	if c.PointFreshnessMin <= 0 {
		c.PointFreshnessMin = 5
	}
	if c.ListFreshnessMin <= 0 {
		c.ListFreshnessMin = 10
	}
}

func (c Config) pointFreshness() time.Duration {
	return time.Duration(c.PointFreshnessMin) * time.Minute
}

func (c Config) listFreshness() time.Duration {
	return time.Duration(c.ListFreshnessMin) * time.Minute
}
