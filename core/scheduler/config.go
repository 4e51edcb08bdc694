package scheduler

// Config defines the review cadence loaded from configuration.
type Config struct {
	Enabled         bool `json:"enabled"`
	IntervalMinutes int  `json:"interval_minutes"`
	WindowMinutes   int  `json:"window_minutes"`
}

// SetDefaults fills zero values.
func (c *Config) SetDefaults() {
	if c.IntervalMinutes <= 0 {
		c.IntervalMinutes = 5
	}
	if c.WindowMinutes <= 0 {
		c.WindowMinutes = 60
	}
}
