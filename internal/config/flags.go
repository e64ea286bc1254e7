package config

// Overrides carries command-line values that take priority over file and
// environment settings. Zero values leave the config untouched.
type Overrides struct {
	Debug   bool
	LogFile string
	Layout  string
	Workers int
}

// apply applies CLI flag overrides to the config.
func (o Overrides) apply(cfg *Config) {
	if o.Debug {
		cfg.Logging.Level = "debug"
	}
	if o.LogFile != "" {
		cfg.Logging.LogFile = o.LogFile
	}
	if o.Layout != "" {
		cfg.Convert.Layout = o.Layout
	}
	if o.Workers > 0 {
		cfg.Batch.Workers = o.Workers
	}
}
