// Package config handles process-level configuration for the sync server,
// including defaults, JSON overlay, and command-line flags.
//
// Display-identity rules (the nickname template, tag mappings and so on) are
// not part of this package; they live in their own YAML document handled by
// plugincfg.
package config

// Config holds runtime settings for the mumble-sync server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the host-facing HTTP endpoint.
//   - PluginConfigPath: path to the YAML document with display-identity rules.
//   - DatabaseDSN: optional PostgreSQL DSN override. When empty, the DSN is
//     read from the environment variable named by the plugin configuration's
//     StorageLocator.
type Config struct {
	EndpointAddrHTTP string
	PluginConfigPath string
	DatabaseDSN      string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8484"
	c.PluginConfigPath = "mumble-sync.yaml"
	c.DatabaseDSN = ""
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
