package config

import (
	"flag"
	"os"

	"github.com/evetools/mumble-sync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8484")
//	-f string   path to the plugin configuration YAML
//	-d string   PostgreSQL DSN override
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.PluginConfigPath, "f", config.PluginConfigPath, "path to plugin configuration YAML")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN override")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
