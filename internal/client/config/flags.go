package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/lifedash/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the backend HTTP endpoint (default from Config)
//	-d string   path to the local SQLite database (default from Config)
//	-r string   redis address for change propagation (default from Config)
//	-p int      local change poll interval in seconds (default from Config)
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	// Filter args to include only those handled here.
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-r", "-p"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "base URL of the backend server")
	fs.StringVar(&cfg.DatabaseDSN, "d", cfg.DatabaseDSN, "path to the local database")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address for change propagation")
	pollInterval := fs.Int("p", int(cfg.PollInterval.Seconds()), "local change poll interval (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.PollInterval = time.Duration(*pollInterval) * time.Second
}
