package config

import (
	"flag"
	"os"
	"time"

	"github.com/mkravets/daybook/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":5000")
//	-f string   path to the SQLite database file
//	-g int      shutdown grace period, seconds
//
// The function first filters os.Args to only the flags it recognizes using
// flagx.FilterArgs, avoiding collisions with other components.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-f", "-g"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "f", config.DatabaseDSN, "path to the database file")
	shutdownGrace := fs.Int("g", int(config.ShutdownGrace.Seconds()), "shutdown grace period (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.ShutdownGrace = time.Duration(*shutdownGrace) * time.Second
}
