package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mkravets/daybook/internal/flagx"
	"github.com/mkravets/daybook/internal/timex"
)

// JsonConfig is a DTO used only for reading JSON configuration files. It uses
// timex.Duration for interval fields, which allows parsing both string values
// such as "5s" and integer nanoseconds. After unmarshalling, its fields are
// copied into the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddr  string         `json:"endpoint_addr"`
	DatabaseDSN   string         `json:"database_dsn"`
	ShutdownGrace timex.Duration `json:"shutdown_grace"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance. The file path comes from the -c or -config command-line
// flags; if neither is set, no JSON file is loaded. If the file cannot be
// read or contains invalid JSON, the function panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	config.EndpointAddr = c.EndpointAddr
	config.DatabaseDSN = c.DatabaseDSN
	config.ShutdownGrace = time.Duration(c.ShutdownGrace.Duration)
}
