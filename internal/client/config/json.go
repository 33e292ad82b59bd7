package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mkravets/daybook/internal/flagx"
	"github.com/mkravets/daybook/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "10s"
// or as integer nanoseconds.
type JsonConfig struct {
	ServerURL      string         `json:"server_url"`
	DatabaseDSN    string         `json:"database_dsn"`
	SyncInterval   timex.Duration `json:"sync_interval"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; if neither
// is set, nothing is loaded. Read or unmarshal errors panic (caller should
// recover if desired).
//
// Intended usage is: defaults -> parseJson -> parseFlags, where later stages
// override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerURL = jc.ServerURL
	cfg.DatabaseDSN = jc.DatabaseDSN
	cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	cfg.RequestTimeout = time.Duration(jc.RequestTimeout.Duration)
}
