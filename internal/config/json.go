package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/vibevault/vibevault/internal/flagx"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations are
// given in seconds. Zero values leave the current Config value untouched.
type JsonConfig struct {
	DatabasePath    string `json:"database_path"`
	AutoLockSeconds int    `json:"auto_lock_seconds"`
	MTU             int    `json:"mtu"`
	DeviceName      string `json:"device_name"`
}

// parseJson overlays Config with values loaded from a JSON file named via
// the -c/-config flags. Missing flag means no JSON is loaded. Read or
// unmarshal errors panic (caller may recover).
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

	if jc.DatabasePath != "" {
		cfg.DatabasePath = jc.DatabasePath
	}
	if jc.AutoLockSeconds > 0 {
		cfg.AutoLockTimeout = time.Duration(jc.AutoLockSeconds) * time.Second
	}
	if jc.MTU > 0 {
		cfg.MTU = jc.MTU
	}
	if jc.DeviceName != "" {
		cfg.DeviceName = jc.DeviceName
	}
}
