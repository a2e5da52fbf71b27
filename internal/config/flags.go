package config

import (
	"flag"
	"os"
	"time"

	"github.com/vibevault/vibevault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path to the vault database file
//	-t int      auto-lock timeout in seconds
//	-m int      sync frame size (MTU) in bytes
//	-n string   device name announced during pairing
//
// Args are filtered through flagx.FilterArgs so unknown flags owned by other
// components do not break parsing.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-t", "-m", "-n"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the vault database file")
	autoLockSecs := fs.Int("t", int(cfg.AutoLockTimeout.Seconds()), "auto-lock timeout (in seconds)")
	fs.IntVar(&cfg.MTU, "m", cfg.MTU, "sync frame size in bytes")
	fs.StringVar(&cfg.DeviceName, "n", cfg.DeviceName, "device name announced during pairing")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.AutoLockTimeout = time.Duration(*autoLockSecs) * time.Second
}
