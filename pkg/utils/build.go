// Build information is injected with -ldflags "-X github.com/nobletooth/chain/pkg/utils.Version=..." at build time.
// CAUTION: This file shouldn't be removed or else the build flags wouldn't have anything to set.

package utils

import (
	"log/slog"
	"strconv"
	"time"
)

var (
	TestMode   string // Should be "true" for test builds; makes invariant violations panic.
	IsTestMode bool
	Version    string
	Commit     string
	BuildTime  string
	StartTime  time.Time
)

func init() {
	StartTime = time.Now()

	// If build info is not set, make that clear.
	if Version == "" {
		Version = "v0.0.0-unknown"
	}
	if Commit == "" {
		Commit = "unknown"
	}
	if BuildTime == "" {
		BuildTime = "unknown"
	}
	if len(TestMode) > 0 {
		if isTestMode, err := strconv.ParseBool(TestMode); err == nil {
			IsTestMode = isTestMode
		} else {
			slog.Warn("Failed to parse TestMode build flag, defaulting to false", "error", err)
		}
	}
}

// Uptime reports how long the process has been running.
func Uptime() time.Duration {
	return time.Since(StartTime).Round(time.Second)
}
