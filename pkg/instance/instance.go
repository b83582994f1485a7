package instance

import "github.com/angelmondragon/shopfront-backend/pkg/env"

// ID identifies the running process in logs. DYNO wins over HOSTNAME.
func ID() string {
	return env.Get("DYNO", env.Get("HOSTNAME", "local"))
}
