package instance

import "github.com/angelmondragon/rocketcart/pkg/env"

// GetID returns the process instance identifier used to tag logs.
func GetID() string {
	return env.Get("ROCKETCART_INSTANCE_ID", env.Get("HOSTNAME", "local"))
}
