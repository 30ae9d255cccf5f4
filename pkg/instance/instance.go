// Package instance names the running process in logs and cron lock ownership.
package instance

import (
	"os"

	"github.com/afrifood/afrifood-backend/pkg/env"
)

// ID prefers an explicit instance id, then the platform dyno name, then the
// host name. role is used when none of them is available.
func ID(role string) string {
	if id := env.First("AFRIFOOD_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return role + "-0"
}
