package instance

import "os"

// GetID identifies this server process in logs. STOREFRONT_INSTANCE_ID wins,
// then the platform's DYNO variable, then "local".
func GetID() string {
	if id := os.Getenv("STOREFRONT_INSTANCE_ID"); id != "" {
		return id
	}
	if id := os.Getenv("DYNO"); id != "" {
		return id
	}
	return "local"
}
