package instance

import "os"

// GetID identifies this worker process in logs and lock values. It prefers
// YUMHUB_WORKER_ID, then the host name.
func GetID() string {
	if id := os.Getenv("YUMHUB_WORKER_ID"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "worker-0"
}
