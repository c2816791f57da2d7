package config

import (
	"os"
	"strings"
)

const envFileName = ".env"

// loadEnvFile seeds the environment from a local .env file. Variables
// already set in the real environment win.
func loadEnvFile() {
	data, err := os.ReadFile(envFileName)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		val := strings.Trim(strings.TrimSpace(parts[1]), "\"")
		if os.Getenv(key) == "" {
			_ = os.Setenv(key, val)
		}
	}
}
