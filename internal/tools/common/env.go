package common

import (
	"fmt"
	"os"
)

// RequireEnv fetches a mandatory environment variable.
func RequireEnv(key string) (string, error) {
	v := os.Getenv(key)
	if v == "" {
		return "", fmt.Errorf("%s is not set", key)
	}
	return v, nil
}
