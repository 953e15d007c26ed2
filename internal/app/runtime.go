package app

import (
	"os"
	"strings"
)

const testModeEnv = "STOCKROOM_TEST_MODE"

// InTestMode reports whether binaries should return before connecting to
// Redis or the backend.
func InTestMode() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(testModeEnv))) {
	case "1", "true", "yes":
		return true
	}
	return false
}
