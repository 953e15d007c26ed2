// Package testing switches the binaries into test mode when imported for
// side effects from a _test.go file.
package testing

import (
	"os"
	"sync"
)

const testModeEnv = "STOCKROOM_TEST_MODE"

var once sync.Once

// Enable sets the test-mode flag. Importing the package calls it.
func Enable() {
	once.Do(func() {
		_ = os.Setenv(testModeEnv, "1")
	})
}

func init() {
	Enable()
}
