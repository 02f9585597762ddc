package env

import (
	"os"
)

// Debug reports whether debug logging was requested through the environment.
func Debug() bool {
	return os.Getenv("DEBUG") != "" || os.Getenv("REFLOW_DEBUG") != ""
}
