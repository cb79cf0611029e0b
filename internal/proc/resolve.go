package proc

import (
	"errors"
	"os"
	"os/exec"
)

// ErrExecutableNotFound is returned when no resolution tier yields an
// existing executable.
var ErrExecutableNotFound = errors.New("executable not found")

// ResolveExecutable locates an external tool. Resolution order: the
// configured path, then the environment override, then the system search
// path. The first existing candidate wins.
func ResolveExecutable(configured, envVar, name string) (string, error) {
	if configured != "" {
		if fi, err := os.Stat(configured); err == nil && !fi.IsDir() {
			return configured, nil
		}
	}

	if env := os.Getenv(envVar); env != "" {
		if fi, err := os.Stat(env); err == nil && !fi.IsDir() {
			return env, nil
		}
	}

	if path, err := exec.LookPath(name); err == nil {
		return path, nil
	}

	return "", ErrExecutableNotFound
}
