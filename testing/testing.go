//coverage:ignore file

// Package testing moves tests to the module root so that relative asset
// paths such as assets/status_messages.yml resolve the same way they do for
// the running service. Import it for its side effect only.
package testing

import (
	"os"
	"path/filepath"
	"runtime"
)

func init() {
	_, filename, _, _ := runtime.Caller(0)
	if err := os.Chdir(moduleRoot(filepath.Dir(filename))); err != nil {
		panic(err)
	}
}

// moduleRoot walks up from dir to the nearest directory holding a go.mod
func moduleRoot(dir string) string {
	for d := dir; ; d = filepath.Dir(d) {
		if _, err := os.Stat(filepath.Join(d, "go.mod")); err == nil {
			return d
		}
		if parent := filepath.Dir(d); parent == d {
			return filepath.Join(dir, "..")
		}
	}
}
