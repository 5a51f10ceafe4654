// pattern: Functional Core

package discovery

import (
	"os"
	"path/filepath"
)

// IsProjectRoot reports whether dir directly contains settings.gradle,
// settings.gradle.kts or gradle/wrapper/gradle-wrapper.properties.
// Files are only checked for existence, never parsed.
func IsProjectRoot(dir string) bool {
	for _, marker := range Markers() {
		if exists(filepath.Join(dir, marker)) {
			return true
		}
	}
	return false
}

// HasWrapper reports whether dir contains the wrapper properties file.
func HasWrapper(dir string) bool {
	return exists(filepath.Join(dir, WrapperProperties))
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
