// pattern: Functional Core

package discovery

import (
	"fmt"
	"path/filepath"
)

// Marker files whose presence directly inside a directory makes it a Gradle
// project root.
const (
	SettingsGradle    = "settings.gradle"
	SettingsGradleKts = "settings.gradle.kts"
)

// WrapperProperties is the wrapper metadata file, relative to a project root.
var WrapperProperties = filepath.Join("gradle", "wrapper", "gradle-wrapper.properties")

// Markers returns the marker paths checked by IsProjectRoot, in check order.
func Markers() []string {
	return []string{SettingsGradle, SettingsGradleKts, WrapperProperties}
}

// ScanError reports a scan root that could not be traversed.
type ScanError struct {
	Root string
	Err  error
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan %s: %v", e.Root, e.Err)
}

func (e *ScanError) Unwrap() error {
	return e.Err
}
