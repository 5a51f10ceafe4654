package discovery

import (
	"os"
	"path/filepath"
	"testing"
)

// writeFiles creates each relative path under dir with empty content.
func writeFiles(t *testing.T, dir string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(dir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("MkdirAll(%s): %v", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, nil, 0644); err != nil {
			t.Fatalf("WriteFile(%s): %v", path, err)
		}
	}
}

func TestIsProjectRoot(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  bool
	}{
		{"groovy settings", []string{"settings.gradle"}, true},
		{"kotlin settings", []string{"settings.gradle.kts"}, true},
		{"wrapper only", []string{"gradle/wrapper/gradle-wrapper.properties"}, true},
		{"settings and wrapper", []string{"settings.gradle", "gradle/wrapper/gradle-wrapper.properties"}, true},
		{"build file only", []string{"build.gradle"}, false},
		{"wrapper jar without properties", []string{"gradle/wrapper/gradle-wrapper.jar"}, false},
		{"settings in subdirectory", []string{"sub/settings.gradle"}, false},
		{"empty", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, tt.files...)
			if got := IsProjectRoot(dir); got != tt.want {
				t.Errorf("IsProjectRoot() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasWrapper(t *testing.T) {
	dir := t.TempDir()
	if HasWrapper(dir) {
		t.Error("HasWrapper() = true for empty directory")
	}
	writeFiles(t, dir, WrapperProperties)
	if !HasWrapper(dir) {
		t.Error("HasWrapper() = false with wrapper properties present")
	}
}

func TestMarkers(t *testing.T) {
	markers := Markers()
	want := []string{"settings.gradle", "settings.gradle.kts", filepath.Join("gradle", "wrapper", "gradle-wrapper.properties")}
	if len(markers) != len(want) {
		t.Fatalf("Markers() = %v, want %v", markers, want)
	}
	for i := range want {
		if markers[i] != want[i] {
			t.Errorf("Markers()[%d] = %q, want %q", i, markers[i], want[i])
		}
	}
}
