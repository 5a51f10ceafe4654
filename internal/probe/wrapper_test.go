package probe

import (
	"context"
	"testing"
)

func TestVersionFromDistributionURL(t *testing.T) {
	tests := []struct {
		url     string
		want    string
		wantErr bool
	}{
		{"https://services.gradle.org/distributions/gradle-8.5-bin.zip", "8.5", false},
		{"https://services.gradle.org/distributions/gradle-7.4.2-all.zip", "7.4.2", false},
		{"https://services.gradle.org/distributions/gradle-7.0-rc-1-bin.zip", "7.0-rc-1", false},
		{"https://my-gradle-mirror.example/dist/gradle-6.9.4-bin.zip", "6.9.4", false},
		{"file:///opt/gradle/gradle-8.0-bin.zip", "8.0", false},
		{"https://example.com/custom-distribution.zip", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := VersionFromDistributionURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("VersionFromDistributionURL() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("VersionFromDistributionURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestWrapperProbe_ReadsDistributionURL(t *testing.T) {
	content := `distributionBase=GRADLE_USER_HOME
distributionPath=wrapper/dists
distributionUrl=https\://services.gradle.org/distributions/gradle-7.6-bin.zip
networkTimeout=10000
zipStoreBase=GRADLE_USER_HOME
zipStorePath=wrapper/dists
`
	dir := newProject(t, true, content)

	got, err := WrapperProbe{}.Version(context.Background(), dir)
	if err != nil {
		t.Fatalf("Version() error = %v", err)
	}
	if got != "7.6" {
		t.Errorf("Version() = %q, want %q", got, "7.6")
	}
}

func TestWrapperProbe_MissingDistributionURL(t *testing.T) {
	dir := newProject(t, true, "distributionBase=GRADLE_USER_HOME\n")

	if _, err := (WrapperProbe{}).Version(context.Background(), dir); err == nil {
		t.Error("Version() error = nil, want error for missing distributionUrl")
	}
}

func TestWrapperProbe_ThroughResolver(t *testing.T) {
	corrupt := newProject(t, true, "distributionUrl=not-a-gradle-archive\n")
	r := NewResolver(WrapperProbe{}, 0, nil)

	if got := r.Resolve(context.Background(), corrupt); got != Failed {
		t.Errorf("Resolve() = %q, want %q for corrupted wrapper metadata", got, Failed)
	}
}
