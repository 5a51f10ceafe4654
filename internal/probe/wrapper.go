// pattern: Functional Core

package probe

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/magiconair/properties"

	"gradleusage/internal/discovery"
)

// distributionFile matches the archive name at the end of distributionUrl,
// e.g. gradle-8.5-bin.zip or gradle-7.0-rc-1-all.zip.
var distributionFile = regexp.MustCompile(`gradle-([^/]+)-(?:bin|all)\.zip$`)

// WrapperProbe reads the version pinned in gradle-wrapper.properties instead
// of asking Gradle. It never starts a process.
type WrapperProbe struct{}

// Version implements Probe.
func (WrapperProbe) Version(ctx context.Context, projectRoot string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	path := filepath.Join(projectRoot, discovery.WrapperProperties)
	props, err := properties.LoadFile(path, properties.UTF8)
	if err != nil {
		return "", fmt.Errorf("load wrapper properties: %w", err)
	}
	url, ok := props.Get("distributionUrl")
	if !ok || url == "" {
		return "", fmt.Errorf("%s: distributionUrl not set", path)
	}
	return VersionFromDistributionURL(url)
}

// VersionFromDistributionURL extracts the Gradle version from a wrapper
// distributionUrl such as https://services.gradle.org/distributions/gradle-8.5-bin.zip.
func VersionFromDistributionURL(url string) (string, error) {
	m := distributionFile.FindStringSubmatch(url)
	if m == nil {
		return "", fmt.Errorf("unrecognized distributionUrl %q", url)
	}
	return m[1], nil
}
