// Package installer detects the host platform and ensures the container
// runtime and its compose tool are installed, enabled, and proven to execute
// workloads.
package installer

import (
	"fmt"
	"os"
	"strings"
)

// Platform identifies the host distribution family, which selects the
// package mechanism used for runtime installation.
type Platform string

const (
	PlatformDebian Platform = "debian"
	PlatformRHEL   Platform = "rhel"
)

const osReleasePath = "/etc/os-release"

// DetectPlatform identifies the host distribution family from
// /etc/os-release. An unsupported platform is a fatal error: nothing later
// in the run can succeed without a known package mechanism.
func DetectPlatform() (Platform, error) {
	data, err := os.ReadFile(osReleasePath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", osReleasePath, err)
	}
	return detectFrom(data)
}

func detectFrom(data []byte) (Platform, error) {
	id, idLike := parseOSRelease(data)

	for _, candidate := range append([]string{id}, idLike...) {
		switch candidate {
		case "debian", "ubuntu":
			return PlatformDebian, nil
		case "rhel", "centos", "fedora", "rocky", "almalinux", "amzn":
			return PlatformRHEL, nil
		}
	}
	return "", fmt.Errorf("unsupported platform %q (supported families: debian, rhel)", id)
}

// parseOSRelease extracts the ID and ID_LIKE fields. Values may be quoted;
// ID_LIKE is a space-separated list of related distributions.
func parseOSRelease(data []byte) (id string, idLike []string) {
	for _, line := range strings.Split(string(data), "\n") {
		key, value, found := strings.Cut(strings.TrimSpace(line), "=")
		if !found {
			continue
		}
		value = strings.Trim(value, `"'`)
		switch key {
		case "ID":
			id = value
		case "ID_LIKE":
			idLike = strings.Fields(value)
		}
	}
	return id, idLike
}
