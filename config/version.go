package config

import (
	"fmt"
	"sort"

	"github.com/Masterminds/semver/v3"
)

// HostCompatible reports whether a host version satisfies a config's
// host_compat constraint. An empty constraint accepts any host.
func HostCompatible(constraint, hostVersion string) (bool, error) {
	if constraint == "" {
		return true, nil
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("invalid host_compat constraint %q: %w", constraint, err)
	}
	v, err := semver.NewVersion(hostVersion)
	if err != nil {
		return false, fmt.Errorf("invalid host version %q: %w", hostVersion, err)
	}
	return c.Check(v), nil
}

// ResolveVersion picks the highest version from available that satisfies
// the constraint. "latest" matches anything. Entries that are not valid
// semver are skipped.
func ResolveVersion(constraint string, available []string) (string, error) {
	raw := constraint
	if constraint == "latest" {
		raw = ">= 0"
	}
	c, err := semver.NewConstraint(raw)
	if err != nil {
		return "", fmt.Errorf("invalid version constraint %q: %w", constraint, err)
	}

	var valid []*semver.Version
	for _, vStr := range available {
		v, err := semver.NewVersion(vStr)
		if err != nil {
			continue
		}
		if c.Check(v) {
			valid = append(valid, v)
		}
	}

	if len(valid) == 0 {
		return "", fmt.Errorf("no version satisfies constraint %q", constraint)
	}

	sort.Sort(semver.Collection(valid))
	return valid[len(valid)-1].Original(), nil
}
