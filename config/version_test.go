package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corral-dev/corral-host-sdk/config"
)

func Test_HostCompatible_EmptyConstraintAcceptsAnyHost(t *testing.T) {
	ok, err := config.HostCompatible("", "0.0.1")

	require.NoError(t, err)
	assert.True(t, ok)
}

func Test_HostCompatible_Checks(t *testing.T) {
	tests := []struct {
		name       string
		constraint string
		host       string
		want       bool
	}{
		{"satisfied", ">= 1.0", "1.2.0", true},
		{"satisfied range", ">= 1.0, < 2.0", "1.9.9", true},
		{"host too old", ">= 1.2", "1.1.0", false},
		{"host too new", "< 2.0", "2.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := config.HostCompatible(tt.constraint, tt.host)

			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func Test_HostCompatible_InvalidConstraint(t *testing.T) {
	_, err := config.HostCompatible("not-a-constraint", "1.0.0")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid host_compat constraint")
}

func Test_HostCompatible_InvalidHostVersion(t *testing.T) {
	_, err := config.HostCompatible(">= 1.0", "yesterday")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid host version")
}

func Test_ResolveVersion_LatestPicksHighest(t *testing.T) {
	got, err := config.ResolveVersion("latest", []string{"1.0.0", "1.2.3", "0.9.0"})

	require.NoError(t, err)
	assert.Equal(t, "1.2.3", got)
}

func Test_ResolveVersion_ConstraintFilters(t *testing.T) {
	got, err := config.ResolveVersion("< 1.2", []string{"1.0.0", "1.2.3", "1.1.7"})

	require.NoError(t, err)
	assert.Equal(t, "1.1.7", got)
}

func Test_ResolveVersion_SkipsInvalidEntries(t *testing.T) {
	got, err := config.ResolveVersion("latest", []string{"main", "1.0.0", "sha-deadbeef"})

	require.NoError(t, err)
	assert.Equal(t, "1.0.0", got)
}

func Test_ResolveVersion_PreservesOriginalSpelling(t *testing.T) {
	got, err := config.ResolveVersion("latest", []string{"v1.0.0", "v1.4.0"})

	require.NoError(t, err)
	assert.Equal(t, "v1.4.0", got)
}

func Test_ResolveVersion_NoMatch(t *testing.T) {
	_, err := config.ResolveVersion(">= 2.0", []string{"1.0.0", "1.2.3"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), `no version satisfies constraint ">= 2.0"`)
}

func Test_ResolveVersion_InvalidConstraint(t *testing.T) {
	_, err := config.ResolveVersion("???", []string{"1.0.0"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid version constraint")
}
