package version

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GitCommit)
	assert.True(t, strings.HasPrefix(info.GoVersion, "go"))
	assert.Contains(t, info.Platform, "/")
}

func TestStringSummary(t *testing.T) {
	info := &BuildInfo{
		Version:   "1.2.3",
		GitCommit: "0123456789abcdef",
		GoVersion: "go1.24.4",
		Platform:  "linux/amd64",
	}

	s := info.String()
	assert.Contains(t, s, "minipack 1.2.3")
	assert.Contains(t, s, "0123456", "commit is shortened")
	assert.NotContains(t, s, "0123456789abcdef")
}

func TestVersionFallsBackToDev(t *testing.T) {
	old := Version
	defer func() { Version = old }()

	Version = "v2.0.0"
	assert.Equal(t, "v2.0.0", GetVersion())
}
