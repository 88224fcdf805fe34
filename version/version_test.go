package version

import (
	"strings"
	"testing"
)

func TestVersion_Default(t *testing.T) {
	// Version may be set by ldflags in CI, so just check it's not empty
	if Version == "" {
		t.Error("Version should not be empty")
	}
}

func TestFull_DefaultVersion(t *testing.T) {
	origVersion := Version
	origCommit := GitCommit
	origBuildTime := BuildTime
	defer func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}()

	Version = "1.0.0"
	GitCommit = ""
	BuildTime = ""

	result := Full()
	if result != "1.0.0" {
		t.Errorf("Full() = %q, want %q", result, "1.0.0")
	}
}

func TestFull_WithCommit(t *testing.T) {
	origVersion := Version
	origCommit := GitCommit
	origBuildTime := BuildTime
	defer func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}()

	Version = "1.0.0"
	GitCommit = "abc1234"
	BuildTime = ""

	result := Full()
	if result != "1.0.0-abc1234" {
		t.Errorf("Full() = %q, want %q", result, "1.0.0-abc1234")
	}
}

func TestFull_WithCommitAndBuildTime(t *testing.T) {
	origVersion := Version
	origCommit := GitCommit
	origBuildTime := BuildTime
	defer func() {
		Version = origVersion
		GitCommit = origCommit
		BuildTime = origBuildTime
	}()

	Version = "1.0.0"
	GitCommit = "abc1234"
	BuildTime = "2026-01-01T00:00:00Z"

	result := Full()
	if !strings.Contains(result, "1.0.0-abc1234") {
		t.Errorf("Full() = %q, should contain version and commit", result)
	}
	if !strings.Contains(result, "2026-01-01T00:00:00Z") {
		t.Errorf("Full() = %q, should contain build time", result)
	}
}
