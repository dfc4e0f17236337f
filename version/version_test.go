package version

import (
	"runtime/debug"
	"testing"
)

func TestGetUsesLinkedValues(t *testing.T) {
	origVersion, origCommit, origBuildTime := Version, Commit, BuildTime
	defer func() { Version, Commit, BuildTime = origVersion, origCommit, origBuildTime }()

	Version, Commit, BuildTime = "1.2.0", "abcdef1234", "2026-01-02T03:04:05Z"
	info := Get()
	if info.Version != "1.2.0" {
		t.Errorf("expected version 1.2.0, got %q", info.Version)
	}
	if info.Commit != "abcdef1" {
		t.Errorf("expected commit truncated to 7 chars, got %q", info.Commit)
	}
	if info.BuildTime != "2026-01-02T03:04:05Z" {
		t.Errorf("unexpected build time %q", info.BuildTime)
	}
}

func TestFromBuildInfo(t *testing.T) {
	info := Info{Version: "dev"}
	fromBuildInfo(&info, &debug.BuildInfo{
		GoVersion: "go1.26.0",
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "0123456789abcdef"},
			{Key: "vcs.time", Value: "2026-05-01T00:00:00Z"},
			{Key: "vcs.modified", Value: "true"},
		},
	})

	want := Info{Version: "dev", Commit: "0123456", BuildTime: "2026-05-01T00:00:00Z", GoVersion: "go1.26.0", Dirty: true}
	if info != want {
		t.Errorf("expected %+v, got %+v", want, info)
	}
}

func TestFromBuildInfoKeepsLinkedCommit(t *testing.T) {
	info := Info{Commit: "linked"}
	fromBuildInfo(&info, &debug.BuildInfo{Settings: []debug.BuildSetting{{Key: "vcs.revision", Value: "fromvcs"}}})
	if info.Commit != "linked" {
		t.Errorf("expected linked commit to win, got %q", info.Commit)
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		info    Info
		short   string
		full    string
		release bool
	}{
		{Info{Version: "dev"}, "dev", "dev", false},
		{Info{Version: "1.0.0", Commit: "abc1234"}, "1.0.0-abc1234", "1.0.0-abc1234", true},
		{Info{Version: "1.0.0", Commit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty", "1.0.0-abc1234-dirty", false},
		{Info{Version: "1.0.0", BuildTime: "2026-01-01T00:00:00Z", GoVersion: "go1.26.0"}, "1.0.0", "1.0.0 (built 2026-01-01T00:00:00Z) go1.26.0", true},
	}
	for _, tt := range tests {
		if got := tt.info.Short(); got != tt.short {
			t.Errorf("Short() = %q, want %q", got, tt.short)
		}
		if got := tt.info.String(); got != tt.full {
			t.Errorf("String() = %q, want %q", got, tt.full)
		}
		if got := tt.info.IsRelease(); got != tt.release {
			t.Errorf("IsRelease() for %+v = %v, want %v", tt.info, got, tt.release)
		}
	}
}
