package version

import (
	"strings"
	"testing"
)

func restore(t *testing.T) {
	t.Helper()
	v, c := Version, Commit
	t.Cleanup(func() { Version, Commit = v, c })
}

func TestGetLinkTimeValues(t *testing.T) {
	restore(t)
	Version = "1.4.0"
	Commit = "0123456789abcdef"

	info := Get()
	if info.Version != "1.4.0" {
		t.Errorf("Version = %q, want 1.4.0", info.Version)
	}
	if info.Commit != "0123456" {
		t.Errorf("Commit = %q, want 0123456", info.Commit)
	}
	if !strings.HasPrefix(Short(), "1.4.0-0123456") {
		t.Errorf("Short() = %q", Short())
	}
}

func TestInfoString(t *testing.T) {
	tests := []struct {
		info Info
		want string
	}{
		{Info{Version: "dev"}, "dev"},
		{Info{Version: "1.0.0", Commit: "abc1234"}, "1.0.0-abc1234"},
		{Info{Version: "1.0.0", Commit: "abc1234", Dirty: true}, "1.0.0-abc1234-dirty"},
		{Info{Version: "1.0.0", Dirty: true}, "1.0.0-dirty"},
	}
	for _, tc := range tests {
		t.Run(tc.want, func(t *testing.T) {
			if got := tc.info.String(); got != tc.want {
				t.Errorf("String() = %q, want %q", got, tc.want)
			}
		})
	}
}
