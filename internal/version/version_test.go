package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestBanner(t *testing.T) {
	origVersion, origCommit, origMessage, origDate := Version, GitCommit, GitMessage, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, GitMessage, BuildDate = origVersion, origCommit, origMessage, origDate
	})

	Version = "1.2.3"
	GitCommit = "abc123def456"
	GitMessage = ""
	BuildDate = "2024-01-15T10:30:00Z"

	got := Banner(false)
	want := "rsfront 1.2.3\ncommit: abc123def456\nbuilt: 2024-01-15T10:30:00Z\n"
	if got != want {
		t.Errorf("Banner = %q, want %q", got, want)
	}

	GitCommit, BuildDate = "", ""
	if got := Banner(false); got != "rsfront 1.2.3\n" {
		t.Errorf("Banner without optional fields = %q", got)
	}
}

func TestColoredKeepsSuffix(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = origVersion, origNoColor })

	color.NoColor = false
	Version = "0.4.1-rc1"
	got := Colored()
	if !strings.HasSuffix(got, "-rc1") || !strings.Contains(got, "\x1b[") {
		t.Errorf("Colored = %q", got)
	}

	Version = "dev"
	if got := Colored(); got != "dev" {
		t.Errorf("Colored(dev) = %q", got)
	}
}
