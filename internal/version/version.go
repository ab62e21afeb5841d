package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Version information for the rsfront CLI.
// These variables can be overridden at build time via -ldflags.
var (
	// Version is the semantic version of the CLI.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with each numeric component highlighted; the
// pre-release suffix stays plain.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := versionMajorColor.Sprint(parts[0]) + "." + versionMinorColor.Sprint(parts[1]) + "." + versionPatchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Banner is the multi-line text printed by `rsfront version`.
func Banner(colored bool) string {
	v := Version
	if colored {
		v = Colored()
	}
	var b strings.Builder
	fmt.Fprintf(&b, "rsfront %s\n", v)
	if c := strings.TrimSpace(GitCommit); c != "" {
		fmt.Fprintf(&b, "commit: %s\n", c)
		if msg := strings.TrimSpace(GitMessage); msg != "" {
			fmt.Fprintf(&b, "message: %s\n", msg)
		}
	}
	if d := strings.TrimSpace(BuildDate); d != "" {
		fmt.Fprintf(&b, "built: %s\n", d)
	}
	return b.String()
}
