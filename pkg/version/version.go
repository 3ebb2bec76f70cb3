package version

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/pterm/pterm"
)

const devVersion = "0.0.0-dev"

// Set with -ldflags "-X github.com/costlocker/reports/pkg/version.Version=...".
var (
	Version   = devVersion
	Commit    = ""
	BuildTime = ""
)

// releasesURL is the GitHub endpoint of the latest release.
var releasesURL = "https://api.github.com/repos/costlocker/reports/releases/latest"

// Info describes the running binary.
type Info struct {
	Version   string
	Commit    string
	BuildTime string
}

// Current returns the linker-provided build details, completed from the VCS
// stamp Go embeds in module builds.
func Current() Info {
	info := Info{Version: Version, Commit: Commit, BuildTime: BuildTime}
	if bi, ok := debug.ReadBuildInfo(); ok {
		info = info.withSettings(bi.Settings)
	}
	if info.Version == "" {
		info.Version = devVersion
	}
	return info
}

// withSettings fills the fields ldflags left empty. A tagged build replaces
// the dev version, suffixed with -dirty for uncommitted changes.
func (i Info) withSettings(settings []debug.BuildSetting) Info {
	vcs := make(map[string]string, len(settings))
	for _, s := range settings {
		vcs[s.Key] = s.Value
	}

	if i.Commit == "" && len(vcs["vcs.revision"]) >= 7 {
		i.Commit = vcs["vcs.revision"][:7]
	}
	if i.BuildTime == "" {
		if ts, err := time.Parse(time.RFC3339, vcs["vcs.time"]); err == nil {
			i.BuildTime = ts.UTC().Format(time.RFC3339)
		}
	}
	if (i.Version == "" || i.Version == devVersion) && vcs["vcs.tag"] != "" {
		i.Version = strings.TrimPrefix(vcs["vcs.tag"], "v")
		if strings.EqualFold(vcs["vcs.modified"], "true") {
			i.Version += "-dirty"
		}
	}
	return i
}

// String renders e.g. "1.2.3 (commit: abc1234, built at: 2019-05-01T10:00:00Z)".
func (i Info) String() string {
	switch {
	case i.Commit == "" && i.BuildTime == "":
		return i.Version + " (development)"
	case i.Commit == "":
		return fmt.Sprintf("%s (built at: %s)", i.Version, i.BuildTime)
	case i.BuildTime == "":
		return fmt.Sprintf("%s (commit: %s)", i.Version, i.Commit)
	}
	return fmt.Sprintf("%s (commit: %s, built at: %s)", i.Version, i.Commit, i.BuildTime)
}

// LatestVersion returns the newest released version without the "v" prefix.
func LatestVersion(client *http.Client) (string, error) {
	resp, err := client.Get(releasesURL)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return "", err
	}
	return strings.TrimPrefix(release.TagName, "v"), nil
}

// Newer reports whether candidate is a higher dotted version than current.
// Pre-release suffixes are ignored.
func Newer(candidate, current string) bool {
	a, b := versionParts(candidate), versionParts(current)
	for i := 0; i < len(a) || i < len(b); i++ {
		var x, y int
		if i < len(a) {
			x = a[i]
		}
		if i < len(b) {
			y = b[i]
		}
		if x != y {
			return x > y
		}
	}
	return false
}

func versionParts(v string) []int {
	v, _, _ = strings.Cut(strings.TrimPrefix(v, "v"), "-")
	fields := strings.Split(v, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			break
		}
		parts = append(parts, n)
	}
	return parts
}

// CheckLatestVersion prints an upgrade hint when a newer release exists.
// Development builds are never checked.
func CheckLatestVersion(currentVersion string) {
	if strings.HasSuffix(currentVersion, "-dev") {
		return
	}

	latest, err := LatestVersion(&http.Client{Timeout: 3 * time.Second})
	if err != nil || !Newer(latest, currentVersion) {
		return
	}
	pterm.Warning.Printfln("A new version of Costlocker Reports is available: %s", latest)
	pterm.Info.Println("Update with: go install github.com/costlocker/reports/cmd/costlocker-reports@latest")
}
