// Package updater checks GitHub for newer gantry releases. It uses the
// GitHub Releases API (no auth required for public repos) and never
// fails loudly; the check is best-effort and runs in the background
// during "serve".
package updater

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	githubRepo   = "gantry-mcp/gantry"
	releaseURL   = "https://api.github.com/repos/" + githubRepo + "/releases/latest"
	checkTimeout = 10 * time.Second
)

// For testing: allow overriding the release URL and HTTP client.
var (
	releaseEndpoint = releaseURL
	httpClient      = &http.Client{Timeout: checkTimeout}
)

// UpdateResult is returned by CheckVersion to communicate the outcome.
type UpdateResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// CheckVersion queries GitHub for the latest release and compares it
// against the current version. It never returns an error; network
// failures simply report no update.
func CheckVersion(currentVersion string) *UpdateResult {
	result := &UpdateResult{CurrentVersion: normalizeVersion(currentVersion)}

	req, err := http.NewRequest(http.MethodGet, releaseEndpoint, nil)
	if err != nil {
		return result
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "gantry/"+currentVersion)

	resp, err := httpClient.Do(req)
	if err != nil {
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return result
	}

	var release struct {
		TagName string `json:"tag_name"`
		HTMLURL string `json:"html_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return result
	}

	result.LatestVersion = normalizeVersion(release.TagName)
	result.ReleaseURL = release.HTMLURL
	result.UpdateAvailable = isNewer(result.CurrentVersion, result.LatestVersion)
	return result
}

// normalizeVersion strips the leading "v" from version strings.
func normalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

// isNewer reports whether latest is a higher semver than current.
// Dev builds never see updates.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}

	cur := splitVersion(current)
	lat := splitVersion(latest)
	for i := 0; i < 3; i++ {
		if lat[i] > cur[i] {
			return true
		}
		if lat[i] < cur[i] {
			return false
		}
	}
	return false
}

// splitVersion parses up to three numeric dot-separated parts; missing
// or malformed parts count as 0. Pre-release suffixes are ignored.
func splitVersion(v string) [3]int {
	var parts [3]int
	for i, p := range strings.SplitN(v, ".", 3) {
		digits := p
		if cut := strings.IndexFunc(p, func(r rune) bool { return r < '0' || r > '9' }); cut >= 0 {
			digits = p[:cut]
		}
		if n, err := strconv.Atoi(digits); err == nil {
			parts[i] = n
		}
	}
	return parts
}
