// Package update checks for newer p360 releases.
package update

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/pure360/pure360-cli/internal/cache"
)

const (
	// DefaultReleasesURL is the latest-release endpoint of the project.
	DefaultReleasesURL = "https://api.github.com/repos/pure360/pure360-cli/releases/latest"
	CheckTimeout       = 5 * time.Second

	// CacheTTL bounds how often the releases endpoint is queried.
	CacheTTL = 24 * time.Hour

	cacheKey = "latest-release"
)

// Release is the subset of the release payload the check needs.
type Release struct {
	TagName string `json:"tag_name"`
	HTMLURL string `json:"html_url"`
}

// CheckResult reports the outcome of a successful check.
type CheckResult struct {
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version"`
	UpdateURL       string `json:"update_url,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
}

// Checker queries a releases endpoint. When Cache is set, a fetched release
// is reused until the store expires.
type Checker struct {
	URL   string
	HTTP  *http.Client
	Cache *cache.Store
}

// NewChecker returns a Checker for the default releases URL, caching the
// latest release for CacheTTL when a cache directory is available.
func NewChecker() *Checker {
	c := &Checker{URL: DefaultReleasesURL, HTTP: http.DefaultClient}
	if dir, err := cache.DefaultDir(); err == nil {
		c.Cache = cache.NewStore(dir, cacheKey, CacheTTL)
	}
	return c
}

// Check reports whether a release newer than currentVersion exists.
// Returns nil if the check fails so it never blocks the CLI.
func (c *Checker) Check(ctx context.Context, currentVersion string) *CheckResult {
	if currentVersion == "dev" || currentVersion == "" {
		return nil
	}

	var release Release
	if c.Cache == nil || !c.Cache.Get(&release) || release.TagName == "" {
		fetched, ok := c.fetch(ctx)
		if !ok {
			return nil
		}
		release = fetched
		if c.Cache != nil {
			c.Cache.Put(release)
		}
	}

	result := &CheckResult{
		CurrentVersion: currentVersion,
		LatestVersion:  strings.TrimPrefix(release.TagName, "v"),
		UpdateURL:      release.HTMLURL,
	}

	current, latest := normalizeVersion(currentVersion), normalizeVersion(release.TagName)
	if semver.IsValid(current) && semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, current) > 0
	}
	return result
}

func (c *Checker) fetch(ctx context.Context) (Release, bool) {
	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Release{}, false
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	hc := c.HTTP
	if hc == nil {
		hc = http.DefaultClient
	}
	resp, err := hc.Do(req)
	if err != nil {
		return Release{}, false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Release{}, false
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil || release.TagName == "" {
		return Release{}, false
	}
	return release, true
}

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
