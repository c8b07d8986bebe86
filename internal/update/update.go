// Package update compares the running CLI version with the versions the
// server advertises.
package update

import (
	"context"
	"strings"
	"time"

	"golang.org/x/mod/semver"

	"github.com/arabah/arabah-cli/internal/api"
)

// CheckTimeout bounds the version lookup.
const CheckTimeout = 5 * time.Second

// VersionSource reports the versions the server supports.
type VersionSource interface {
	AppVersion(ctx context.Context) (*api.AppVersion, error)
}

// VersionSourceFunc adapts a function to VersionSource.
type VersionSourceFunc func(ctx context.Context) (*api.AppVersion, error)

func (f VersionSourceFunc) AppVersion(ctx context.Context) (*api.AppVersion, error) { return f(ctx) }

type CheckResult struct {
	CurrentVersion  string `json:"current_version"`
	LatestVersion   string `json:"latest_version"`
	MinimumVersion  string `json:"minimum_version,omitempty"`
	UpdateURL       string `json:"update_url,omitempty"`
	UpdateAvailable bool   `json:"update_available"`
	UpdateRequired  bool   `json:"update_required"`
}

// CheckForUpdate asks source for the advertised versions.
// Returns nil if the check fails - never blocks the CLI.
func CheckForUpdate(ctx context.Context, source VersionSource, currentVersion string) *CheckResult {
	if currentVersion == "dev" || currentVersion == "" || source == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, CheckTimeout)
	defer cancel()

	versions, err := source.AppVersion(ctx)
	if err != nil || versions == nil || versions.LatestVersion == "" {
		return nil
	}

	current := normalizeVersion(currentVersion)
	latest := normalizeVersion(versions.LatestVersion)

	result := &CheckResult{
		CurrentVersion: strings.TrimPrefix(currentVersion, "v"),
		LatestVersion:  strings.TrimPrefix(versions.LatestVersion, "v"),
		MinimumVersion: strings.TrimPrefix(versions.MinimumVersion, "v"),
		UpdateURL:      versions.StoreURL,
	}

	if !semver.IsValid(current) {
		return result
	}
	if semver.IsValid(latest) {
		result.UpdateAvailable = semver.Compare(latest, current) > 0
	}
	if minimum := normalizeVersion(versions.MinimumVersion); versions.MinimumVersion != "" && semver.IsValid(minimum) {
		result.UpdateRequired = semver.Compare(minimum, current) > 0
	}
	return result
}

func normalizeVersion(v string) string {
	if !strings.HasPrefix(v, "v") {
		return "v" + v
	}
	return v
}
