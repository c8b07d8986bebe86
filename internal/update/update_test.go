package update

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arabah/arabah-cli/internal/api"
)

func staticSource(v *api.AppVersion, err error) VersionSource {
	return VersionSourceFunc(func(context.Context) (*api.AppVersion, error) {
		return v, err
	})
}

func TestNormalizeVersion(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1.0.0", "v1.0.0"},
		{"v1.0.0", "v1.0.0"},
		{"0.1.0", "v0.1.0"},
		{"v10.20.30", "v10.20.30"},
		{"", "v"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := normalizeVersion(tt.input); got != tt.expected {
				t.Errorf("normalizeVersion(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCheckForUpdate_SkipsDevAndEmpty(t *testing.T) {
	src := staticSource(&api.AppVersion{LatestVersion: "9.9.9"}, nil)
	for _, v := range []string{"dev", ""} {
		if CheckForUpdate(context.Background(), src, v) != nil {
			t.Errorf("expected nil for version %q", v)
		}
	}
	if CheckForUpdate(context.Background(), nil, "1.0.0") != nil {
		t.Error("expected nil without a source")
	}
}

func TestCheckForUpdate_Versions(t *testing.T) {
	tests := []struct {
		name      string
		current   string
		versions  api.AppVersion
		available bool
		required  bool
	}{
		{"up to date", "1.2.0", api.AppVersion{MinimumVersion: "1.0.0", LatestVersion: "1.2.0"}, false, false},
		{"newer available", "1.1.0", api.AppVersion{MinimumVersion: "1.0.0", LatestVersion: "1.2.0"}, true, false},
		{"below minimum", "0.9.0", api.AppVersion{MinimumVersion: "1.0.0", LatestVersion: "1.2.0"}, true, true},
		{"v prefixes", "v1.1.0", api.AppVersion{MinimumVersion: "v1.1.0", LatestVersion: "v1.1.1"}, true, false},
		{"ahead of server", "2.0.0", api.AppVersion{LatestVersion: "1.2.0"}, false, false},
		{"no minimum", "1.0.0", api.AppVersion{LatestVersion: "1.0.1"}, true, false},
		{"unparseable current", "nightly", api.AppVersion{MinimumVersion: "1.0.0", LatestVersion: "1.2.0"}, false, false},
		{"unparseable latest", "1.0.0", api.AppVersion{MinimumVersion: "2.0.0", LatestVersion: "latest"}, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.versions
			got := CheckForUpdate(context.Background(), staticSource(&v, nil), tt.current)
			if got == nil {
				t.Fatal("expected result")
			}
			if got.UpdateAvailable != tt.available {
				t.Errorf("UpdateAvailable = %v, want %v", got.UpdateAvailable, tt.available)
			}
			if got.UpdateRequired != tt.required {
				t.Errorf("UpdateRequired = %v, want %v", got.UpdateRequired, tt.required)
			}
		})
	}
}

func TestCheckForUpdate_TrimsPrefixes(t *testing.T) {
	src := staticSource(&api.AppVersion{MinimumVersion: "v1.0.0", LatestVersion: "v1.3.0", StoreURL: "https://arabah.app/download"}, nil)
	got := CheckForUpdate(context.Background(), src, "v1.2.0")
	if got.CurrentVersion != "1.2.0" || got.LatestVersion != "1.3.0" || got.MinimumVersion != "1.0.0" {
		t.Errorf("unexpected versions: %+v", got)
	}
	if got.UpdateURL != "https://arabah.app/download" {
		t.Errorf("UpdateURL = %q", got.UpdateURL)
	}
}

func TestCheckForUpdate_SourceFailures(t *testing.T) {
	tests := []struct {
		name string
		src  VersionSource
	}{
		{"error", staticSource(nil, errors.New("boom"))},
		{"nil versions", staticSource(nil, nil)},
		{"empty latest", staticSource(&api.AppVersion{MinimumVersion: "1.0.0"}, nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CheckForUpdate(context.Background(), tt.src, "1.0.0"); got != nil {
				t.Errorf("expected nil, got %+v", got)
			}
		})
	}
}

func TestCheckForUpdate_AppliesTimeout(t *testing.T) {
	src := VersionSourceFunc(func(ctx context.Context) (*api.AppVersion, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			t.Error("expected a deadline")
		} else if time.Until(deadline) > CheckTimeout {
			t.Errorf("deadline too far: %v", time.Until(deadline))
		}
		return &api.AppVersion{LatestVersion: "1.0.0"}, nil
	})
	CheckForUpdate(context.Background(), src, "1.0.0")
}

func TestCheckForUpdate_ThroughAPIClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/app-version" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("platform") != "cli" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(api.Envelope[api.AppVersion]{
			Success: true,
			Code:    200,
			Body:    api.AppVersion{MinimumVersion: "1.0.0", LatestVersion: "1.4.0"},
		})
	}))
	defer server.Close()

	client := api.New(api.Options{BaseURL: server.URL})
	got := CheckForUpdate(context.Background(), client.Catalog(), "1.3.9")
	if got == nil || !got.UpdateAvailable || got.UpdateRequired {
		t.Errorf("unexpected result: %+v", got)
	}
}

func TestCheckForUpdate_ServerErrorIsSilent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := api.New(api.Options{BaseURL: server.URL})
	if got := CheckForUpdate(context.Background(), client.Catalog(), "1.0.0"); got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}
