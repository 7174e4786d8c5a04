package config

import (
	"strings"
	"testing"
	"time"

	"github.com/shortsync/shortsync/internal/reconcile"
)

const sampleManifest = `
api_key: ${SHORTIO_API_KEY:test-key}
domains:
  go.example.com:
    docs:
      url: https://docs.example.com
      title: Documentation
      tags: [docs, public]
      utm_source: shortlink
    blog: {url: "https://blog.example.com"}
  short.example.com: {}
`

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.APIKey != "test-key" {
		t.Errorf("APIKey = %q, want env default applied", cfg.APIKey)
	}
	if cfg.ManagedTag != reconcile.DefaultManagedTag {
		t.Errorf("ManagedTag = %q, want default", cfg.ManagedTag)
	}
	if cfg.Timeout.Duration() != 30*time.Second {
		t.Errorf("Timeout = %v, want 30s", cfg.Timeout.Duration())
	}
	if cfg.RateLimitRPS != 5.0 {
		t.Errorf("RateLimitRPS = %v, want 5", cfg.RateLimitRPS)
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("SHORTIO_API_KEY", "from-env")

	cfg, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("APIKey = %q, want value from environment", cfg.APIKey)
	}
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantErr  string
	}{
		{
			name:     "missing_api_key",
			manifest: "domains:\n  go.example.com: {}\n",
			wantErr:  "api_key",
		},
		{
			name:     "no_domains",
			manifest: "api_key: k\n",
			wantErr:  "domain",
		},
		{
			name:     "missing_url",
			manifest: "api_key: k\ndomains:\n  go.example.com:\n    docs: {title: Docs}\n",
			wantErr:  "url is required",
		},
		{
			name:     "bad_url_scheme",
			manifest: "api_key: k\ndomains:\n  go.example.com:\n    docs: {url: \"ftp://x\"}\n",
			wantErr:  "not a valid http(s) URL",
		},
		{
			name:     "leading_slash_path",
			manifest: "api_key: k\ndomains:\n  go.example.com:\n    /docs: {url: \"https://x.com\"}\n",
			wantErr:  "must not start with a slash",
		},
		{
			name:     "domain_with_slash",
			manifest: "api_key: k\ndomains:\n  go.example.com/x: {}\n",
			wantErr:  "bare hostname",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.manifest))
			if err == nil {
				t.Fatal("Parse() accepted invalid manifest")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_RejectsDuplicatePaths(t *testing.T) {
	manifest := "api_key: k\ndomains:\n  go.example.com:\n    docs: {url: \"https://a.com\"}\n    docs: {url: \"https://b.com\"}\n"
	if _, err := Parse([]byte(manifest)); err == nil {
		t.Fatal("Parse() accepted duplicate mapping keys")
	}
}

func TestDesiredSet_DeterministicOrder(t *testing.T) {
	cfg, err := Parse([]byte(sampleManifest))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	set, err := cfg.DesiredSet()
	if err != nil {
		t.Fatalf("DesiredSet() error = %v", err)
	}

	domains := set.Domains()
	if len(domains) != 2 || domains[0] != "go.example.com" || domains[1] != "short.example.com" {
		t.Errorf("Domains() = %v", domains)
	}

	links := set.Links()
	if len(links) != 2 {
		t.Fatalf("Links() has %d entries, want 2", len(links))
	}
	if links[0].Path != "blog" || links[1].Path != "docs" {
		t.Errorf("link order = %q, %q, want sorted by path", links[0].Path, links[1].Path)
	}
	if links[1].Extras[reconcile.ExtraUTMSource] != "shortlink" {
		t.Errorf("Extras = %v, want utm_source carried over", links[1].Extras)
	}
	if _, ok := links[1].Extras[reconcile.ExtraUTMMedium]; ok {
		t.Error("unset extended attributes must not appear in Extras")
	}
}
