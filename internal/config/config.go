// Package config loads and validates the shortsync manifest.
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/shortsync/shortsync/internal/reconcile"
)

// Config represents the sync manifest: connection settings plus the
// desired link set, declared per domain.
type Config struct {
	APIKey       string                         `yaml:"api_key"`
	ManagedTag   string                         `yaml:"managed_tag"`
	Timeout      Duration                       `yaml:"timeout"`       // HTTP timeout for Short.io API requests
	RateLimitRPS float64                        `yaml:"rate_limit_rps"`
	Log          LogConfig                      `yaml:"log"`
	History      HistoryConfig                  `yaml:"history"`
	Domains      map[string]map[string]LinkSpec `yaml:"domains"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level   string `yaml:"level"`
	Colors  bool   `yaml:"colors"`
	UseJSON bool   `yaml:"json"`
}

// GetLevel returns the log level with default
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return c.Level
}

// HistoryConfig contains sync-run ledger settings. History is disabled
// when Path is empty.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// LinkSpec declares one short link.
type LinkSpec struct {
	URL         string   `yaml:"url"`
	Title       string   `yaml:"title"`
	Tags        []string `yaml:"tags"`
	IPhoneURL   string   `yaml:"iphone_url"`
	AndroidURL  string   `yaml:"android_url"`
	ExpiredURL  string   `yaml:"expired_url"`
	UTMSource   string   `yaml:"utm_source"`
	UTMMedium   string   `yaml:"utm_medium"`
	UTMCampaign string   `yaml:"utm_campaign"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Load reads, expands and validates the manifest file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse parses a manifest document.
func Parse(data []byte) (*Config, error) {
	// Expand environment variables
	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.ManagedTag == "" {
		cfg.ManagedTag = reconcile.DefaultManagedTag
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = Duration(30 * time.Second)
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 5.0
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("api_key is required")
	}
	if len(c.Domains) == 0 {
		return fmt.Errorf("at least one domain must be declared")
	}
	for domain, links := range c.Domains {
		if strings.Contains(domain, "/") {
			return fmt.Errorf("domain %q must be a bare hostname", domain)
		}
		for path, link := range links {
			if path == "" {
				return fmt.Errorf("domain %q declares a link with an empty path", domain)
			}
			if strings.HasPrefix(path, "/") {
				return fmt.Errorf("link %q in domain %q: path must not start with a slash", path, domain)
			}
			if link.URL == "" {
				return fmt.Errorf("link %q in domain %q: url is required", path, domain)
			}
			u, err := url.Parse(link.URL)
			if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
				return fmt.Errorf("link %q in domain %q: url %q is not a valid http(s) URL", path, domain, link.URL)
			}
		}
	}
	return nil
}

// DesiredSet converts the manifest into the reconciler's desired-state
// collection, in deterministic domain/path order.
func (c *Config) DesiredSet() (*reconcile.DesiredSet, error) {
	domains := make([]string, 0, len(c.Domains))
	for domain := range c.Domains {
		domains = append(domains, domain)
	}
	sort.Strings(domains)

	var links []reconcile.DesiredLink
	for _, domain := range domains {
		paths := make([]string, 0, len(c.Domains[domain]))
		for path := range c.Domains[domain] {
			paths = append(paths, path)
		}
		sort.Strings(paths)

		for _, path := range paths {
			spec := c.Domains[domain][path]
			links = append(links, reconcile.DesiredLink{
				Domain:      domain,
				Path:        path,
				OriginalURL: spec.URL,
				Title:       spec.Title,
				Tags:        spec.Tags,
				Extras:      spec.extras(),
			})
		}
	}

	return reconcile.NewDesiredSet(domains, links)
}

func (s *LinkSpec) extras() map[string]string {
	extras := make(map[string]string)
	put := func(key, val string) {
		if val != "" {
			extras[key] = val
		}
	}
	put(reconcile.ExtraIPhoneURL, s.IPhoneURL)
	put(reconcile.ExtraAndroidURL, s.AndroidURL)
	put(reconcile.ExtraExpiredURL, s.ExpiredURL)
	put(reconcile.ExtraUTMSource, s.UTMSource)
	put(reconcile.ExtraUTMMedium, s.UTMMedium)
	put(reconcile.ExtraUTMCampaign, s.UTMCampaign)
	return extras
}

// expandEnvVars expands environment variables in the format ${VAR} or ${VAR:default}
func expandEnvVars(input string) string {
	// Match ${VAR} or ${VAR:default}
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
