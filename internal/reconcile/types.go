// Package reconcile computes and applies the changes needed to make the
// links on a Short.io account match a declared desired set.
package reconcile

import (
	"fmt"
	"sort"
)

// DefaultManagedTag marks links owned by this tool. Only links carrying
// the tag are ever deleted.
const DefaultManagedTag = "shortsync"

// Extended attribute keys. Every key listed here participates in diffing;
// a new attribute must be mapped in both fetcher.go and executor.go or
// drift in it will go undetected.
const (
	ExtraIPhoneURL   = "iphone_url"
	ExtraAndroidURL  = "android_url"
	ExtraExpiredURL  = "expired_url"
	ExtraUTMSource   = "utm_source"
	ExtraUTMMedium   = "utm_medium"
	ExtraUTMCampaign = "utm_campaign"
)

// DesiredLink is one link declared in the manifest.
type DesiredLink struct {
	Domain      string
	Path        string
	OriginalURL string
	Title       string
	Tags        []string
	Extras      map[string]string
}

// Key returns the identity key of the link.
func (d DesiredLink) Key() string { return Key(d.Domain, d.Path) }

// ObservedLink is a point-in-time snapshot of a remote link. It is
// discarded after one reconciliation pass.
type ObservedLink struct {
	ID          string
	Domain      string
	DomainID    int64
	Path        string
	OriginalURL string
	Title       string
	Tags        []string
	Extras      map[string]string
}

// Key returns the identity key of the link.
func (o ObservedLink) Key() string { return Key(o.Domain, o.Path) }

// Key derives the join key used to match desired and observed links.
// Paths may themselves contain "/" (nested slugs); domains are hostnames
// and cannot, so the first separator is unambiguous.
func Key(domain, path string) string {
	return domain + "/" + path
}

// DesiredSet is a validated, duplicate-free desired-state collection.
// Domains with zero declared links still participate in reconciliation:
// their managed remote links become deletion candidates.
type DesiredSet struct {
	domains []string
	links   []DesiredLink
	byKey   map[string]DesiredLink
}

// NewDesiredSet builds a DesiredSet from the declared domains and links.
// It rejects duplicate identity keys and links referencing undeclared
// domains.
func NewDesiredSet(domains []string, links []DesiredLink) (*DesiredSet, error) {
	declared := make(map[string]bool, len(domains))
	uniq := make([]string, 0, len(domains))
	for _, d := range domains {
		if declared[d] {
			continue
		}
		declared[d] = true
		uniq = append(uniq, d)
	}
	sort.Strings(uniq)

	byKey := make(map[string]DesiredLink, len(links))
	for _, l := range links {
		if !declared[l.Domain] {
			return nil, fmt.Errorf("link %q references undeclared domain %q", l.Path, l.Domain)
		}
		key := l.Key()
		if _, ok := byKey[key]; ok {
			return nil, fmt.Errorf("duplicate link %q", key)
		}
		byKey[key] = l
	}

	return &DesiredSet{domains: uniq, links: links, byKey: byKey}, nil
}

// Domains returns the declared domains in sorted order.
func (s *DesiredSet) Domains() []string { return s.domains }

// Links returns the declared links in declaration order.
func (s *DesiredSet) Links() []DesiredLink { return s.links }

// Len returns the number of declared links.
func (s *DesiredSet) Len() int { return len(s.links) }

func (s *DesiredSet) contains(key string) bool {
	_, ok := s.byKey[key]
	return ok
}

// UpdatePair couples a desired link with the observed link it replaces.
type UpdatePair struct {
	Desired  DesiredLink
	Observed ObservedLink
}

// Diff is a classified set of pending changes. Unchanged links are not
// represented.
type Diff struct {
	Create []DesiredLink
	Update []UpdatePair
	Delete []ObservedLink
}

// Empty reports whether the diff contains no changes.
func (d Diff) Empty() bool {
	return len(d.Create) == 0 && len(d.Update) == 0 && len(d.Delete) == 0
}

// Result accumulates the outcome of one sync run. Counts reflect
// succeeded operations, or intended operations in dry-run mode.
type Result struct {
	Created int
	Updated int
	Deleted int
	Errors  []string
}
