package reconcile

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

// Syncer reconciles a desired link set against a Short.io account.
type Syncer struct {
	client     Client
	fetcher    *Fetcher
	managedTag string
}

// NewSyncer creates a new Syncer. An empty managedTag falls back to
// DefaultManagedTag.
func NewSyncer(client Client, managedTag string) *Syncer {
	if managedTag == "" {
		managedTag = DefaultManagedTag
	}
	return &Syncer{
		client:     client,
		fetcher:    NewFetcher(client),
		managedTag: managedTag,
	}
}

// Fetcher returns the observed-state fetcher used by the syncer.
func (s *Syncer) Fetcher() *Fetcher { return s.fetcher }

// ComputeDiff fetches observed state for every declared domain and
// classifies each link as create, update or delete. A fetch failure for
// any domain fails the whole call.
func (s *Syncer) ComputeDiff(ctx context.Context, desired *DesiredSet) (Diff, error) {
	observed := make(map[string][]ObservedLink, len(desired.Domains()))
	for _, domain := range desired.Domains() {
		links, err := s.fetcher.FetchAll(ctx, domain)
		if err != nil {
			return Diff{}, err
		}
		observed[domain] = links
	}
	return buildDiff(desired, observed, s.managedTag), nil
}

// buildDiff is the pure diffing core: both sides indexed by identity
// key, three-way classification, unchanged links omitted.
func buildDiff(desired *DesiredSet, observed map[string][]ObservedLink, managedTag string) Diff {
	obsByKey := make(map[string]ObservedLink)
	for _, links := range observed {
		for _, l := range links {
			obsByKey[l.Key()] = l
		}
	}

	var diff Diff
	for _, want := range desired.Links() {
		got, ok := obsByKey[want.Key()]
		if !ok {
			diff.Create = append(diff.Create, want)
			continue
		}
		if len(linkChanges(want, got, managedTag)) > 0 {
			diff.Update = append(diff.Update, UpdatePair{Desired: want, Observed: got})
		}
	}

	// Deterministic delete order regardless of map iteration.
	strayKeys := make([]string, 0)
	for key := range obsByKey {
		if !desired.contains(key) {
			strayKeys = append(strayKeys, key)
		}
	}
	sort.Strings(strayKeys)

	for _, key := range strayKeys {
		got := obsByKey[key]
		if !hasTag(got.Tags, managedTag) {
			// Not ours: manually created links are never deleted.
			log.Debug().Str("link", key).Msg("Skipping unmanaged link")
			continue
		}
		diff.Delete = append(diff.Delete, got)
	}

	return diff
}

// fieldChange records one differing field for update classification and
// dry-run reporting.
type fieldChange struct {
	Field string
	From  string
	To    string
}

// linkChanges compares a desired link against its observed counterpart
// and returns the differing fields. The management tag is ignored in
// tag comparison: its presence alone never causes an update, and a
// matched unmanaged link is not reclaimed while its fields agree.
func linkChanges(want DesiredLink, got ObservedLink, managedTag string) []fieldChange {
	var changes []fieldChange

	if want.OriginalURL != got.OriginalURL {
		changes = append(changes, fieldChange{"originalURL", got.OriginalURL, want.OriginalURL})
	}
	// Empty and unset titles are equivalent; both map to "".
	if want.Title != got.Title {
		changes = append(changes, fieldChange{"title", got.Title, want.Title})
	}

	wantTags := normalizeTags(want.Tags, managedTag)
	gotTags := normalizeTags(got.Tags, managedTag)
	if !equalStrings(wantTags, gotTags) {
		changes = append(changes, fieldChange{"tags", strings.Join(gotTags, ","), strings.Join(wantTags, ",")})
	}

	for _, key := range extraKeys(want.Extras, got.Extras) {
		if want.Extras[key] != got.Extras[key] {
			changes = append(changes, fieldChange{key, got.Extras[key], want.Extras[key]})
		}
	}

	return changes
}

// normalizeTags sorts a copy of tags with the management tag removed,
// making comparison order-independent.
func normalizeTags(tags []string, managedTag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == managedTag {
			continue
		}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func extraKeys(a, b map[string]string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	keys := make([]string, 0, len(a)+len(b))
	for k := range a {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range b {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}
