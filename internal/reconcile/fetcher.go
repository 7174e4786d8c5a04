package reconcile

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/shortsync/shortsync/internal/shortio"
)

// pageLimit is the page-size ceiling for link listings.
const pageLimit = 150

// Client is the slice of the Short.io API the reconciler needs.
type Client interface {
	ListDomains(ctx context.Context) ([]shortio.Domain, error)
	ListLinks(ctx context.Context, domainID int64, limit int, pageToken string) (shortio.LinkPage, error)
	CreateLink(ctx context.Context, spec shortio.LinkSpec) (shortio.Link, error)
	UpdateLink(ctx context.Context, linkID string, spec shortio.LinkSpec) (shortio.Link, error)
	DeleteLink(ctx context.Context, linkID string) error
}

// Fetcher retrieves observed link state per domain. Domain-id lookups
// are cached for the lifetime of the Fetcher so that a run covering
// several domains lists the account's domains only once.
type Fetcher struct {
	client Client

	mu        sync.Mutex
	domainIDs map[string]int64
}

// NewFetcher creates a new Fetcher with an empty domain-id cache.
func NewFetcher(client Client) *Fetcher {
	return &Fetcher{
		client:    client,
		domainIDs: make(map[string]int64),
	}
}

// Reset clears the domain-id cache.
func (f *Fetcher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.domainIDs = make(map[string]int64)
}

// ResolveDomainID returns the numeric id of a short domain. On a cache
// miss it lists all account domains and caches every returned id, then
// re-checks.
func (f *Fetcher) ResolveDomainID(ctx context.Context, domain string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if id, ok := f.domainIDs[domain]; ok {
		return id, nil
	}

	domains, err := f.client.ListDomains(ctx)
	if err != nil {
		return 0, &UpstreamError{Domain: domain, Err: err}
	}
	for _, d := range domains {
		f.domainIDs[d.Hostname] = d.ID
	}

	id, ok := f.domainIDs[domain]
	if !ok {
		return 0, &DomainNotFoundError{Domain: domain}
	}
	return id, nil
}

// FetchAll retrieves the complete link collection of a domain, following
// the listing's continuation token until exhausted. Any page failure
// discards pages already fetched and fails the whole call.
func (f *Fetcher) FetchAll(ctx context.Context, domain string) ([]ObservedLink, error) {
	domainID, err := f.ResolveDomainID(ctx, domain)
	if err != nil {
		return nil, err
	}

	var links []ObservedLink
	pageToken := ""
	for {
		page, err := f.client.ListLinks(ctx, domainID, pageLimit, pageToken)
		if err != nil {
			return nil, &UpstreamError{Domain: domain, Err: err}
		}
		for _, l := range page.Links {
			links = append(links, observedFromAPI(l, domain, domainID))
		}
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	log.Debug().Str("domain", domain).Int("links", len(links)).Msg("Fetched observed links")
	return links, nil
}

// observedFromAPI normalizes an API link into the internal shape. The
// API item is domain-agnostic; domain and domain id come from the
// request context.
func observedFromAPI(l shortio.Link, domain string, domainID int64) ObservedLink {
	return ObservedLink{
		ID:          l.IDString,
		Domain:      domain,
		DomainID:    domainID,
		Path:        l.Path,
		OriginalURL: l.OriginalURL,
		Title:       l.Title,
		Tags:        l.Tags,
		Extras:      extrasFromAPI(l),
	}
}

func extrasFromAPI(l shortio.Link) map[string]string {
	extras := make(map[string]string)
	put := func(key, val string) {
		if val != "" {
			extras[key] = val
		}
	}
	put(ExtraIPhoneURL, l.IPhoneURL)
	put(ExtraAndroidURL, l.AndroidURL)
	put(ExtraExpiredURL, l.ExpiredURL)
	put(ExtraUTMSource, l.UTMSource)
	put(ExtraUTMMedium, l.UTMMedium)
	put(ExtraUTMCampaign, l.UTMCampaign)
	return extras
}
