package reconcile

import (
	"context"

	"github.com/shortsync/shortsync/internal/shortio"
)

// fakeClient implements Client in memory and records every call.
type fakeClient struct {
	domains []shortio.Domain
	// pages[domainID][pageToken] -> page; "" is the first page
	pages map[int64]map[string]shortio.LinkPage

	domainsErr error
	linksErr   error
	createErr  map[string]error // keyed by path
	updateErr  map[string]error // keyed by link id
	deleteErr  map[string]error // keyed by link id

	listDomainsCalls int
	listLinksCalls   int
	createCalls      int
	updateCalls      int
	deleteCalls      int

	created []shortio.LinkSpec
	updated []fakeUpdate
	deleted []string
}

type fakeUpdate struct {
	ID   string
	Spec shortio.LinkSpec
}

func (f *fakeClient) ListDomains(ctx context.Context) ([]shortio.Domain, error) {
	f.listDomainsCalls++
	if f.domainsErr != nil {
		return nil, f.domainsErr
	}
	return f.domains, nil
}

func (f *fakeClient) ListLinks(ctx context.Context, domainID int64, limit int, pageToken string) (shortio.LinkPage, error) {
	f.listLinksCalls++
	if f.linksErr != nil {
		return shortio.LinkPage{}, f.linksErr
	}
	return f.pages[domainID][pageToken], nil
}

func (f *fakeClient) CreateLink(ctx context.Context, spec shortio.LinkSpec) (shortio.Link, error) {
	f.createCalls++
	if err := f.createErr[spec.Path]; err != nil {
		return shortio.Link{}, err
	}
	f.created = append(f.created, spec)
	return shortio.Link{IDString: "id-" + spec.Path, Path: spec.Path, OriginalURL: spec.OriginalURL, Tags: spec.Tags}, nil
}

func (f *fakeClient) UpdateLink(ctx context.Context, linkID string, spec shortio.LinkSpec) (shortio.Link, error) {
	f.updateCalls++
	if err := f.updateErr[linkID]; err != nil {
		return shortio.Link{}, err
	}
	f.updated = append(f.updated, fakeUpdate{ID: linkID, Spec: spec})
	return shortio.Link{IDString: linkID, Path: spec.Path, OriginalURL: spec.OriginalURL, Tags: spec.Tags}, nil
}

func (f *fakeClient) DeleteLink(ctx context.Context, linkID string) error {
	f.deleteCalls++
	if err := f.deleteErr[linkID]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, linkID)
	return nil
}
