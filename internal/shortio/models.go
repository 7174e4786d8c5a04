package shortio

// Domain is a short domain registered on the account.
type Domain struct {
	ID       int64  `json:"id"`
	Hostname string `json:"hostname"`
}

// Link is a short link as returned by the API.
type Link struct {
	IDString    string   `json:"idString"`
	Path        string   `json:"path"`
	OriginalURL string   `json:"originalURL"`
	Title       string   `json:"title,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IPhoneURL   string   `json:"iphoneURL,omitempty"`
	AndroidURL  string   `json:"androidURL,omitempty"`
	ExpiredURL  string   `json:"expiredURL,omitempty"`
	UTMSource   string   `json:"utmSource,omitempty"`
	UTMMedium   string   `json:"utmMedium,omitempty"`
	UTMCampaign string   `json:"utmCampaign,omitempty"`
}

// LinkPage is one page of a link listing.
type LinkPage struct {
	Links         []Link `json:"links"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// LinkSpec is the request payload for creating or updating a link.
// Domain is only meaningful on create; updates are keyed by link id.
type LinkSpec struct {
	Domain      string   `json:"domain,omitempty"`
	Path        string   `json:"path"`
	OriginalURL string   `json:"originalURL"`
	Title       string   `json:"title,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IPhoneURL   string   `json:"iphoneURL,omitempty"`
	AndroidURL  string   `json:"androidURL,omitempty"`
	ExpiredURL  string   `json:"expiredURL,omitempty"`
	UTMSource   string   `json:"utmSource,omitempty"`
	UTMMedium   string   `json:"utmMedium,omitempty"`
	UTMCampaign string   `json:"utmCampaign,omitempty"`
}
