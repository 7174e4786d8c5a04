package reconcile

import "fmt"

// DomainNotFoundError is returned when a declared domain is not
// registered on the Short.io account. It aborts the whole run: without
// the domain's observed state the diff would be incomplete.
type DomainNotFoundError struct {
	Domain string
}

func (e *DomainNotFoundError) Error() string {
	return fmt.Sprintf("domain %q is not registered on the short.io account", e.Domain)
}

// UpstreamError wraps a transport or service failure while fetching
// observed state. Like DomainNotFoundError it is fatal to the run:
// reconciling against a partial observed set risks wrongful deletes.
type UpstreamError struct {
	Domain string
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("fetching links for domain %q: %v", e.Domain, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }
