package domain

import "context"

// ObjectStore defines the interface for the durable object storage layer.
// This abstracts away the specific backend (e.g. OCI Object Storage).
type ObjectStore interface {
	// Get returns the full contents of the named object. A missing object
	// yields ErrObjectNotFound; any other failure yields ErrStorageUnavailable.
	Get(ctx context.Context, name string) ([]byte, error)

	// Put creates or fully replaces the named object.
	Put(ctx context.Context, name string, data []byte) error

	// List returns the names of objects under the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// EventFeed defines the interface for fetching the current window of events
// from the upstream feed.
type EventFeed interface {
	// Fetch returns every event the feed currently exposes. Downstream code
	// does not rely on ordering.
	Fetch(ctx context.Context) ([]Event, error)
}

// CredentialResolver defines the interface for obtaining the storage
// credential bundle at startup.
type CredentialResolver interface {
	// Resolve produces a validated bundle. It is called once per process
	// lifetime; implementations must not cache secret values beyond the call.
	Resolve(ctx context.Context) (Credentials, error)
}
