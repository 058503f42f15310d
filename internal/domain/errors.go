package domain

import "errors"

// Sentinel errors for the collector pipeline. Adapters wrap these around the
// underlying cause so callers can branch with errors.Is while keeping the
// original failure inspectable.
var (
	// ErrFeedUnreachable covers connection and timeout failures against the feed.
	ErrFeedUnreachable = errors.New("feed unreachable")

	// ErrFeedBadStatus indicates a non-2xx response from the feed.
	ErrFeedBadStatus = errors.New("feed returned unexpected status")

	// ErrFeedDecode indicates a response body that is not a JSON array of events.
	ErrFeedDecode = errors.New("feed response not decodable")

	// ErrObjectNotFound indicates the requested object does not exist in the bucket.
	ErrObjectNotFound = errors.New("object not found")

	// ErrStorageUnavailable covers any object storage failure other than a
	// missing object.
	ErrStorageUnavailable = errors.New("object storage unavailable")

	// ErrMetadataCorrupt indicates the recency index exists but cannot be
	// read or decoded.
	ErrMetadataCorrupt = errors.New("recency metadata corrupt")

	// ErrSecretUnavailable indicates a required secret, or the vault holding
	// it, cannot be found.
	ErrSecretUnavailable = errors.New("secret unavailable")

	// ErrSecretInactive indicates the secret exists but is not in an ACTIVE
	// lifecycle state.
	ErrSecretInactive = errors.New("secret not active")

	// ErrSecretDecode indicates a secret payload that cannot be decoded.
	ErrSecretDecode = errors.New("secret payload not decodable")
)
