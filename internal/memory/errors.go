package memory

import "errors"

var (
	// ErrInvalidArgument marks a missing or empty required field. The
	// operation is aborted before any write.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUpstreamUnavailable marks a failed or timed-out call to the cache,
	// similarity index, embedding or completion service.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrEmbeddingFailed marks an embedding call failure; the semantic store
	// operation writes nothing when it fires.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrMalformedData marks a stored payload that fails to decode. Readers
	// treat it as absent rather than failing.
	ErrMalformedData = errors.New("malformed data")

	// ErrInsufficientData marks a summarization request with no prior turns.
	ErrInsufficientData = errors.New("insufficient data")
)
