package domain

import "errors"

var (
	// ErrInvalidQuery signals a missing or malformed search query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrSourceUnavailable signals a failed collection lookup. Absorbed by the
	// fan-out: the failing source contributes an empty list.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrEnhancementFailed signals a failed or unparseable AI enhancement.
	// Absorbed by the pipeline: the response degrades to fallback text.
	ErrEnhancementFailed = errors.New("enhancement failed")
	// ErrPersistenceFailed signals a failed best-effort write (query log,
	// analytics). Never surfaced to the caller.
	ErrPersistenceFailed = errors.New("persistence failed")
	// ErrQuotaExceeded signals an exhausted LLM token budget.
	ErrQuotaExceeded = errors.New("token quota exceeded")
	// ErrProviderError signals an LLM provider failure.
	ErrProviderError = errors.New("ai provider error")
	// ErrMalformedCompletion signals a completion that could not be parsed
	// into the requested JSON shape.
	ErrMalformedCompletion = errors.New("malformed completion")
)
