package matchmaker

import "github.com/kailas-cloud/matchmaker/internal/domain"

// Errors returned by the client. Match them with errors.Is.
var (
	ErrUserNotFound       = domain.ErrUserNotFound
	ErrInvalidProfile     = domain.ErrInvalidProfile
	ErrInvalidPreferences = domain.ErrInvalidPreferences
	ErrStoreUnavailable   = domain.ErrStoreUnavailable
	ErrTasteUnavailable   = domain.ErrTasteUnavailable
	ErrVectorDimMismatch  = domain.ErrVectorDimMismatch
	ErrEmbeddingQuota     = domain.ErrEmbeddingQuotaExceeded
	ErrEmbeddingProvider  = domain.ErrEmbeddingProviderError
)
