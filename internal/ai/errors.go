package ai

import "errors"

var (
	ErrProviderUnavailable = errors.New("ai provider unavailable")
	ErrEmptyAnswer         = errors.New("ai provider returned empty answer")
	ErrNoArchiveDocuments  = errors.New("no archive documents to cross-check against")
	ErrViabilityNotAllowed = errors.New("cross-check requires a paid plan")
)
