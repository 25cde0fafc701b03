package apperrors

import "errors"

var (
	ErrUnsupportedProvider = errors.New("unsupported schema provider")
	ErrMissingTenantID     = errors.New("multi-tenant generation requires a tenant id")
	ErrMissingOutputTarget = errors.New("output target is required")
	ErrNoDataSources       = errors.New("at least one data source is required")
	ErrUnknownSourceBundle = errors.New("source bundle format not recognized")
)
