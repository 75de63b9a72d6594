package domain

import "go.trai.ch/zerr"

var (
	// ErrCacheWriteFailed is returned when a cache entry cannot be written to disk.
	ErrCacheWriteFailed = zerr.New("failed to write cache entry")

	// ErrCacheDirInaccessible is returned when the cache directory cannot be created or read.
	ErrCacheDirInaccessible = zerr.New("cache directory is inaccessible")

	// ErrCacheDeleteFailed is returned when cache entries cannot be removed.
	ErrCacheDeleteFailed = zerr.New("failed to delete cache entries")

	// ErrUnknownStage is returned when a stage name cannot be parsed.
	ErrUnknownStage = zerr.New("unknown stage")

	// ErrStageFailed is returned when a whole-stage compute function fails.
	ErrStageFailed = zerr.New("stage execution failed")

	// ErrItemAnalysisFailed is returned when a single item's analysis fails.
	ErrItemAnalysisFailed = zerr.New("item analysis failed")

	// ErrFingerprintFailed is returned when a fingerprint cannot be computed for a subject.
	ErrFingerprintFailed = zerr.New("failed to compute fingerprint")

	// ErrSourceNotFound is returned when the source directory does not exist.
	ErrSourceNotFound = zerr.New("source directory not found")

	// ErrNoSourceSpecified is returned when no source directory is given on the
	// command line or in the configuration file.
	ErrNoSourceSpecified = zerr.New("no source directory specified")

	// ErrConflictingFlags is returned when --no-cache is combined with --clear-cache.
	ErrConflictingFlags = zerr.New("--no-cache and --clear-cache are mutually exclusive")

	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrUnknownProvider is returned when the configured AI provider is not supported.
	ErrUnknownProvider = zerr.New("unknown provider, expected 'openai', 'anthropic' or 'ollama'")

	// ErrMissingAPIKey is returned when the configured provider requires an API key
	// and the key environment variable is empty.
	ErrMissingAPIKey = zerr.New("provider API key not set")

	// ErrProviderRequestFailed is returned when a request to the AI provider fails.
	ErrProviderRequestFailed = zerr.New("provider request failed")

	// ErrProviderResponseInvalid is returned when the AI provider returns an unusable response.
	ErrProviderResponseInvalid = zerr.New("failed to parse provider response")

	// ErrMoveFailed is returned when moving a file into the taxonomy fails.
	ErrMoveFailed = zerr.New("failed to move file")

	// ErrMoveOutsideRoot is returned when a taxonomy assignment would place a
	// file outside the source root.
	ErrMoveOutsideRoot = zerr.New("move target is outside source root")

	// ErrPipelineFailed is returned when the pipeline aborts before completing.
	ErrPipelineFailed = zerr.New("pipeline execution failed")
)
