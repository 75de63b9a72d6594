package domain

import "path/filepath"

const (
	// SiftDirName is the name of the internal metadata directory.
	SiftDirName = ".sift"

	// CacheDirName is the name of the stage cache directory.
	CacheDirName = "cache"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "sift.yaml"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644
)

// DefaultCachePath returns the default root directory of the stage cache.
func DefaultCachePath() string {
	return filepath.Join(SiftDirName, CacheDirName)
}
