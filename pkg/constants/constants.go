// Package constants provides shared constants used throughout panbuild.
package constants

import "time"

// Timeouts.
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to registries.
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for CLI commands.
	CommandTimeout = 6 * time.Hour
)

// File permissions.
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x).
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--).
	FilePermissions = 0644
)

// Limits.
const (
	// DefaultPageSize is the page size requested from paginated registries.
	DefaultPageSize = 100

	// DefaultCacheSize is the number of records kept by the store read cache.
	DefaultCacheSize = 1024

	// MaxResponseSize bounds the size of a single registry response body.
	MaxResponseSize = 512 << 20
)

// Store layout.
const (
	// DefaultProjectsDir is where project records are persisted by default.
	DefaultProjectsDir = "./projects"

	// RecordExtension is the file extension of persisted project records.
	RecordExtension = ".yaml"

	// ReservedSeparator marks ids that are never persisted.
	ReservedSeparator = "--"

	// MergeOutputFileName is the consolidated batch merge artifact.
	MergeOutputFileName = "all_projects.json"
)

// HTTP.
const (
	// UserAgent is sent with every registry request.
	UserAgent = "panbuild"

	// AcceptJSON is the Accept header used for JSON registries.
	AcceptJSON = "application/json"
)

// Environment variables.
const (
	// EnvPrefix prefixes every configuration environment variable.
	EnvPrefix = "PB"

	// EnvOutDir names the batch merge directory.
	EnvOutDir = "PB_OUT_DIR"
)
