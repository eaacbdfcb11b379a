// Package constants provides shared constants used throughout the bidcompare
// codebase: timeouts, limits, file permissions and the fixed labels the
// report is rendered with.
package constants

import "time"

// Timeout constants
const (
	// DefaultHTTPTimeout is the standard timeout for fetching one endpoint
	DefaultHTTPTimeout = 30 * time.Second

	// CommandTimeout is the default timeout for a whole CLI run
	CommandTimeout = 5 * time.Minute

	// ShutdownTimeout bounds cleanup after a failed command
	ShutdownTimeout = 5 * time.Second
)

// File permission constants define standard Unix file permissions
const (
	// DirPermissions is the default permission for created directories (rwxr-xr-x)
	DirPermissions = 0755

	// FilePermissions is the default permission for created files (rw-r--r--)
	FilePermissions = 0644
)

// Limit constants
const (
	// MaxConcurrentLoads caps concurrent endpoint fetches
	MaxConcurrentLoads = 5

	// MaxResponseBytes caps the size of one fetched document (64 MiB)
	MaxResponseBytes = 64 << 20
)

// Report constants
const (
	// DiffSeparator joins the truth and destination values in a change description
	DiffSeparator = " ⇒ "

	// ReportTitle is printed above the discrepancy table
	ReportTitle = "Bid differences"
)

// Path constants
const (
	// ConfigFileName is the config file name searched in $HOME and the working directory
	ConfigFileName = ".bidcompare"

	// EnvPrefix is the prefix for environment overrides (BIDCOMPARE_TIMEOUT, ...)
	EnvPrefix = "BIDCOMPARE"
)
