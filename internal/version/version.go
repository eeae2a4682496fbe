// Package version holds the application version, stamped into backups and
// status responses.
package version

// Version is the current release.
const Version = "0.1.0"
