// Package exitcode fixes the process exit codes so operators can script
// against them.
package exitcode

const (
	Success         = 0
	UsageError      = 1
	ValidationError = 2
	DBConnError     = 3
	CopyError       = 4
	DetectError     = 5
	WriteError      = 6
)
