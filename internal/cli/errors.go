package cli

import "errors"

var (
	ErrUsage    = errors.New("missing or unknown command")
	ErrArgument = errors.New("invalid argument")
	ErrRun      = errors.New("command failed")
)

// Returns the process exit status for an error returned by [Execute].
//
//	0  success
//	1  missing or unknown command
//	2  invalid argument
//	3  the command failed
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrUsage):
		return 1
	case errors.Is(err, ErrArgument):
		return 2
	default:
		return 3
	}
}
