// Parses the command line of the backlight binary and runs the selected
// role.
//
// The same binary is both the daemon and its client. The start command runs
// the daemon; every other command runs a short-lived client that forwards
// one request over the control socket and prints the replies.
//
//	backlight [flags] start
//	backlight [flags] increase | decrease | on | off | switch
//	backlight [flags] stop | restart | saved | list
//	backlight [flags] minimal N | num-levels N | transition N | devname NAME
//
// Global flags:
//
//	-w, --workdir   Working directory for state files.
//	-s, --socket    Control socket path.
//	-p, --pidfile   PID file path.
//	-c, --config    Configuration record path (daemon only).
//	-d, --daemon    Detach from the terminal (daemon only).
//	-q, --quiet     Suppress informational output.
//	-v, --verbose   Enable verbose output.
//	    --debug     Enable debug output.
//
// Flags are turned into protocol messages and applied through the role's
// handler, so the client and the daemon validate them the same way. The
// process exit status is derived from the returned error by [ExitCode].
package cli
