// Provides default filesystem locations for the backlight daemon.
//
// The working directory holds the persisted configuration, the PID file and
// the control socket. When running as root it lives under /var/lib, the
// conventional place for daemon state; otherwise it follows the XDG state
// directory of the invoking user. Every path can be overridden from the
// command line.
package paths
