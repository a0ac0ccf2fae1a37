// Package client implements the short-lived client role of the backlight
// binary.
//
// A [Client] collects settings and exactly one command through its
// [protocol.Handler] implementation, then [Client.Run] carries the command
// out: it connects to the daemon socket, writes the request and prints every
// reply until the stream ends.
//
// Stop and restart never talk to the daemon beyond learning its PID. The PID
// comes from the PID file, or from the daemon itself if only the socket is
// left. The daemon is sent SIGTERM; for restart the client then replaces
// itself with the daemon's original command line without waiting for the old
// process to exit.
//
// Example usage:
//
//	c := client.New(os.Stdout)
//	c.Handle(protocol.Request(protocol.FieldIncrease))
//
//	if err := c.Run(ctx); err != nil {
//	    return err
//	}
package client
