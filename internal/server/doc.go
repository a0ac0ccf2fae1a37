// Package server implements the backlight daemon.
//
// The daemon owns one backlight device and listens on a Unix domain socket
// for fixed-size binary messages from the backlight client. Each connection
// carries one request; the daemon handles it completely, writes the reply
// stream and then waits for the client to hang up.
//
// Everything runs on a single event loop. Each iteration first ticks the
// transition engine, which moves the device one step toward the requested
// level and decides how long the loop may sleep, and then waits in poll(2)
// for the listening socket, client connections or a shutdown request. A
// fixed number of connection slots bounds the number of clients served at
// once; connections beyond that are accepted and immediately closed.
//
// Settings that only make sense before the socket exists (paths, daemon
// mode) are applied through the same [Server.Handle] entry point as runtime
// commands, so the command line and the socket share one dispatcher.
//
// Example usage:
//
//	srv := server.New(server.Config{})
//	srv.Handle(protocol.StringRequest(protocol.FieldWorkdir, "/tmp/backlight"))
//
//	if err := srv.Start(); err != nil {
//	    return err
//	}
//	defer srv.Stop()
//
//	return srv.Run(ctx) // returns when ctx is cancelled
package server
