// Package protocol defines the fixed-layout binary message exchanged between
// the backlight client and daemon.
//
// Every transfer, in both directions, is a single [Message] encoded into
// exactly [Size] bytes. A client writes one request and then reads replies
// until it sees a message with ReadMore unset. An Error-typed reply carries
// a human-readable description and always ends the stream.
//
// The layout is a build-time contract and carries no version number, so the
// client and daemon must come from the same build:
//
//	offset  size  field
//	0       4     field     (int32, native byte order)
//	4       4     type      (int32)
//	8       256   payload   (int32 in the first 4 bytes, or NUL-terminated string)
//	264     4     read more (int32, 0 or 1)
//
// A [Handler] turns a request into its reply stream. The client and server
// roles each provide one.
package protocol
