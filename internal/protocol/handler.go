package protocol

// Ordered replies to a single request. A well-formed stream is non-empty and
// its last message is the only one for which [Message.Last] is true.
type Replies []Message

// Routes a decoded request to the code that serves it. Each process role
// implements Handler once and registers it at startup.
type Handler interface {
	Handle(Message) Replies
}

// Adapts a function to [Handler].
type HandlerFunc func(Message) Replies

// Calls f(m).
func (f HandlerFunc) Handle(m Message) Replies {
	return f(m)
}

// Returns r cut after its first final message, or with a None terminator
// for field appended when no message ends the stream.
func (r Replies) Terminated(field Field) Replies {
	for i, m := range r {
		if m.Last() {
			return r[:i+1]
		}
	}
	return append(r, Done(field))
}
