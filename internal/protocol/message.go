package protocol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

const (

	// Capacity of the string payload, including the terminating NUL.
	StringSize = 256

	// Encoded size of every message.
	Size = 4 + 4 + StringSize + 4
)

// Unit of transfer in both directions.
type Message struct {
	Field    Field  // Command the message belongs to.
	Type     Type   // Which payload field is meaningful.
	Int      int32  // Integer payload for TypeInt.
	Str      string // String payload for TypeString and TypeError.
	ReadMore bool   // More messages follow in this reply stream.
}

// Memory image of a message on the wire.
type record struct {
	Field    int32
	Type     int32
	Payload  [StringSize]byte
	ReadMore int32
}

// Returns a request for field without payload.
func Request(field Field) Message {
	return Message{Field: field, Type: field.Type()}
}

// Returns an integer request for field.
func IntRequest(field Field, v int) Message {
	return Message{Field: field, Type: TypeInt, Int: int32(v)}
}

// Returns a string request for field.
func StringRequest(field Field, s string) Message {
	return Message{Field: field, Type: TypeString, Str: s}
}

// Returns the final reply for field without payload.
func Done(field Field) Message {
	return Message{Field: field, Type: TypeNone}
}

// Returns a final integer reply.
func IntReply(field Field, v int) Message {
	return Message{Field: field, Type: TypeInt, Int: int32(v)}
}

// Returns a string reply that announces more messages.
func StringReply(field Field, s string) Message {
	return Message{Field: field, Type: TypeString, Str: s, ReadMore: true}
}

// Returns an error reply for field with a formatted description.
func Errorf(field Field, format string, args ...any) Message {
	return Message{Field: field, Type: TypeError, Str: fmt.Sprintf(format, args...)}
}

// Returns an error reply for field describing err.
func ErrorReply(field Field, err error) Message {
	return Message{Field: field, Type: TypeError, Str: err.Error()}
}

// Reports whether m ends its reply stream.
func (m Message) Last() bool {
	return m.Type == TypeError || !m.ReadMore
}

// Checks that the payload type matches what the field requires.
func (m Message) Validate() error {
	if !m.Field.Valid() {
		return fmt.Errorf("%w: %s", ErrUnknown, m.Field)
	}
	if m.Type != m.Field.Type() {
		return fmt.Errorf("%w: %s expects %s payload, got %s", ErrProtocol, m.Field, m.Field.Type(), m.Type)
	}
	return nil
}

// Encodes m into its fixed-size wire form. Strings longer than the payload
// capacity are truncated.
func (m Message) MarshalBinary() ([]byte, error) {
	r := record{Field: int32(m.Field), Type: int32(m.Type)}

	switch m.Type {
	case TypeInt:
		binary.NativeEndian.PutUint32(r.Payload[:4], uint32(m.Int))
	case TypeString, TypeError:
		copy(r.Payload[:StringSize-1], m.Str)
	}
	if m.ReadMore {
		r.ReadMore = 1
	}

	buf := bytes.NewBuffer(make([]byte, 0, Size))
	if err := binary.Write(buf, binary.NativeEndian, &r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decodes a message from exactly [Size] bytes.
func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) != Size {
		return fmt.Errorf("%w: %d bytes, want %d", ErrMessageSize, len(data), Size)
	}

	var r record
	if err := binary.Read(bytes.NewReader(data), binary.NativeEndian, &r); err != nil {
		return fmt.Errorf("%w: %w", ErrProtocol, err)
	}

	*m = Message{
		Field:    Field(r.Field),
		Type:     Type(r.Type),
		ReadMore: r.ReadMore != 0,
	}
	switch m.Type {
	case TypeInt:
		m.Int = int32(binary.NativeEndian.Uint32(r.Payload[:4]))
	case TypeString, TypeError:
		m.Str = cString(r.Payload[:])
	}
	return nil
}

// Writes one encoded message to w.
func Write(w io.Writer, m Message) error {
	data, err := m.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Reads one encoded message from r. A stream that ends before a whole
// message arrived yields [ErrMessageSize].
func Read(r io.Reader) (Message, error) {
	buf := make([]byte, Size)
	n, err := io.ReadFull(r, buf)
	if err == io.ErrUnexpectedEOF {
		return Message{}, fmt.Errorf("%w: %d bytes, want %d", ErrMessageSize, n, Size)
	}
	if err != nil {
		return Message{}, err
	}

	var m Message
	err = m.UnmarshalBinary(buf)
	return m, err
}

// Returns the text before the first NUL.
func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
