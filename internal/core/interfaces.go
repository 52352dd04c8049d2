package core

// Frame is a raw outbound payload (already-encoded JSON event).
type Frame []byte

// SessionID identifies one transport connection, distinct from the
// participant identity riding on it.
type SessionID string

// SignalConnection abstracts a system messaging transport.
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	TrySend(Frame) error
	Close()
}
