package core

// Frame is an encoded outbound event.
type Frame []byte

// SignalConnection abstracts for a system messaging transport
// Owned by the adapter; the adapter must Close() it.
type SignalConnection interface {
	// TrySend never blocks. A full or closed transport drops the frame and returns an error.
	TrySend(Frame) error
	Close()
}
