package protocol

// Decoding limits for inbound messages.
const (
	// MaxMessageSize bounds a single inbound message in bytes.
	MaxMessageSize = 64 * 1024

	// MaxDataEntries bounds the number of payload entries per event.
	MaxDataEntries = 64

	// MaxIdentityLength bounds the length of an identity on the wire.
	MaxIdentityLength = 256
)
