package ir

// Version constants for the wire format.
const (
	// WireVersion is the version stamped on batch documents and element objects.
	WireVersion = 1

	// ClientVersion is the hexwar client version.
	ClientVersion = "0.3.0"
)
