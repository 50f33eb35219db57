package domain

// ClientState tracks the client lifecycle. A client is Created while peer
// initialization is in flight, Initialized for its whole useful life, and
// Shutdown forever after the first shutdown call. There is no way back from
// Shutdown.
type ClientState int

const (
	StateCreated ClientState = iota
	StateInitialized
	StateShutdown
)

func (s ClientState) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}
