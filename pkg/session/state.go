// Package session owns the conversational session lifecycle.
//
// A Manager starts and supersedes sessions: it archives the transcript,
// fetches a session credential with bounded retry, and tears down the old
// transport before connecting a new one. A Dispatcher is the single ingress
// for inbound protocol events; every mutation of the transcript, the audio
// player and the session status goes through it.
package session

// Status is the session lifecycle state.
type Status int

const (
	// StatusIdle means no session has been started.
	StatusIdle Status = iota

	// StatusNegotiating means the session credential is being fetched.
	StatusNegotiating

	// StatusConnecting means the wire connection is being established.
	StatusConnecting

	// StatusReady means the agent confirmed the session.
	StatusReady

	// StatusFailed means the last start attempt failed terminally. A fresh
	// Start supersedes it.
	StatusFailed
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusNegotiating:
		return "negotiating"
	case StatusConnecting:
		return "connecting"
	case StatusReady:
		return "ready"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
