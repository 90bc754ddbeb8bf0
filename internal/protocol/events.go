package protocol

import "github.com/quodfinancial/venue-simulator/internal/session"

// SessionTerminatedEvent notifies the fleet that a previously active
// session has gone away. The engine holds no owning reference to the
// session; on observing this event it runs cancel-on-disconnect for any
// resting orders still attributed to it and unsubscribes it from market
// data.
type SessionTerminatedEvent struct {
	Session session.Session
}

// TickEvent fires once per tick cadence from the phase controller's event
// loop.
type TickEvent struct{}

// Phase names the trading-phase state machine's states.
type Phase int

const (
	PhaseOpen Phase = iota
	PhaseClosed
	PhaseOpeningAuction
	PhaseClosingAuction
	PhaseIntradayAuction
	PhaseHalted
)

func (p Phase) String() string {
	switch p {
	case PhaseClosed:
		return "Closed"
	case PhaseOpeningAuction:
		return "OpeningAuction"
	case PhaseClosingAuction:
		return "ClosingAuction"
	case PhaseIntradayAuction:
		return "IntradayAuction"
	case PhaseHalted:
		return "Halted"
	default:
		return "Open"
	}
}

// PhaseTransitionEvent fires when the phase controller's clock crosses a
// scheduled boundary, or when an admin halt/resume forces one.
type PhaseTransitionEvent struct {
	NewPhase     Phase
	AllowCancels bool
}
