// Package execution implements the single entry point between a gateway
// and the trading-engine fleet: resolve the request's instrument descriptor
// against the instrument cache, then either unicast a command to the one
// engine that owns the resolved instrument or reply with a typed reject.
package execution

import (
	"github.com/rs/zerolog"

	"github.com/quodfinancial/venue-simulator/internal/engine"
	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/middleware"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
)

// Fleet is the subset of repository.Repository the execution system
// depends on: route a command to one engine, or to all of them.
type Fleet interface {
	Unicast(id instrument.ID, cmd engine.Command) error
	Broadcast(cmd engine.Command)
}

// System is the sole admission point for trading requests into the engine
// fleet. Every Process* method follows the same shape: resolve, then
// either enqueue or reject — never both, never neither.
type System struct {
	cache   *instrument.Cache
	fleet   Fleet
	replies *middleware.TradingReplyChannel
	log     zerolog.Logger
}

// New returns an execution system resolving descriptors against cache and
// routing accepted requests through fleet.
func New(cache *instrument.Cache, fleet Fleet, replies *middleware.TradingReplyChannel, log zerolog.Logger) *System {
	return &System{cache: cache, fleet: fleet, replies: replies, log: log}
}

// rejectReason translates an instrument lookup failure into the wording
// the client-facing reject types carry. The three LookupErrorKind values
// are exhaustive; any other value is a programming error, not a reachable
// client-facing case.
func rejectReason(err error) string {
	lookupErr, ok := err.(*instrument.LookupError)
	if !ok {
		return err.Error()
	}
	switch lookupErr.Kind {
	case instrument.AmbiguousInstrumentDescriptor:
		return "cannot resolve listing uniquely"
	case instrument.MalformedInstrumentDescriptor:
		return "listing identification attributes set is malformed"
	default:
		return "listing not found"
	}
}

func (s *System) resolve(d instrument.Descriptor) (instrument.ID, error) {
	view, err := s.cache.Find(d)
	if err != nil {
		return 0, err
	}
	return view.Instrument().Identifier, nil
}

// ProcessOrderPlacement resolves req's instrument and either unicasts a
// PlaceOrderCommand or replies with an OrderPlacementReject.
func (s *System) ProcessOrderPlacement(req protocol.OrderPlacementRequest) {
	id, err := s.resolve(req.Instrument)
	if err != nil {
		s.emit(s.replies.OrderPlacementReject.Emit(protocol.OrderPlacementReject{
			Session: req.Session, ClientOrderID: req.ClientOrderID, Reason: rejectReason(err),
		}))
		return
	}
	s.unicast(id, engine.PlaceOrderCommand{Request: req})
}

// ProcessOrderModification resolves req's instrument and either unicasts
// an AmendOrderCommand or replies with an OrderModificationReject.
func (s *System) ProcessOrderModification(req protocol.OrderModificationRequest) {
	id, err := s.resolve(req.Instrument)
	if err != nil {
		s.emit(s.replies.OrderModificationReject.Emit(protocol.OrderModificationReject{
			Session: req.Session, OrderID: req.OrderID, ClientOrderID: req.ClientOrderID, Reason: rejectReason(err),
		}))
		return
	}
	s.unicast(id, engine.AmendOrderCommand{Request: req})
}

// ProcessOrderCancellation resolves req's instrument and either unicasts a
// CancelOrderCommand or replies with an OrderCancellationReject.
func (s *System) ProcessOrderCancellation(req protocol.OrderCancellationRequest) {
	id, err := s.resolve(req.Instrument)
	if err != nil {
		s.emit(s.replies.OrderCancellationReject.Emit(protocol.OrderCancellationReject{
			Session: req.Session, OrderID: req.OrderID, ClientOrderID: req.ClientOrderID, Reason: rejectReason(err),
		}))
		return
	}
	s.unicast(id, engine.CancelOrderCommand{Request: req})
}

// ProcessSecurityStatus resolves req's instrument and either unicasts a
// ProcessSecurityStatusRequestCommand or replies with a
// BusinessMessageReject: SecurityStatusRequest has no dedicated reject
// shape of its own.
func (s *System) ProcessSecurityStatus(req protocol.SecurityStatusRequest) {
	id, err := s.resolve(req.Instrument)
	if err != nil {
		s.emit(s.replies.BusinessMessageReject.Emit(protocol.BusinessMessageReject{
			Session: req.Session, Reason: rejectReason(err),
		}))
		return
	}
	s.unicast(id, engine.ProcessSecurityStatusRequestCommand{Request: req})
}

// ProcessMarketData applies the two rules unique to market data requests —
// exactly one instrument, no more, no fewer — before falling back to the
// ordinary resolve-then-unicast path.
func (s *System) ProcessMarketData(req protocol.MarketDataRequest) {
	switch len(req.Instruments) {
	case 0:
		s.emit(s.replies.MarketDataReject.Emit(protocol.MarketDataReject{
			Session: req.Session, SubscriberID: req.SubscriberID, Reason: "no instruments requested",
		}))
		return
	case 1:
		// falls through to resolution below
	default:
		s.emit(s.replies.MarketDataReject.Emit(protocol.MarketDataReject{
			Session: req.Session, SubscriberID: req.SubscriberID, Reason: "multiple instruments requested",
		}))
		return
	}

	id, err := s.resolve(req.Instruments[0])
	if err != nil {
		s.emit(s.replies.MarketDataReject.Emit(protocol.MarketDataReject{
			Session: req.Session, SubscriberID: req.SubscriberID, Reason: rejectReason(err),
		}))
		return
	}
	s.unicast(id, engine.ProcessMarketDataRequestCommand{Request: req, SubscriberID: req.SubscriberID})
}

// ProcessInstrumentState is internal-only (issued by the state generator,
// never a gateway): an unresolved instrument carries no reply route, so it
// is logged and dropped rather than rejected.
func (s *System) ProcessInstrumentState(req protocol.InstrumentStateRequest) {
	id, err := s.resolve(req.Instrument)
	if err != nil {
		s.log.Warn().Err(err).Msg("instrument state request dropped: instrument not resolved")
		return
	}
	if err := s.fleet.Unicast(id, engine.CaptureInstrumentStateCommand{Result: req.Result}); err != nil {
		s.log.Warn().Err(err).Msg("instrument state request dropped: enqueue failed")
	}
}

// HandleSessionTerminated broadcasts the session's departure to every
// engine in the fleet so each can run cancel-on-disconnect independently.
func (s *System) HandleSessionTerminated(event protocol.SessionTerminatedEvent) {
	s.fleet.Broadcast(engine.NotifyClientDisconnectedCommand{Session: event.Session})
}

func (s *System) unicast(id instrument.ID, cmd engine.Command) {
	if err := s.fleet.Unicast(id, cmd); err != nil {
		s.log.Warn().Err(err).Uint64("instrument", uint64(id)).Str("command", cmd.Name()).Msg("unicast failed")
	}
}

func (s *System) emit(err error) {
	if err != nil {
		s.log.Warn().Err(err).Msg("reject channel send failed")
	}
}
