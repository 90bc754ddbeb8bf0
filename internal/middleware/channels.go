package middleware

import "github.com/quodfinancial/venue-simulator/internal/protocol"

// TradingRequestChannel routes order placement/amend/cancel, market-data
// request, and security-status request onto the engine fleet. Engine
// processing happens asynchronously on the target instrument's command
// queue, so this channel is emit-style (fire-and-forget into the
// execution system) rather than request/reply: the eventual reply is
// delivered separately, through TradingReplyChannel, once the engine
// drains its notification cache. Each request type gets its own typed
// slot rather than one boxed any-channel, since Go generics give us
// compile-time receiver typing per request shape.
type TradingRequestChannel struct {
	Placement       EventChannel[protocol.OrderPlacementRequest]
	Modification    EventChannel[protocol.OrderModificationRequest]
	Cancellation    EventChannel[protocol.OrderCancellationRequest]
	MarketData      EventChannel[protocol.MarketDataRequest]
	SecurityStatus  EventChannel[protocol.SecurityStatusRequest]
	InstrumentState EventChannel[protocol.InstrumentStateRequest]
}

// TradingReplyChannel is the dispatcher every reply variant emits through;
// it fans messages out to the session encoded in each reply.
type TradingReplyChannel struct {
	ExecutionReport               EventChannel[protocol.ExecutionReport]
	BusinessMessageReject         EventChannel[protocol.BusinessMessageReject]
	OrderPlacementConfirmation    EventChannel[protocol.OrderPlacementConfirmation]
	OrderPlacementReject          EventChannel[protocol.OrderPlacementReject]
	OrderModificationConfirmation EventChannel[protocol.OrderModificationConfirmation]
	OrderModificationReject       EventChannel[protocol.OrderModificationReject]
	OrderCancellationConfirmation EventChannel[protocol.OrderCancellationConfirmation]
	OrderCancellationReject       EventChannel[protocol.OrderCancellationReject]
	MarketDataSnapshot            EventChannel[protocol.MarketDataSnapshot]
	MarketDataUpdate              EventChannel[protocol.MarketDataUpdate]
	MarketDataReject              EventChannel[protocol.MarketDataReject]
	SecurityStatus                EventChannel[protocol.SecurityStatus]
}

// TradingAdminChannel carries halt/resume and store/recover requests from
// the admin REST surface into the phase and persistence controllers.
type TradingAdminChannel struct {
	Halt    Channel[protocol.HaltPhaseRequest, protocol.HaltPhaseReply]
	Resume  Channel[protocol.ResumePhaseRequest, protocol.ResumePhaseReply]
	Store   Channel[protocol.StoreMarketStateRequest, protocol.StoreMarketStateReply]
	Recover Channel[protocol.RecoverMarketStateRequest, protocol.RecoverMarketStateReply]
}

// GeneratorAdminChannel carries generation status/start/stop requests from
// the admin REST surface into the synthetic-flow generator. The generator
// itself is an external collaborator (non-goal); this channel is the
// core's contract surface with it.
type GeneratorAdminChannel struct {
	Status Channel[protocol.GenerationStatusRequest, protocol.GenerationStatusReply]
	Start  Channel[protocol.GenerationStartRequest, protocol.GenerationStartReply]
	Stop   Channel[protocol.GenerationStopRequest, protocol.GenerationStopReply]
}

// SessionEventChannel carries session-terminated notifications from the
// gateway into the engine fleet.
type SessionEventChannel struct {
	Terminated EventChannel[protocol.SessionTerminatedEvent]
}

// Channels bundles the five named channels the facade wires at startup and
// tears down at shutdown.
type Channels struct {
	TradingRequest      TradingRequestChannel
	TradingReply        TradingReplyChannel
	TradingAdmin        TradingAdminChannel
	GeneratorAdmin      GeneratorAdminChannel
	TradingSessionEvent SessionEventChannel
}

// NewChannels returns an unbound Channels bundle.
func NewChannels() *Channels {
	return &Channels{}
}
