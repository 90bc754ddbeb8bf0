package protocol

// HaltResult enumerates the outcomes of a HaltPhaseRequest.
type HaltResult int

const (
	Halted HaltResult = iota
	AlreadyHaltedByRequest
	NoActivePhase
	UnableToHalt
)

func (r HaltResult) String() string {
	switch r {
	case AlreadyHaltedByRequest:
		return "AlreadyHaltedByRequest"
	case NoActivePhase:
		return "NoActivePhase"
	case UnableToHalt:
		return "UnableToHalt"
	default:
		return "Halted"
	}
}

// ResumeResult enumerates the outcomes of a ResumePhaseRequest.
type ResumeResult int

const (
	Resumed ResumeResult = iota
	NoRequestedHalt
)

func (r ResumeResult) String() string {
	if r == NoRequestedHalt {
		return "NoRequestedHalt"
	}
	return "Resumed"
}

// HaltPhaseRequest asks the phase controller to halt trading across the
// entire fleet.
type HaltPhaseRequest struct {
	AllowCancels bool
}

// HaltPhaseReply carries the outcome of a HaltPhaseRequest.
type HaltPhaseReply struct {
	Result HaltResult
}

// ResumePhaseRequest asks the phase controller to leave Halted.
type ResumePhaseRequest struct{}

// ResumePhaseReply carries the outcome of a ResumePhaseRequest.
type ResumePhaseReply struct {
	Result ResumeResult
}

// StoreResult enumerates the outcomes of a StoreMarketStateRequest.
type StoreResult int

const (
	Stored StoreResult = iota
	StorePersistenceDisabled
	StoreFilePathIsEmpty
	StoreFilePathIsUnreachable
	StoreErrorOpeningFile
	StoreErrorWritingFile
)

func (r StoreResult) String() string {
	switch r {
	case StorePersistenceDisabled:
		return "PersistenceDisabled"
	case StoreFilePathIsEmpty:
		return "PersistenceFilePathIsEmpty"
	case StoreFilePathIsUnreachable:
		return "PersistenceFilePathIsUnreachable"
	case StoreErrorOpeningFile:
		return "ErrorWhenOpeningPersistenceFile"
	case StoreErrorWritingFile:
		return "ErrorWhenWritingToPersistenceFile"
	default:
		return "Stored"
	}
}

// RecoverResult enumerates the outcomes of a RecoverMarketStateRequest.
type RecoverResult int

const (
	Recovered RecoverResult = iota
	RecoverPersistenceDisabled
	RecoverFilePathIsEmpty
	RecoverFilePathIsUnreachable
	RecoverErrorOpeningFile
	RecoverFileIsMalformed
)

func (r RecoverResult) String() string {
	switch r {
	case RecoverPersistenceDisabled:
		return "PersistenceDisabled"
	case RecoverFilePathIsEmpty:
		return "PersistenceFilePathIsEmpty"
	case RecoverFilePathIsUnreachable:
		return "PersistenceFilePathIsUnreachable"
	case RecoverErrorOpeningFile:
		return "ErrorWhenOpeningPersistenceFile"
	case RecoverFileIsMalformed:
		return "PersistenceFileIsMalformed"
	default:
		return "Recovered"
	}
}

// StoreMarketStateRequest asks the persistence controller to serialize the
// fleet's current state to the configured file path.
type StoreMarketStateRequest struct{}

// StoreMarketStateReply carries the outcome of a store attempt.
type StoreMarketStateReply struct {
	Result StoreResult
}

// RecoverMarketStateRequest asks the persistence controller to read the
// configured file and re-hydrate every matching engine.
type RecoverMarketStateRequest struct{}

// RecoverMarketStateReply carries the outcome of a recover attempt, with a
// human-readable ErrorMessage populated when Result is RecoverFileIsMalformed.
type RecoverMarketStateReply struct {
	Result       RecoverResult
	ErrorMessage string
}

// GenerationStatus enumerates the synthetic-flow generator's run state, as
// observed through the generator-admin channel. The generator's internal
// algorithm is a non-goal; only this status contract is part of the core.
type GenerationStatus int

const (
	GenerationStopped GenerationStatus = iota
	GenerationRunning
)

// GenerationStatusRequest asks the generator for its current run state.
type GenerationStatusRequest struct{}

// GenerationStatusReply carries the generator's current run state.
type GenerationStatusReply struct {
	Status GenerationStatus
}

// GenerationStartRequest asks the generator to begin producing synthetic
// order flow.
type GenerationStartRequest struct{}

// GenerationStartReply acknowledges a start request.
type GenerationStartReply struct {
	Status GenerationStatus
}

// GenerationStopRequest asks the generator to stop producing synthetic
// order flow.
type GenerationStopRequest struct{}

// GenerationStopReply acknowledges a stop request.
type GenerationStopReply struct {
	Status GenerationStatus
}
