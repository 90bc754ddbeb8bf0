// Package repository implements the trading-engine fleet: the map from
// internal instrument identity to the engine that owns it, and the
// unicast/broadcast dispatch the execution system and admin controllers use
// to reach one engine or all of them.
package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quodfinancial/venue-simulator/internal/engine"
	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
)

// Repository owns every trading engine in the fleet, keyed by the instrument
// it serves. One engine is created per cached instrument and never moved or
// replaced; the repository's job is routing, not lifecycle management
// beyond Start/Shutdown.
type Repository struct {
	mu      sync.RWMutex
	engines map[instrument.ID]*engine.TradingEngine
	cache   *instrument.Cache
	log     zerolog.Logger
}

// New returns an empty repository backed by cache for identity resolution
// on the recovery path.
func New(cache *instrument.Cache, log zerolog.Logger) *Repository {
	return &Repository{
		engines: make(map[instrument.ID]*engine.TradingEngine),
		cache:   cache,
		log:     log,
	}
}

// AddEngine registers e under its own instrument id, replacing any prior
// engine for that id.
func (r *Repository) AddEngine(e *engine.TradingEngine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e.InstrumentID()] = e
}

// Get returns the engine for id, if one is registered.
func (r *Repository) Get(id instrument.ID) (*engine.TradingEngine, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[id]
	return e, ok
}

// Unicast enqueues cmd on the single engine owning id. Returns an error if
// no engine is registered for id or the engine's queue rejected the
// command.
func (r *Repository) Unicast(id instrument.ID, cmd engine.Command) error {
	e, ok := r.Get(id)
	if !ok {
		return fmt.Errorf("repository: no engine for instrument %d", id)
	}
	return e.Enqueue(cmd)
}

// Broadcast enqueues cmd on every engine in the fleet, logging (not
// returning) any individual enqueue failure so one saturated queue never
// blocks delivery to the rest of the fleet.
func (r *Repository) Broadcast(cmd engine.Command) {
	r.mu.RLock()
	engines := make([]*engine.TradingEngine, 0, len(r.engines))
	for _, e := range r.engines {
		engines = append(engines, e)
	}
	r.mu.RUnlock()

	for _, e := range engines {
		if err := e.Enqueue(cmd); err != nil {
			r.log.Warn().Err(err).Uint64("instrument", uint64(e.InstrumentID())).Msg("broadcast enqueue failed")
		}
	}
}

// ForEach invokes fn for every registered engine, serially, after the
// repository's lock has been released. fn may block (CaptureStates waits
// on each engine in turn), which delays the calls for the remaining engines.
func (r *Repository) ForEach(fn func(*engine.TradingEngine)) {
	r.mu.RLock()
	engines := make([]*engine.TradingEngine, 0, len(r.engines))
	for _, e := range r.engines {
		engines = append(engines, e)
	}
	r.mu.RUnlock()

	for _, e := range engines {
		fn(e)
	}
}

// Start begins command processing on every engine in the fleet.
func (r *Repository) Start() {
	r.ForEach(func(e *engine.TradingEngine) { e.Start() })
}

// Shutdown stops command processing on every engine in the fleet.
func (r *Repository) Shutdown() {
	r.ForEach(func(e *engine.TradingEngine) { e.Shutdown() })
}

// captureTimeout bounds how long Repository waits for one engine to answer
// a StoreStateCommand before giving up on it; a wedged engine must not hang
// the whole persistence pass.
const captureTimeout = 5 * time.Second

// CaptureStates implements persistence.Fleet by issuing a StoreStateCommand
// to every engine and collecting the results, in no particular order.
func (r *Repository) CaptureStates() []protocol.InstrumentState {
	var states []protocol.InstrumentState
	r.ForEach(func(e *engine.TradingEngine) {
		result := make(chan protocol.InstrumentState, 1)
		if err := e.Enqueue(engine.StoreStateCommand{Result: result}); err != nil {
			r.log.Warn().Err(err).Uint64("instrument", uint64(e.InstrumentID())).Msg("store state enqueue failed")
			return
		}
		select {
		case state := <-result:
			states = append(states, state)
		case <-time.After(captureTimeout):
			r.log.Warn().Uint64("instrument", uint64(e.InstrumentID())).Msg("store state timed out")
		}
	})
	return states
}

// RestoreStates implements persistence.Fleet by resolving each snapshot's
// instrument back to a live engine — by identifier first, falling back to
// attribute matching for a snapshot whose identifier did not survive
// unchanged — and issuing a RecoverStateCommand to it. Unresolvable
// snapshots are logged and skipped, never treated as a fatal recover
// failure.
func (r *Repository) RestoreStates(states []protocol.InstrumentState) (restored, skipped int) {
	for _, state := range states {
		id, ok := r.resolve(state.Instrument)
		if !ok {
			r.log.Warn().Msg("persistence: recovered snapshot matches no cached instrument, skipping")
			skipped++
			continue
		}
		e, ok := r.Get(id)
		if !ok {
			r.log.Warn().Uint64("instrument", uint64(id)).Msg("persistence: no engine for resolved instrument, skipping")
			skipped++
			continue
		}
		if err := e.Enqueue(engine.RecoverStateCommand{State: state}); err != nil {
			r.log.Warn().Err(err).Uint64("instrument", uint64(id)).Msg("recover state enqueue failed")
			skipped++
			continue
		}
		restored++
	}
	return restored, skipped
}

func (r *Repository) resolve(snapshot *instrument.Instrument) (instrument.ID, bool) {
	if snapshot == nil {
		return 0, false
	}
	if inst, ok := r.cache.Get(snapshot.Identifier); ok {
		return inst.Identifier, true
	}
	if view, err := r.cache.FindInstrument(snapshot); err == nil {
		return view.Instrument().Identifier, true
	}
	return 0, false
}
