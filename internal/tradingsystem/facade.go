// Package tradingsystem wires every other package into one running venue:
// the instrument cache, the per-instrument engine fleet, the execution
// system, the phase controller, and the persistence controller, all
// mediated through the middleware channels. It is the single type a
// gateway or demo binary constructs to stand up a venue.
package tradingsystem

import (
	"runtime"
	"sync"

	"github.com/rs/zerolog"

	"github.com/quodfinancial/venue-simulator/internal/config"
	"github.com/quodfinancial/venue-simulator/internal/engine"
	"github.com/quodfinancial/venue-simulator/internal/events"
	"github.com/quodfinancial/venue-simulator/internal/execution"
	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/middleware"
	"github.com/quodfinancial/venue-simulator/internal/obsmetrics"
	"github.com/quodfinancial/venue-simulator/internal/persistence"
	"github.com/quodfinancial/venue-simulator/internal/phase"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
	"github.com/quodfinancial/venue-simulator/internal/repository"
	"github.com/quodfinancial/venue-simulator/internal/workerpool"
)

// Facade is the venue: every collaborator the spec names (C1-C7), wired
// together and exposed as one lifecycle (New, Start, Terminate).
type Facade struct {
	cfg      *config.Config
	cache    *instrument.Cache
	channels *middleware.Channels
	repo     *repository.Repository
	exec     *execution.System
	phase    *phase.Controller
	persist  *persistence.Controller
	audit    *events.Batcher
	log      zerolog.Logger
	pool     *workerpool.Pool

	terminateOnce sync.Once
}

// New constructs a venue serving instruments, recovering persisted state
// once before anything else runs, mirroring the constructor order of the
// system this core is modeled on: engines are created, state is recovered
// into them, and only then is the event loop (phase controller, engine
// queues) started.
func New(cfg *config.Config, instruments []*instrument.Instrument, serializer persistence.Serializer, audit *events.Batcher, log zerolog.Logger, metrics *obsmetrics.Metrics) (*Facade, error) {
	log = log.With().Str("component", "tradingsystem").Str("venue", cfg.VenueID).Logger()

	cache := instrument.NewCache()
	channels := middleware.NewChannels()
	repo := repository.New(cache, log)

	pool := workerpool.New(runtime.NumCPU())

	// Every instrument in the startup list is freshly assigned an internal
	// identifier here; Cache.Load (bulk-assign-nothing) is for the recovery
	// path instead, where identifiers must already be fixed.
	// Engine construction is cheap (struct allocation, no goroutines yet)
	// and runs sequentially; the pool is reserved for the one-goroutine-
	// per-engine work in Start/Terminate below.
	for _, inst := range instruments {
		cache.AddInstrument(inst)
		e := engine.New(inst, cfg, channels, audit, log, metrics)
		repo.AddEngine(e)
	}

	exec := execution.New(cache, repo, &channels.TradingReply, log)
	persist := persistence.New(cfg, serializer, repo, log, metrics)

	phaseController, err := phase.New(cfg, log, metrics)
	if err != nil {
		return nil, err
	}

	f := &Facade{
		cfg:      cfg,
		cache:    cache,
		channels: channels,
		repo:     repo,
		exec:     exec,
		phase:    phaseController,
		persist:  persist,
		audit:    audit,
		log:      log,
		pool:     pool,
	}

	f.bindChannels()

	if cfg.PersistenceEnabled {
		reply := f.persist.Recover()
		f.log.Info().Str("result", reply.Result.String()).Msg("recovered persisted fleet state on startup")
	}

	return f, nil
}

// bindChannels registers the facade's own methods and collaborators as the
// receivers for every middleware channel. GeneratorAdmin is deliberately
// left unbound: the synthetic-flow generator is an external collaborator
// and out of scope for this core.
func (f *Facade) bindChannels() {
	f.channels.TradingRequest.Placement.Bind(f.exec.ProcessOrderPlacement)
	f.channels.TradingRequest.Modification.Bind(f.exec.ProcessOrderModification)
	f.channels.TradingRequest.Cancellation.Bind(f.exec.ProcessOrderCancellation)
	f.channels.TradingRequest.MarketData.Bind(f.exec.ProcessMarketData)
	f.channels.TradingRequest.SecurityStatus.Bind(f.exec.ProcessSecurityStatus)
	f.channels.TradingRequest.InstrumentState.Bind(f.exec.ProcessInstrumentState)

	f.channels.TradingSessionEvent.Terminated.Bind(f.exec.HandleSessionTerminated)

	f.channels.TradingAdmin.Halt.Bind(f.phase.Halt)
	f.channels.TradingAdmin.Resume.Bind(f.phase.Resume)
	f.channels.TradingAdmin.Store.Bind(func(protocol.StoreMarketStateRequest) protocol.StoreMarketStateReply {
		return f.persist.Store()
	})
	f.channels.TradingAdmin.Recover.Bind(func(protocol.RecoverMarketStateRequest) protocol.RecoverMarketStateReply {
		return f.persist.Recover()
	})

	f.phase.BindTick(func(protocol.TickEvent) { f.repo.Broadcast(engine.TickCommand{}) })
	f.phase.BindPhaseTransition(func(evt protocol.PhaseTransitionEvent) {
		f.repo.Broadcast(engine.PhaseTransitionCommand{Event: evt})
	})
}

// Channels exposes the middleware bundle a gateway binds transport-facing
// listeners onto (e.g. a FIX acceptor emitting OrderPlacementRequest) and
// drains replies from.
func (f *Facade) Channels() *middleware.Channels { return f.channels }

// InstrumentCache exposes the cache a gateway resolves descriptors against
// before constructing requests, and a generator uses to enumerate tradable
// instruments.
func (f *Facade) InstrumentCache() *instrument.Cache { return f.cache }

// Start begins every engine's command queue and the phase controller's
// schedule/tick loop. Must be called after New and before any request is
// sent through the middleware channels.
func (f *Facade) Start() error {
	var engines []*engine.TradingEngine
	f.repo.ForEach(func(e *engine.TradingEngine) { engines = append(engines, e) })

	tasks := make([]func(), len(engines))
	for i, e := range engines {
		e := e
		tasks[i] = func() { e.Start() }
	}
	f.pool.Run(tasks)

	if f.audit != nil {
		f.audit.Start()
	}

	if err := f.phase.Start(); err != nil {
		return err
	}
	f.log.Info().Int("instruments", len(engines)).Msg("trading system started")
	return nil
}

// Terminate stores the fleet's current state, then tears down the phase
// controller and every engine's command queue, in that order — a store
// that races a half-shutdown fleet would capture a partially drained book.
// Idempotent: calling Terminate more than once only runs teardown once.
func (f *Facade) Terminate() {
	f.terminateOnce.Do(func() {
		if f.cfg.PersistenceEnabled {
			reply := f.persist.Store()
			f.log.Info().Str("result", reply.Result.String()).Msg("stored fleet state before shutdown")
		}

		f.phase.Stop()

		var engines []*engine.TradingEngine
		f.repo.ForEach(func(e *engine.TradingEngine) { engines = append(engines, e) })
		tasks := make([]func(), len(engines))
		for i, e := range engines {
			e := e
			tasks[i] = func() { e.Shutdown() }
		}
		f.pool.Run(tasks)

		if f.audit != nil {
			f.audit.Shutdown()
		}
		f.log.Info().Msg("trading system terminated")
	})
}
