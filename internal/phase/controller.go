// Package phase implements the venue's time-zone-aware clock, trading-phase
// schedule, and tick/phase-transition event loop, grounded on the cron
// scheduler wiring in aristath-sentinel's internal/scheduler.
package phase

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/quodfinancial/venue-simulator/internal/config"
	"github.com/quodfinancial/venue-simulator/internal/obsmetrics"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
)

// TickListener and PhaseListener implement the bind<EventType>(callback)
// contract: every bound callback is invoked on each event, on the
// controller's own goroutine. Unlike a middleware Channel, this is
// multi-bind by design — the spec calls for "every bound callback", not
// at-most-one.
type TickListener func(protocol.TickEvent)
type PhaseListener func(protocol.PhaseTransitionEvent)

// Controller drives the venue's trading-phase schedule and tick cadence.
type Controller struct {
	log      zerolog.Logger
	metrics  *obsmetrics.Metrics
	loc      *time.Location
	schedule []config.PhaseSpec
	cron     *cron.Cron
	tickStop chan struct{}
	tickEvery time.Duration

	mu             sync.Mutex
	tickListeners  []TickListener
	phaseListeners []PhaseListener
	current        protocol.Phase
	haltedByAdmin  bool
	deferredPhase  *protocol.Phase
	started        bool
}

// New builds a Controller from cfg. The schedule itself is not yet
// scheduled; call Start to register cron jobs and begin the tick loop.
func New(cfg *config.Config, log zerolog.Logger, metrics *obsmetrics.Metrics) (*Controller, error) {
	loc, err := time.LoadLocation(cfg.TimezoneClock)
	if err != nil {
		return nil, fmt.Errorf("phase: %w", err)
	}
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = time.Second
	}
	return &Controller{
		log:       log.With().Str("component", "phase").Logger(),
		metrics:   metrics,
		loc:       loc,
		schedule:  cfg.TradingPhasesSchedule,
		cron:      cron.New(cron.WithSeconds(), cron.WithLocation(loc)),
		tickEvery: interval,
		current:   initialPhase(cfg.TradingPhasesSchedule, loc),
	}, nil
}

// initialPhase derives the phase active at startup from the schedule and
// the current time, defaulting to Closed if nothing matches (no schedule
// configured, or startup falls in a gap between windows).
func initialPhase(schedule []config.PhaseSpec, loc *time.Location) protocol.Phase {
	now := time.Now().In(loc)
	for _, spec := range schedule {
		start, err1 := parseClock(spec.StartTime, now, loc)
		end, err2 := parseClock(spec.EndTime, now, loc)
		if err1 != nil || err2 != nil {
			continue
		}
		if (now.Equal(start) || now.After(start)) && now.Before(end) {
			return parsePhaseName(spec.Phase)
		}
	}
	return protocol.PhaseClosed
}

func parseClock(hhmmss string, ref time.Time, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("15:04:05", hhmmss, loc)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(ref.Year(), ref.Month(), ref.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
}

func parsePhaseName(name string) protocol.Phase {
	switch name {
	case "Closed":
		return protocol.PhaseClosed
	case "OpeningAuction":
		return protocol.PhaseOpeningAuction
	case "ClosingAuction":
		return protocol.PhaseClosingAuction
	case "IntradayAuction":
		return protocol.PhaseIntradayAuction
	case "Halted":
		return protocol.PhaseHalted
	default:
		return protocol.PhaseOpen
	}
}

// BindTick registers fn to be invoked on every tick.
func (c *Controller) BindTick(fn TickListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickListeners = append(c.tickListeners, fn)
}

// BindPhaseTransition registers fn to be invoked on every phase boundary.
func (c *Controller) BindPhaseTransition(fn PhaseListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.phaseListeners = append(c.phaseListeners, fn)
}

// CurrentPhase reports the phase as of the last processed transition.
func (c *Controller) CurrentPhase() protocol.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Start registers one cron job per schedule boundary and begins the tick
// loop. Safe to call once; calling twice duplicates cron jobs.
func (c *Controller) Start() error {
	for _, spec := range c.schedule {
		spec := spec
		startExpr, err := toCronExpr(spec.StartTime)
		if err != nil {
			return fmt.Errorf("phase: invalid start_time %q for phase %q: %w", spec.StartTime, spec.Phase, err)
		}
		if _, err := c.cron.AddFunc(startExpr, func() {
			c.transitionTo(parsePhaseName(spec.Phase), spec.AllowCancels)
		}); err != nil {
			return fmt.Errorf("phase: schedule %q: %w", spec.Phase, err)
		}
	}
	c.cron.Start()

	c.tickStop = make(chan struct{})
	go c.tickLoop()

	c.mu.Lock()
	c.started = true
	c.mu.Unlock()

	c.log.Info().Int("phases", len(c.schedule)).Msg("phase controller started")
	return nil
}

// Stop halts the cron scheduler and the tick loop, waiting for any
// in-flight cron invocation to finish.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.started = false
	c.mu.Unlock()

	if c.tickStop != nil {
		close(c.tickStop)
	}
	ctx := c.cron.Stop()
	<-ctx.Done()
	c.log.Info().Msg("phase controller stopped")
}

func (c *Controller) tickLoop() {
	ticker := time.NewTicker(c.tickEvery)
	defer ticker.Stop()
	for {
		select {
		case <-c.tickStop:
			return
		case <-ticker.C:
			c.mu.Lock()
			listeners := append([]TickListener(nil), c.tickListeners...)
			c.mu.Unlock()
			for _, l := range listeners {
				l(protocol.TickEvent{})
			}
		}
	}
}

// transitionTo applies a scheduled phase boundary. A boundary that fires
// while the venue is admin-halted is deferred and applied on Resume,
// rather than silently overriding the halt — only an explicit
// ResumePhaseRequest can leave Halted.
func (c *Controller) transitionTo(newPhase protocol.Phase, allowCancels bool) {
	c.mu.Lock()
	if c.haltedByAdmin {
		c.deferredPhase = &newPhase
		c.mu.Unlock()
		c.log.Info().Str("phase", newPhase.String()).Msg("scheduled transition deferred: venue halted")
		return
	}
	c.current = newPhase
	listeners := append([]PhaseListener(nil), c.phaseListeners...)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordPhaseTransition(newPhase.String())
	}
	evt := protocol.PhaseTransitionEvent{NewPhase: newPhase, AllowCancels: allowCancels}
	for _, l := range listeners {
		l(evt)
	}
}

// Halt services a HaltPhaseRequest.
func (c *Controller) Halt(req protocol.HaltPhaseRequest) protocol.HaltPhaseReply {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return protocol.HaltPhaseReply{Result: protocol.UnableToHalt}
	}
	if c.haltedByAdmin {
		c.mu.Unlock()
		return protocol.HaltPhaseReply{Result: protocol.AlreadyHaltedByRequest}
	}
	if c.current == protocol.PhaseClosed {
		c.mu.Unlock()
		return protocol.HaltPhaseReply{Result: protocol.NoActivePhase}
	}
	c.haltedByAdmin = true
	c.current = protocol.PhaseHalted
	listeners := append([]PhaseListener(nil), c.phaseListeners...)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordPhaseTransition(protocol.PhaseHalted.String())
	}
	evt := protocol.PhaseTransitionEvent{NewPhase: protocol.PhaseHalted, AllowCancels: req.AllowCancels}
	for _, l := range listeners {
		l(evt)
	}
	return protocol.HaltPhaseReply{Result: protocol.Halted}
}

// Resume services a ResumePhaseRequest. If a scheduled boundary fired
// while halted, it is applied now; otherwise the phase reverts to Open.
func (c *Controller) Resume(protocol.ResumePhaseRequest) protocol.ResumePhaseReply {
	c.mu.Lock()
	if !c.haltedByAdmin {
		c.mu.Unlock()
		return protocol.ResumePhaseReply{Result: protocol.NoRequestedHalt}
	}
	c.haltedByAdmin = false
	next := protocol.PhaseOpen
	if c.deferredPhase != nil {
		next = *c.deferredPhase
		c.deferredPhase = nil
	}
	c.current = next
	listeners := append([]PhaseListener(nil), c.phaseListeners...)
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.RecordPhaseTransition(next.String())
	}
	evt := protocol.PhaseTransitionEvent{NewPhase: next, AllowCancels: true}
	for _, l := range listeners {
		l(evt)
	}
	return protocol.ResumePhaseReply{Result: protocol.Resumed}
}

// toCronExpr converts an "HH:MM:SS" schedule time to a seconds-precision
// cron expression that fires once a day at that instant.
func toCronExpr(hhmmss string) (string, error) {
	t, err := time.Parse("15:04:05", hhmmss)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %d %d * * *", t.Second(), t.Minute(), t.Hour()), nil
}
