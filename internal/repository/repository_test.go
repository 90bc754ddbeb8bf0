package repository

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quodfinancial/venue-simulator/internal/config"
	"github.com/quodfinancial/venue-simulator/internal/engine"
	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/middleware"
	"github.com/quodfinancial/venue-simulator/internal/orders"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
	"github.com/quodfinancial/venue-simulator/internal/session"
)

func strPtr(s string) *string { return &s }

func newTestRepo(t *testing.T, n int) (*Repository, *instrument.Cache, []*engine.TradingEngine) {
	t.Helper()
	cache := instrument.NewCache()
	repo := New(cache, zerolog.Nop())
	engines := make([]*engine.TradingEngine, 0, n)
	for i := 0; i < n; i++ {
		inst := &instrument.Instrument{Symbol: strPtr("SYM")}
		cache.AddInstrument(inst)
		e := engine.New(inst, config.Default(), middleware.NewChannels(), nil, zerolog.Nop(), nil)
		repo.AddEngine(e)
		engines = append(engines, e)
	}
	return repo, cache, engines
}

func TestUnicast_RoutesToOwningEngine(t *testing.T) {
	repo, _, engines := newTestRepo(t, 2)
	engines[0].Start()
	defer engines[0].Shutdown()
	engines[1].Start()
	defer engines[1].Shutdown()

	result := make(chan protocol.InstrumentState, 1)
	require.NoError(t, repo.Unicast(engines[1].InstrumentID(), engine.CaptureInstrumentStateCommand{Result: result}))

	select {
	case state := <-result:
		assert.Equal(t, engines[1].InstrumentID(), state.Instrument.Identifier)
	case <-time.After(time.Second):
		t.Fatal("owning engine did not answer the capture command")
	}
}

func TestUnicast_UnknownInstrumentReturnsError(t *testing.T) {
	repo, _, _ := newTestRepo(t, 1)
	err := repo.Unicast(instrument.ID(999), engine.NotifyClientDisconnectedCommand{Session: session.Session{}})
	assert.Error(t, err)
}

func TestBroadcast_ReachesEveryEngine(t *testing.T) {
	repo, _, engines := newTestRepo(t, 3)
	for _, e := range engines {
		e.Start()
		defer e.Shutdown()
	}

	repo.Broadcast(engine.NotifyClientDisconnectedCommand{Session: session.Session{}})

	result := make(chan protocol.InstrumentState, len(engines))
	repo.Broadcast(engine.CaptureInstrumentStateCommand{Result: result})

	seen := make(map[instrument.ID]bool)
	for range engines {
		select {
		case state := <-result:
			seen[state.Instrument.Identifier] = true
		case <-time.After(time.Second):
			t.Fatal("broadcast did not reach every engine")
		}
	}
	for _, e := range engines {
		assert.True(t, seen[e.InstrumentID()], "engine %d not reached", e.InstrumentID())
	}
}

func TestCaptureStates_CollectsFromEveryEngine(t *testing.T) {
	repo, _, engines := newTestRepo(t, 2)
	for _, e := range engines {
		e.Start()
		defer e.Shutdown()
	}

	states := repo.CaptureStates()
	require.Len(t, states, 2)
}

func TestRestoreStates_SkipsUnresolvableSnapshot(t *testing.T) {
	repo, _, engines := newTestRepo(t, 1)
	engines[0].Start()
	defer engines[0].Shutdown()

	unknown := protocol.InstrumentState{Instrument: &instrument.Instrument{Symbol: strPtr("GHOST")}}
	restored, skipped := repo.RestoreStates([]protocol.InstrumentState{unknown})

	assert.Equal(t, 0, restored)
	assert.Equal(t, 1, skipped)
}

func TestRestoreStates_RestoresResolvableSnapshotByIdentifier(t *testing.T) {
	repo, _, engines := newTestRepo(t, 1)
	engines[0].Start()
	defer engines[0].Shutdown()

	state := protocol.InstrumentState{
		Instrument: &instrument.Instrument{Identifier: engines[0].InstrumentID(), Symbol: strPtr("SYM")},
		Orders: []orders.Order{
			{ID: 1, InstrumentID: engines[0].InstrumentID(), Side: orders.SideBuy, Type: orders.TypeLimit, Price: 100, Quantity: 10, Status: orders.StatusNew},
		},
		Info: protocol.StateInfo{NextOrderID: 2, Phase: "Closed"},
	}

	restored, skipped := repo.RestoreStates([]protocol.InstrumentState{state})
	assert.Equal(t, 1, restored)
	assert.Equal(t, 0, skipped)
}
