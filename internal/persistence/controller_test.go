package persistence

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quodfinancial/venue-simulator/internal/config"
	"github.com/quodfinancial/venue-simulator/internal/instrument"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
)

type fakeFleet struct {
	states    []protocol.InstrumentState
	restored  []protocol.InstrumentState
}

func (f *fakeFleet) CaptureStates() []protocol.InstrumentState { return f.states }

func (f *fakeFleet) RestoreStates(states []protocol.InstrumentState) (int, int) {
	f.restored = states
	return len(states), 0
}

func sampleStates() []protocol.InstrumentState {
	id := instrument.ID(1)
	return []protocol.InstrumentState{
		{Instrument: &instrument.Instrument{Identifier: id}, Info: protocol.StateInfo{NextOrderID: 5}},
	}
}

func TestStore_DisabledReturnsPersistenceDisabled(t *testing.T) {
	cfg := config.Default()
	c := New(cfg, GobSerializer{}, &fakeFleet{}, zerolog.Nop(), nil)

	reply := c.Store()
	assert.Equal(t, protocol.StorePersistenceDisabled, reply.Result)
}

func TestStore_EmptyPathReturnsFilePathIsEmpty(t *testing.T) {
	cfg := config.Default()
	cfg.PersistenceEnabled = true
	c := New(cfg, GobSerializer{}, &fakeFleet{}, zerolog.Nop(), nil)

	reply := c.Store()
	assert.Equal(t, protocol.StoreFilePathIsEmpty, reply.Result)
}

func TestStoreThenRecover_RoundTripsFleetState(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venue.gob")
	cfg := config.Default()
	cfg.PersistenceEnabled = true
	cfg.PersistenceFilePath = path

	fleet := &fakeFleet{states: sampleStates()}
	c := New(cfg, GobSerializer{}, fleet, zerolog.Nop(), nil)

	storeReply := c.Store()
	require.Equal(t, protocol.Stored, storeReply.Result)

	recoverReply := c.Recover()
	require.Equal(t, protocol.Recovered, recoverReply.Result)
	require.Len(t, fleet.restored, 1)
	assert.Equal(t, instrument.ID(1), fleet.restored[0].Instrument.Identifier)
	assert.Equal(t, uint64(5), fleet.restored[0].Info.NextOrderID)
}

func TestRecover_MissingFileReturnsFilePathIsUnreachable(t *testing.T) {
	cfg := config.Default()
	cfg.PersistenceEnabled = true
	cfg.PersistenceFilePath = filepath.Join(t.TempDir(), "missing.gob")
	c := New(cfg, GobSerializer{}, &fakeFleet{}, zerolog.Nop(), nil)

	reply := c.Recover()
	assert.Equal(t, protocol.RecoverFilePathIsUnreachable, reply.Result)
}

func TestRecover_MalformedFileReturnsMalformedWithMessage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "venue.gob")
	require.NoError(t, os.WriteFile(path, []byte("not a valid gob stream"), 0o644))

	cfg := config.Default()
	cfg.PersistenceEnabled = true
	cfg.PersistenceFilePath = path
	c := New(cfg, GobSerializer{}, &fakeFleet{}, zerolog.Nop(), nil)

	reply := c.Recover()
	assert.Equal(t, protocol.RecoverFileIsMalformed, reply.Result)
	assert.NotEmpty(t, reply.ErrorMessage)
}

func TestMsgpackSerializer_RoundTrips(t *testing.T) {
	s := MsgpackSerializer{}
	data, err := s.Marshal(sampleStates())
	require.NoError(t, err)

	states, err := s.Unmarshal(data)
	require.NoError(t, err)
	require.Len(t, states, 1)
	assert.Equal(t, instrument.ID(1), states[0].Instrument.Identifier)
}
