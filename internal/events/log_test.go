package events

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog_AppendAssignsSequenceNumbers(t *testing.T) {
	l, err := NewLog(Config{Path: filepath.Join(t.TempDir(), "audit.log")})
	require.NoError(t, err)
	defer l.Close()

	seq1, err := l.Append(&NewOrderEvent{Header: Header{Timestamp: time.Now()}, OrderID: 1})
	require.NoError(t, err)
	seq2, err := l.Append(&NewOrderEvent{Header: Header{Timestamp: time.Now()}, OrderID: 2})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), seq1)
	assert.Equal(t, uint64(2), seq2)
	assert.Equal(t, uint64(2), l.LastSequence())
}

func TestLog_ReplayRecoversAllEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := NewLog(Config{Path: path})
	require.NoError(t, err)

	_, err = l.Append(&FillEvent{Header: Header{Timestamp: time.Now()}, TradeID: 1, Quantity: 10})
	require.NoError(t, err)
	_, err = l.Append(&FillEvent{Header: Header{Timestamp: time.Now()}, TradeID: 2, Quantity: 20})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	reopened, err := NewLog(Config{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	var replayed []interface{}
	err = reopened.Replay(func(seq uint64, event interface{}) error {
		replayed = append(replayed, event)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, replayed, 2)
	assert.Equal(t, uint64(1), replayed[0].(*FillEvent).TradeID)
}

func TestLog_RecoversLastSequenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")
	l, err := NewLog(Config{Path: path})
	require.NoError(t, err)
	_, err = l.Append(&OrderCancelledEvent{Header: Header{Timestamp: time.Now()}, OrderID: 1})
	require.NoError(t, err)
	require.NoError(t, l.Close())

	reopened, err := NewLog(Config{Path: path})
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, uint64(1), reopened.LastSequence())
}
