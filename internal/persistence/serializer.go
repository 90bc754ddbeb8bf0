// Package persistence implements the venue's store/recover contract: a
// pluggable Serializer writing/reading the fleet's InstrumentState
// snapshots to a single configured file. Distinct from internal/events'
// append-only audit log: this package owns point-in-time snapshots used to
// restart a venue with its book intact, not a replayable trade history.
package persistence

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/quodfinancial/venue-simulator/internal/protocol"
)

// Serializer encodes/decodes the full fleet snapshot. GobSerializer is the
// default, grounded on the gob usage already in internal/events;
// MsgpackSerializer is the pluggable alternate exercising the
// vmihailenco/msgpack dependency.
type Serializer interface {
	Marshal(states []protocol.InstrumentState) ([]byte, error)
	Unmarshal(data []byte) ([]protocol.InstrumentState, error)
}

// GobSerializer serializes with encoding/gob.
type GobSerializer struct{}

func (GobSerializer) Marshal(states []protocol.InstrumentState) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(states); err != nil {
		return nil, fmt.Errorf("persistence: gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

func (GobSerializer) Unmarshal(data []byte) ([]protocol.InstrumentState, error) {
	var states []protocol.InstrumentState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&states); err != nil {
		return nil, fmt.Errorf("persistence: gob decode: %w", err)
	}
	return states, nil
}

// MsgpackSerializer serializes with vmihailenco/msgpack/v5, a more compact
// alternate format an operator can opt into without changing any code
// outside this package.
type MsgpackSerializer struct{}

func (MsgpackSerializer) Marshal(states []protocol.InstrumentState) ([]byte, error) {
	data, err := msgpack.Marshal(states)
	if err != nil {
		return nil, fmt.Errorf("persistence: msgpack encode: %w", err)
	}
	return data, nil
}

func (MsgpackSerializer) Unmarshal(data []byte) ([]protocol.InstrumentState, error) {
	var states []protocol.InstrumentState
	if err := msgpack.Unmarshal(data, &states); err != nil {
		return nil, fmt.Errorf("persistence: msgpack decode: %w", err)
	}
	return states, nil
}
