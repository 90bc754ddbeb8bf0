package events

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"sync"
)

// Log is an append-only, durable audit trail.
//
// Each record is gob-encoded with a CRC32 checksum to detect corruption,
// and carries a monotonically increasing sequence number so replay can
// detect gaps. SyncMode trades throughput for durability: when enabled,
// every Append fsyncs before returning; when disabled, the OS page cache
// may lose the tail of the log on a hard crash.
type Log struct {
	file        *os.File
	writer      *bufio.Writer
	encoder     *gob.Encoder
	mu          sync.Mutex
	sequenceNum uint64
	syncMode    bool
	path        string
}

// Config configures a Log.
type Config struct {
	Path     string
	SyncMode bool
}

// NewLog opens or creates the audit log at config.Path, recovering the last
// sequence number from any existing records.
func NewLog(config Config) (*Log, error) {
	file, err := os.OpenFile(config.Path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("events: open log: %w", err)
	}

	l := &Log{
		file:     file,
		writer:   bufio.NewWriter(file),
		syncMode: config.SyncMode,
		path:     config.Path,
	}
	l.encoder = gob.NewEncoder(l.writer)

	if err := l.recover(); err != nil {
		file.Close()
		return nil, fmt.Errorf("events: recover log: %w", err)
	}

	return l, nil
}

type record struct {
	SequenceNum uint64
	Data        interface{}
	Checksum    uint32
}

// Append writes one event to the log, assigning it the next sequence
// number, and returns that sequence number.
func (l *Log) Append(event interface{}) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.sequenceNum++
	seqNum := l.sequenceNum

	setSequenceNum(event, seqNum)

	rec := record{
		SequenceNum: seqNum,
		Data:        event,
		Checksum:    crc32.ChecksumIEEE([]byte(fmt.Sprintf("%v", event))),
	}

	if err := l.encoder.Encode(rec); err != nil {
		return 0, fmt.Errorf("events: encode: %w", err)
	}
	if err := l.writer.Flush(); err != nil {
		return 0, fmt.Errorf("events: flush: %w", err)
	}
	if l.syncMode {
		if err := l.file.Sync(); err != nil {
			return 0, fmt.Errorf("events: fsync: %w", err)
		}
	}

	return seqNum, nil
}

func setSequenceNum(event interface{}, seq uint64) {
	switch e := event.(type) {
	case *NewOrderEvent:
		e.SequenceNum = seq
	case *OrderAcceptedEvent:
		e.SequenceNum = seq
	case *OrderRejectedEvent:
		e.SequenceNum = seq
	case *FillEvent:
		e.SequenceNum = seq
	case *OrderCancelledEvent:
		e.SequenceNum = seq
	}
}

// Replay reads every event in sequence order and invokes handler for each,
// used to rebuild derived state (audit views, dashboards) after a restart.
func (l *Log) Replay(handler func(seqNum uint64, event interface{}) error) error {
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("events: open for replay: %w", err)
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	var lastSeq uint64

	for {
		var rec record
		if err := decoder.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("events: decode: %w", err)
		}

		if lastSeq > 0 && rec.SequenceNum != lastSeq+1 {
			return fmt.Errorf("events: sequence gap: expected %d, got %d", lastSeq+1, rec.SequenceNum)
		}
		lastSeq = rec.SequenceNum

		if rec.Checksum != crc32.ChecksumIEEE([]byte(fmt.Sprintf("%v", rec.Data))) {
			return fmt.Errorf("events: checksum mismatch at sequence %d", rec.SequenceNum)
		}

		if err := handler(rec.SequenceNum, rec.Data); err != nil {
			return fmt.Errorf("events: handler at sequence %d: %w", rec.SequenceNum, err)
		}
	}

	return nil
}

func (l *Log) recover() error {
	file, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	decoder := gob.NewDecoder(file)
	for {
		var rec record
		if err := decoder.Decode(&rec); err != nil {
			if err == io.EOF {
				break
			}
			return err
		}
		l.sequenceNum = rec.SequenceNum
	}
	return nil
}

// LastSequence returns the sequence number of the last appended event.
func (l *Log) LastSequence() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sequenceNum
}

// Sync flushes buffered writes and fsyncs the underlying file.
func (l *Log) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		return err
	}
	return l.file.Sync()
}

// Close flushes and closes the log file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.writer.Flush(); err != nil {
		return err
	}
	return l.file.Close()
}

func init() {
	gob.Register(&NewOrderEvent{})
	gob.Register(&OrderAcceptedEvent{})
	gob.Register(&OrderRejectedEvent{})
	gob.Register(&FillEvent{})
	gob.Register(&OrderCancelledEvent{})
}
