package persistence

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/quodfinancial/venue-simulator/internal/config"
	"github.com/quodfinancial/venue-simulator/internal/obsmetrics"
	"github.com/quodfinancial/venue-simulator/internal/protocol"
)

// Fleet is the subset of the trading-engine repository the persistence
// controller needs: capture every engine's current state into a snapshot,
// or replace an engine's state from one.
type Fleet interface {
	CaptureStates() []protocol.InstrumentState
	RestoreStates(states []protocol.InstrumentState) (restored, skipped int)
}

// Controller coordinates store/recover across the fleet, gated on the
// venue's persistence_enabled config flag.
type Controller struct {
	cfg        *config.Config
	serializer Serializer
	fleet      Fleet
	log        zerolog.Logger
	metrics    *obsmetrics.Metrics
}

// New returns a Controller. serializer defaults to GobSerializer when nil.
func New(cfg *config.Config, serializer Serializer, fleet Fleet, log zerolog.Logger, metrics *obsmetrics.Metrics) *Controller {
	if serializer == nil {
		serializer = GobSerializer{}
	}
	return &Controller{
		cfg:        cfg,
		serializer: serializer,
		fleet:      fleet,
		log:        log.With().Str("component", "persistence").Logger(),
		metrics:    metrics,
	}
}

// Store serializes every engine's current state to the configured file.
func (c *Controller) Store() protocol.StoreMarketStateReply {
	result := c.store()
	if c.metrics != nil {
		c.metrics.RecordPersistenceOutcome("store", result.String())
	}
	return protocol.StoreMarketStateReply{Result: result}
}

func (c *Controller) store() protocol.StoreResult {
	if !c.cfg.PersistenceEnabled {
		return protocol.StorePersistenceDisabled
	}
	path := strings.TrimSpace(c.cfg.PersistenceFilePath)
	if path == "" {
		return protocol.StoreFilePathIsEmpty
	}
	if err := ensureWritableDir(path); err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("persistence file path unreachable")
		return protocol.StoreFilePathIsUnreachable
	}

	states := c.fleet.CaptureStates()
	data, err := c.serializer.Marshal(states)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to serialize fleet state")
		return protocol.StoreErrorWritingFile
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		c.log.Error().Err(err).Str("path", tmp).Msg("failed to open persistence file for writing")
		return protocol.StoreErrorOpeningFile
	}
	if err := os.Rename(tmp, path); err != nil {
		c.log.Error().Err(err).Str("path", path).Msg("failed to write persistence file")
		return protocol.StoreErrorWritingFile
	}

	c.log.Info().Int("instruments", len(states)).Str("path", path).Msg("stored fleet state")
	return protocol.Stored
}

// Recover reads the configured file and restores every engine it names.
func (c *Controller) Recover() protocol.RecoverMarketStateReply {
	result, msg := c.recover()
	if c.metrics != nil {
		c.metrics.RecordPersistenceOutcome("recover", result.String())
	}
	return protocol.RecoverMarketStateReply{Result: result, ErrorMessage: msg}
}

func (c *Controller) recover() (protocol.RecoverResult, string) {
	if !c.cfg.PersistenceEnabled {
		return protocol.RecoverPersistenceDisabled, ""
	}
	path := strings.TrimSpace(c.cfg.PersistenceFilePath)
	if path == "" {
		return protocol.RecoverFilePathIsEmpty, ""
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			c.log.Warn().Str("path", path).Msg("no persistence file to recover from")
			return protocol.RecoverFilePathIsUnreachable, ""
		}
		c.log.Error().Err(err).Str("path", path).Msg("failed to open persistence file")
		return protocol.RecoverErrorOpeningFile, ""
	}

	states, err := c.serializer.Unmarshal(data)
	if err != nil {
		c.log.Error().Err(err).Msg("persistence file is malformed")
		return protocol.RecoverFileIsMalformed, err.Error()
	}

	restored, skipped := c.fleet.RestoreStates(states)
	c.log.Info().Int("restored", restored).Int("skipped", skipped).Msg("recovered fleet state")
	return protocol.Recovered, ""
}

func ensureWritableDir(path string) error {
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return os.ErrInvalid
	}
	return nil
}
