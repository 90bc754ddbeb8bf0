// Package notify implements the per-engine client-notification cache: the
// buffer a ReplyingCommand fills during execute() and that the engine
// drains onto the reply channel once the command returns.
package notify

import "github.com/quodfinancial/venue-simulator/internal/protocol"

// Cache accumulates reply-channel payloads produced while a single command
// executes. It is not safe for concurrent use across commands: each
// command runs to completion on its engine's single consumer before the
// next begins, so one Cache instance per engine is reused serially.
type Cache struct {
	executionReports      []protocol.ExecutionReport
	businessRejects        []protocol.BusinessMessageReject
	placementConfirmations []protocol.OrderPlacementConfirmation
	placementRejects       []protocol.OrderPlacementReject
	modificationConfirmations []protocol.OrderModificationConfirmation
	modificationRejects    []protocol.OrderModificationReject
	cancellationConfirmations []protocol.OrderCancellationConfirmation
	cancellationRejects    []protocol.OrderCancellationReject
	marketDataSnapshots    []protocol.MarketDataSnapshot
	marketDataUpdates      []protocol.MarketDataUpdate
	marketDataRejects      []protocol.MarketDataReject
	securityStatuses       []protocol.SecurityStatus
}

// New returns an empty notification cache.
func New() *Cache { return &Cache{} }

func (c *Cache) AddExecutionReport(r protocol.ExecutionReport) { c.executionReports = append(c.executionReports, r) }
func (c *Cache) AddBusinessReject(r protocol.BusinessMessageReject) {
	c.businessRejects = append(c.businessRejects, r)
}
func (c *Cache) AddPlacementConfirmation(r protocol.OrderPlacementConfirmation) {
	c.placementConfirmations = append(c.placementConfirmations, r)
}
func (c *Cache) AddPlacementReject(r protocol.OrderPlacementReject) {
	c.placementRejects = append(c.placementRejects, r)
}
func (c *Cache) AddModificationConfirmation(r protocol.OrderModificationConfirmation) {
	c.modificationConfirmations = append(c.modificationConfirmations, r)
}
func (c *Cache) AddModificationReject(r protocol.OrderModificationReject) {
	c.modificationRejects = append(c.modificationRejects, r)
}
func (c *Cache) AddCancellationConfirmation(r protocol.OrderCancellationConfirmation) {
	c.cancellationConfirmations = append(c.cancellationConfirmations, r)
}
func (c *Cache) AddCancellationReject(r protocol.OrderCancellationReject) {
	c.cancellationRejects = append(c.cancellationRejects, r)
}
func (c *Cache) AddMarketDataSnapshot(s protocol.MarketDataSnapshot) {
	c.marketDataSnapshots = append(c.marketDataSnapshots, s)
}
func (c *Cache) AddMarketDataUpdate(u protocol.MarketDataUpdate) {
	c.marketDataUpdates = append(c.marketDataUpdates, u)
}
func (c *Cache) AddMarketDataReject(r protocol.MarketDataReject) {
	c.marketDataRejects = append(c.marketDataRejects, r)
}
func (c *Cache) AddSecurityStatus(s protocol.SecurityStatus) {
	c.securityStatuses = append(c.securityStatuses, s)
}

// Drained is the set of notifications accumulated since the last Drain.
type Drained struct {
	ExecutionReports          []protocol.ExecutionReport
	BusinessRejects           []protocol.BusinessMessageReject
	PlacementConfirmations    []protocol.OrderPlacementConfirmation
	PlacementRejects          []protocol.OrderPlacementReject
	ModificationConfirmations []protocol.OrderModificationConfirmation
	ModificationRejects       []protocol.OrderModificationReject
	CancellationConfirmations []protocol.OrderCancellationConfirmation
	CancellationRejects       []protocol.OrderCancellationReject
	MarketDataSnapshots       []protocol.MarketDataSnapshot
	MarketDataUpdates         []protocol.MarketDataUpdate
	MarketDataRejects         []protocol.MarketDataReject
	SecurityStatuses          []protocol.SecurityStatus
}

// Drain returns every notification accumulated since the last Drain and
// resets the cache for the next command.
func (c *Cache) Drain() Drained {
	d := Drained{
		ExecutionReports:          c.executionReports,
		BusinessRejects:           c.businessRejects,
		PlacementConfirmations:    c.placementConfirmations,
		PlacementRejects:          c.placementRejects,
		ModificationConfirmations: c.modificationConfirmations,
		ModificationRejects:       c.modificationRejects,
		CancellationConfirmations: c.cancellationConfirmations,
		CancellationRejects:       c.cancellationRejects,
		MarketDataSnapshots:       c.marketDataSnapshots,
		MarketDataUpdates:         c.marketDataUpdates,
		MarketDataRejects:         c.marketDataRejects,
		SecurityStatuses:          c.securityStatuses,
	}
	*c = Cache{}
	return d
}
