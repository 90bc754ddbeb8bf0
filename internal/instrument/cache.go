package instrument

import (
	"fmt"
	"sync"
)

// LookupErrorKind classifies why a descriptor could not be resolved to a
// unique instrument.
type LookupErrorKind int

const (
	InstrumentNotFound LookupErrorKind = iota
	AmbiguousInstrumentDescriptor
	MalformedInstrumentDescriptor
)

func (k LookupErrorKind) String() string {
	switch k {
	case AmbiguousInstrumentDescriptor:
		return "AmbiguousInstrumentDescriptor"
	case MalformedInstrumentDescriptor:
		return "MalformedInstrumentDescriptor"
	default:
		return "InstrumentNotFound"
	}
}

// LookupError reports a failed attempt to resolve a Descriptor or recover an
// Instrument's identity.
type LookupError struct {
	Kind LookupErrorKind
}

func (e *LookupError) Error() string { return "instrument lookup failed: " + e.Kind.String() }

// Cache is the process-wide registry mapping instrument identities to
// instruments. It is safe for concurrent use: reads (Find) and writes
// (AddInstrument) may be called from multiple goroutines.
type Cache struct {
	mu          sync.RWMutex
	instruments map[ID]*Instrument
	nextID      ID
}

// NewCache returns an empty cache.
func NewCache() *Cache {
	return &Cache{instruments: make(map[ID]*Instrument)}
}

// Load replaces the cache contents with the given instruments, assigning no
// new identifiers; every Instrument must already carry a unique, non-zero
// Identifier. It is intended for populating the cache from a configuration
// snapshot or a recovered persistence image, not for incremental inserts.
func (c *Cache) Load(instruments []*Instrument) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	fresh := make(map[ID]*Instrument, len(instruments))
	var maxID ID
	for _, inst := range instruments {
		if inst.Identifier == 0 {
			return fmt.Errorf("instrument: Load: instrument has zero Identifier")
		}
		if _, exists := fresh[inst.Identifier]; exists {
			return fmt.Errorf("instrument: Load: duplicate identifier %d", inst.Identifier)
		}
		fresh[inst.Identifier] = inst
		if inst.Identifier > maxID {
			maxID = inst.Identifier
		}
	}
	c.instruments = fresh
	c.nextID = maxID
	return nil
}

// AddInstrument assigns inst a fresh, never-before-used identifier and
// inserts it into the cache. Identifiers are dense and monotonically
// increasing; they are never reused even after the instrument they were
// assigned to is removed, so a stale ID can never silently resolve to a
// different instrument.
func (c *Cache) AddInstrument(inst *Instrument) ID {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID
	inst.Identifier = id
	c.instruments[id] = inst
	return id
}

// Get returns the instrument for id, if present.
func (c *Cache) Get(id ID) (*Instrument, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	inst, ok := c.instruments[id]
	return inst, ok
}

// Find resolves a client-supplied Descriptor to exactly one instrument.
//
// The descriptor's shape selects exactly one lookup strategy (see
// selectStrategy): an id-source-based strategy when the descriptor carries
// a recognized SecurityID/SecurityIDSource pair, Symbol otherwise. Every
// candidate is scored under that one strategy only; a strategy whose
// primary matcher does not apply to a candidate is never substituted by a
// different strategy's secondary matchers. The candidate with the
// strictly highest rate wins; if two or more candidates tie for the
// highest rate, the descriptor is ambiguous. A malformed descriptor (one
// that could never identify anything, per isWellFormed) is rejected
// before any candidate is scored.
func (c *Cache) Find(d Descriptor) (View, error) {
	if !isWellFormed(d) {
		return View{}, &LookupError{Kind: MalformedInstrumentDescriptor}
	}

	s := selectStrategy(d)

	c.mu.RLock()
	defer c.mu.RUnlock()

	var best *Instrument
	bestRate := NoMatch
	ambiguous := false

	for _, inst := range c.instruments {
		rate := s.rate(d, inst)
		if rate <= Unmatchable {
			continue
		}
		switch {
		case rate > bestRate:
			best = inst
			bestRate = rate
			ambiguous = false
		case rate == bestRate:
			ambiguous = true
		}
	}

	if best == nil {
		return View{}, &LookupError{Kind: InstrumentNotFound}
	}
	if ambiguous {
		return View{}, &LookupError{Kind: AmbiguousInstrumentDescriptor}
	}
	return View{instrument: best}, nil
}

// FindInstrument recovers the cached identity of an instrument whose
// Identifier may be stale or zero, by linear scan over every attribute the
// instrument carries. It is used on the recovery path, after a persistence
// restore, to re-bind an instrument snapshot to its live cache entry when
// identifiers cannot be trusted to have survived unchanged.
func (c *Cache) FindInstrument(candidate *Instrument) (View, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, inst := range c.instruments {
		if instrumentsEqual(inst, candidate) {
			return View{instrument: inst}, nil
		}
	}
	return View{}, &LookupError{Kind: InstrumentNotFound}
}

func instrumentsEqual(a, b *Instrument) bool {
	return equalStringPtr(a.Symbol, b.Symbol) &&
		a.SecurityType == b.SecurityType &&
		equalStringPtr(a.PriceCurrency, b.PriceCurrency) &&
		equalStringPtr(a.BaseCurrency, b.BaseCurrency) &&
		equalStringPtr(a.SecurityExchange, b.SecurityExchange) &&
		equalStringPtr(a.PartyID, b.PartyID) &&
		equalPartyRolePtr(a.PartyRole, b.PartyRole) &&
		equalStringPtr(a.Cusip, b.Cusip) &&
		equalStringPtr(a.Sedol, b.Sedol) &&
		equalStringPtr(a.Isin, b.Isin) &&
		equalStringPtr(a.Ric, b.Ric) &&
		equalStringPtr(a.ExchangeSymbol, b.ExchangeSymbol) &&
		equalStringPtr(a.BloombergSymbol, b.BloombergSymbol)
}

func equalStringPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalPartyRolePtr(a, b *PartyRole) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
