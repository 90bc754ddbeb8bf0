// Package instrument implements the instrument cache: it maps
// client-supplied descriptors to a single internal instrument identity.
package instrument

// ID is a dense, process-unique internal instrument identifier. It is
// assigned on insert and never reused or mutated afterwards.
type ID uint64

// SecurityType categorizes an instrument for currency-matching purposes
// (see matchCurrency).
type SecurityType int

const (
	SecurityTypeUnspecified SecurityType = iota
	SecurityTypeCommonStock
	SecurityTypeFuture
	SecurityTypeOption
	SecurityTypeFxSpot
	SecurityTypeFxSwap
)

// SecurityIDSource identifies the namespace of an alternative security
// identifier carried by a Descriptor.
type SecurityIDSource int

const (
	SecurityIDSourceUnspecified SecurityIDSource = iota
	SecurityIDSourceCusip
	SecurityIDSourceSedol
	SecurityIDSourceIsin
	SecurityIDSourceRic
	SecurityIDSourceExchangeSymbol
	SecurityIDSourceBloombergSymbol
)

// PartyRole identifies the role a Party plays against an instrument.
type PartyRole int

// Party is one (id, source, role) tuple attached to a descriptor or an
// instrument.
type Party struct {
	ID     string
	Source string
	Role   PartyRole
}

// Instrument is immutable once cached. All attributes besides Identifier
// are optional; pointer-typed fields distinguish "absent" from a legitimate
// zero value.
type Instrument struct {
	Identifier      ID
	DatabaseID      *int64
	Symbol          *string
	SecurityType    SecurityType
	PriceCurrency   *string
	BaseCurrency    *string
	SecurityExchange *string
	PartyID         *string
	PartyRole       *PartyRole
	Cusip           *string
	Sedol           *string
	Isin            *string
	Ric             *string
	ExchangeSymbol  *string
	BloombergSymbol *string
	PriceTick       float64
	QuantityTick    float64
	MinQuantity     float64
	MaxQuantity     float64
}

// Descriptor is a client-supplied, partial instrument locator.
//
// A Descriptor is well-formed iff it carries either a Symbol or a
// (SecurityID, SecurityIDSource) pair; the Isin source additionally
// requires SecurityType, Currency and SecurityExchange to be set.
type Descriptor struct {
	Symbol           *string
	SecurityID       *string
	SecurityIDSource SecurityIDSource
	Currency         *string
	SecurityExchange *string
	SecurityType     SecurityType
	Parties          []Party
}

// View is a non-owning reference to one cached Instrument.
type View struct {
	instrument *Instrument
}

// Instrument returns the referenced instrument.
func (v View) Instrument() *Instrument { return v.instrument }
