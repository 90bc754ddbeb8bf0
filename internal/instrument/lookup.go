package instrument

// strategy is an ordered tuple of matchers whose rates are summed to produce
// one candidate's total match rate under a given lookup strategy.
type strategy struct {
	name     string
	matchers []matcher
}

// symbolStrategy and the entries of strategyByIDSource are the fixed set of
// descriptor shapes a client may submit, each one combining the attribute
// matcher relevant to that identifier namespace plus the attributes that
// always participate (security type, exchange, currency, parties).
var symbolStrategy = strategy{
	name:     "Symbol",
	matchers: []matcher{matchSymbol, matchSecurityType, matchSecurityExchange, matchCurrency, matchParty},
}

// strategyByIDSource maps a descriptor's SecurityIDSource to the one
// strategy applicable to it. Lookup never scores a candidate under more
// than one strategy: selectStrategy picks exactly one before any instrument
// is rated, mirroring original_source's Lookup::create.
var strategyByIDSource = map[SecurityIDSource]strategy{
	SecurityIDSourceSedol: {
		name:     "Sedol",
		matchers: []matcher{matchSedolID, matchSecurityType, matchSecurityExchange, matchCurrency, matchParty},
	},
	SecurityIDSourceCusip: {
		name:     "Cusip",
		matchers: []matcher{matchCusipID, matchSecurityType, matchSecurityExchange, matchCurrency, matchParty},
	},
	SecurityIDSourceIsin: {
		name:     "Isin",
		matchers: []matcher{matchIsinID, matchSecurityType, matchSecurityExchange, matchCurrency, matchParty},
	},
	SecurityIDSourceRic: {
		name:     "Ric",
		matchers: []matcher{matchRicID, matchSecurityType, matchSecurityExchange, matchCurrency, matchParty},
	},
	SecurityIDSourceExchangeSymbol: {
		name:     "ExchangeSymbol",
		matchers: []matcher{matchExchangeID, matchSecurityType, matchSecurityExchange, matchCurrency, matchParty},
	},
	SecurityIDSourceBloombergSymbol: {
		name:     "BloombergSymbol",
		matchers: []matcher{matchBloombergID, matchSecurityType, matchSecurityExchange, matchCurrency, matchParty},
	},
}

// selectStrategy picks the single strategy applicable to d's shape: an
// id-source-based strategy when d carries a recognized (SecurityID,
// SecurityIDSource) pair, Symbol otherwise. Callers must only invoke this
// on a well-formed descriptor (see isWellFormed), which guarantees one of
// the two always applies.
func selectStrategy(d Descriptor) strategy {
	if d.SecurityID != nil && d.SecurityIDSource != SecurityIDSourceUnspecified {
		if s, ok := strategyByIDSource[d.SecurityIDSource]; ok {
			return s
		}
	}
	return symbolStrategy
}

// rate scores one instrument against the descriptor under this strategy.
func (s strategy) rate(d Descriptor, i *Instrument) MatchRate {
	rates := make([]MatchRate, 0, len(s.matchers))
	for _, m := range s.matchers {
		rates = append(rates, m(d, i))
	}
	return sum(rates...)
}

// isWellFormed rejects descriptors that cannot possibly resolve: a Descriptor
// must supply a Symbol or a (SecurityID, SecurityIDSource) pair. The Isin
// source additionally requires SecurityType, Currency and SecurityExchange,
// since ISINs alone are not unique across listings.
func isWellFormed(d Descriptor) bool {
	hasSymbol := d.Symbol != nil
	hasSecurityID := d.SecurityID != nil && d.SecurityIDSource != SecurityIDSourceUnspecified
	if !hasSymbol && !hasSecurityID {
		return false
	}
	if d.SecurityIDSource == SecurityIDSourceIsin {
		if d.SecurityType == SecurityTypeUnspecified || d.Currency == nil || d.SecurityExchange == nil {
			return false
		}
	}
	return true
}
