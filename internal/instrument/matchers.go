package instrument

// A matcher scores one attribute of the descriptor against the instrument.
// Per spec: Match if both sides have a value and are equal; NoMatch if both
// have a value and differ, or the descriptor has a value the instrument
// lacks; Unmatchable if the descriptor side is absent.
type matcher func(d Descriptor, i *Instrument) MatchRate

func matchStringPtr(dv *string, iv *string) MatchRate {
	if dv == nil {
		return Unmatchable
	}
	if iv == nil {
		return NoMatch
	}
	if *dv == *iv {
		return Match
	}
	return NoMatch
}

func matchSymbol(d Descriptor, i *Instrument) MatchRate {
	return matchStringPtr(d.Symbol, i.Symbol)
}

func matchSecurityID(source SecurityIDSource, alt func(*Instrument) *string) matcher {
	return func(d Descriptor, i *Instrument) MatchRate {
		if d.SecurityIDSource != source || d.SecurityID == nil {
			return Unmatchable
		}
		return matchStringPtr(d.SecurityID, alt(i))
	}
}

var (
	matchSedolID     = matchSecurityID(SecurityIDSourceSedol, func(i *Instrument) *string { return i.Sedol })
	matchCusipID     = matchSecurityID(SecurityIDSourceCusip, func(i *Instrument) *string { return i.Cusip })
	matchIsinID      = matchSecurityID(SecurityIDSourceIsin, func(i *Instrument) *string { return i.Isin })
	matchRicID       = matchSecurityID(SecurityIDSourceRic, func(i *Instrument) *string { return i.Ric })
	matchExchangeID  = matchSecurityID(SecurityIDSourceExchangeSymbol, func(i *Instrument) *string { return i.ExchangeSymbol })
	matchBloombergID = matchSecurityID(SecurityIDSourceBloombergSymbol, func(i *Instrument) *string { return i.BloombergSymbol })
)

func matchSecurityType(d Descriptor, i *Instrument) MatchRate {
	if d.SecurityType == SecurityTypeUnspecified {
		return Unmatchable
	}
	if i.SecurityType == SecurityTypeUnspecified {
		return NoMatch
	}
	if d.SecurityType == i.SecurityType {
		return Match
	}
	return NoMatch
}

func matchSecurityExchange(d Descriptor, i *Instrument) MatchRate {
	return matchStringPtr(d.SecurityExchange, i.SecurityExchange)
}

// matchCurrency compares against the currency field selected by the
// instrument's security type category: cash-equity-like instruments
// (Future/Option/CommonStock) compare against PriceCurrency; FX instruments
// (FxSpot/FxSwap) compare against BaseCurrency. If the instrument carries no
// security type the category is unknown and the match is a hard NoMatch
// whenever a currency was requested.
func matchCurrency(d Descriptor, i *Instrument) MatchRate {
	if d.Currency == nil {
		return Unmatchable
	}
	switch i.SecurityType {
	case SecurityTypeFuture, SecurityTypeOption, SecurityTypeCommonStock:
		return matchStringPtr(d.Currency, i.PriceCurrency)
	case SecurityTypeFxSpot, SecurityTypeFxSwap:
		return matchStringPtr(d.Currency, i.BaseCurrency)
	default:
		return NoMatch
	}
}

// matchParty returns Match when the instrument carries a (party id, role)
// pair identical to one of the descriptor's parties; Unmatchable otherwise
// (absent on either side, or no matching pair).
func matchParty(d Descriptor, i *Instrument) MatchRate {
	if len(d.Parties) == 0 || i.PartyID == nil || i.PartyRole == nil {
		return Unmatchable
	}
	for _, p := range d.Parties {
		if p.ID == *i.PartyID && p.Role == *i.PartyRole {
			return Match
		}
	}
	return Unmatchable
}
