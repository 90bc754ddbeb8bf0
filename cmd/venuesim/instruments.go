package main

import "github.com/quodfinancial/venue-simulator/internal/instrument"

func strPtr(s string) *string { return &s }

// demoInstruments returns the small fixed instrument universe venuesim
// trades when no richer instrument source is wired in. A real deployment
// would load this list from the same reference-data feed the venue's
// operator already maintains; none is in scope here.
func demoInstruments() []*instrument.Instrument {
	return []*instrument.Instrument{
		{Symbol: strPtr("ACME"), SecurityType: instrument.SecurityTypeCommonStock, PriceCurrency: strPtr("USD")},
		{Symbol: strPtr("GLOBEX"), SecurityType: instrument.SecurityTypeCommonStock, PriceCurrency: strPtr("USD")},
		{Symbol: strPtr("NORTHWIND"), SecurityType: instrument.SecurityTypeCommonStock, PriceCurrency: strPtr("USD")},
	}
}
