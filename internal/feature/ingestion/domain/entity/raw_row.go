// Package entity defines the raw feed models for the ingestion feature.
package entity

// RawInstrumentRow is one row of a broker instrument-master export. Numeric
// columns stay as strings here so a single malformed value rejects only its
// own row during transformation instead of failing the whole unmarshal.
type RawInstrumentRow struct {
	InstrumentKey  string `csv:"instrument_key"`
	ExchangeToken  string `csv:"exchange_token"`
	TradingSymbol  string `csv:"tradingsymbol"`
	Name           string `csv:"name"`
	Expiry         string `csv:"expiry"`
	Strike         string `csv:"strike"`
	TickSize       string `csv:"tick_size"`
	LotSize        string `csv:"lot_size"`
	InstrumentType string `csv:"instrument_type"`
	Segment        string `csv:"segment"`
	Exchange       string `csv:"exchange"`
	ISIN           string `csv:"isin"`
	Underlying     string `csv:"underlying"`
	UnderlyingKey  string `csv:"underlying_key"`
}
