// Package brokers resolves standardized symbols into broker-specific wire
// formats. Each broker adapter owns its supported-exchange set and its own
// symbol-format grammar.
package brokers

import (
	"symbol_backend/internal/feature/symbols/domain/entity"
)

// BrokerSymbol is the broker-specific wire form handed off to order placement.
type BrokerSymbol struct {
	TradingSymbol string          `json:"trading_symbol"`
	Exchange      entity.Exchange `json:"exchange"`
	Segment       string          `json:"segment"`
}

// Converter adapts standardized symbols to one broker's format.
type Converter interface {
	// BrokerName returns the adapter's registry key. Matching is
	// case-insensitive.
	BrokerName() string

	// CanConvert reports whether the broker supports this symbol's venue.
	CanConvert(s *entity.StandardizedSymbol) bool

	// ConvertToBrokerFormat renders the symbol in the broker's grammar.
	ConvertToBrokerFormat(s *entity.StandardizedSymbol) (BrokerSymbol, error)
}
