// Package dto defines data transfer objects for the symbols HTTP API.
package dto

// SearchRequest carries the query parameters of GET /symbols.
// Pointer-backed filters distinguish "absent" from zero values.
type SearchRequest struct {
	Query          string   `form:"q"`
	InstrumentType string   `form:"instrument_type"`
	Exchange       string   `form:"exchange"`
	Underlying     string   `form:"underlying"`
	MinStrike      *float64 `form:"min_strike"`
	MaxStrike      *float64 `form:"max_strike"`
	OptionType     string   `form:"option_type"`
	ExpiryFrom     string   `form:"expiry_from"`
	ExpiryTo       string   `form:"expiry_to"`
	IsActive       *bool    `form:"is_active"`
	Limit          int      `form:"limit"`
	Offset         int      `form:"offset"`
	SortBy         string   `form:"sort_by"`
	SortOrder      string   `form:"sort_order"`
}
