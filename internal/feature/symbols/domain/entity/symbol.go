// Package entity defines the domain models for the symbols feature.
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// InstrumentType classifies a standardized symbol.
type InstrumentType string

const (
	InstrumentEquity InstrumentType = "EQUITY"
	InstrumentOption InstrumentType = "OPTION"
	InstrumentFuture InstrumentType = "FUTURE"
)

// Valid reports whether the instrument type is one of the known kinds.
func (t InstrumentType) Valid() bool {
	switch t {
	case InstrumentEquity, InstrumentOption, InstrumentFuture:
		return true
	}
	return false
}

// IsDerivative reports whether the instrument type carries an underlying and expiry.
func (t InstrumentType) IsDerivative() bool {
	return t == InstrumentOption || t == InstrumentFuture
}

// Exchange identifies a supported trading venue.
type Exchange string

const (
	ExchangeNSE Exchange = "NSE"
	ExchangeBSE Exchange = "BSE"
	ExchangeNFO Exchange = "NFO"
	ExchangeBFO Exchange = "BFO"
	ExchangeMCX Exchange = "MCX"
)

// AllExchanges lists every venue the system can standardize symbols for.
var AllExchanges = []Exchange{ExchangeNSE, ExchangeBSE, ExchangeNFO, ExchangeBFO, ExchangeMCX}

// Valid reports whether the exchange is a supported venue.
func (e Exchange) Valid() bool {
	for _, known := range AllExchanges {
		if e == known {
			return true
		}
	}
	return false
}

// OptionType distinguishes calls from puts.
type OptionType string

const (
	OptionCall OptionType = "CE"
	OptionPut  OptionType = "PE"
)

// Valid reports whether the option type is CE or PE.
func (o OptionType) Valid() bool {
	return o == OptionCall || o == OptionPut
}

// StandardizedSymbol は正規化済みの銘柄マスタレコードです。
// 取引所・ブローカーのフィードから取り込んだ銘柄を、ブローカー非依存の
// 標準形として保持します。IdentityKey が重複排除とupsertの単位になります。
type StandardizedSymbol struct {
	ID             string         `gorm:"primaryKey;size:32" json:"id"`
	DisplayName    string         `gorm:"size:255;not null" json:"display_name"`
	TradingSymbol  string         `gorm:"size:64;not null;index" json:"trading_symbol"`
	InstrumentType InstrumentType `gorm:"size:16;not null;index:idx_exch_type_active,priority:2" json:"instrument_type"`
	Exchange       Exchange       `gorm:"size:8;not null;index:idx_exch_type_active,priority:1" json:"exchange"`
	Segment        string         `gorm:"size:32;not null" json:"segment"`
	Underlying     string         `gorm:"size:64;index:idx_chain,priority:1" json:"underlying,omitempty"`
	StrikePrice    float64        `gorm:"index:idx_chain,priority:3" json:"strike_price,omitempty"`
	OptionType     OptionType     `gorm:"size:4;index:idx_chain,priority:4" json:"option_type,omitempty"`
	ExpiryDate     *time.Time     `gorm:"index:idx_chain,priority:2" json:"expiry_date,omitempty"`
	LotSize        int            `gorm:"not null;default:1" json:"lot_size"`
	TickSize       float64        `gorm:"not null;default:0.05" json:"tick_size"`
	IsActive       bool           `gorm:"not null;default:true;index:idx_exch_type_active,priority:3;index:idx_chain,priority:5" json:"is_active"`
	Source         string         `gorm:"size:64;not null" json:"source"`
	ContentHash    string         `gorm:"size:64" json:"-"`
	ISIN           string         `gorm:"column:isin;size:12;index" json:"isin,omitempty"`
	CompanyName    string         `gorm:"size:255" json:"company_name,omitempty"`
	Sector         string         `gorm:"size:64" json:"sector,omitempty"`
	IdentityKey    string         `gorm:"size:160;not null;uniqueIndex" json:"-"`
	LastUpdated    time.Time      `json:"last_updated"`
	CreatedAt      time.Time      `json:"created_at"`
}

// TableName specifies the table name for StandardizedSymbol.
func (StandardizedSymbol) TableName() string {
	return "standardized_symbols"
}

// BeforeCreate assigns an opaque hex ID when one is not supplied.
func (s *StandardizedSymbol) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = NewSymbolID()
	}
	return nil
}

// NewSymbolID generates a 32-character lowercase hex identifier.
func NewSymbolID() string {
	return strings.ReplaceAll(uuid.Must(uuid.NewV4()).String(), "-", "")
}

// ComputeIdentityKey は重複排除に使う識別キーの正規文字列を返します。
// 株式は (取引所, 銘柄コード)、デリバティブは (取引所, 銘柄コード, 満期, 権利行使価格,
// オプション種別) で同一インストゥルメントとみなします。
func (s *StandardizedSymbol) ComputeIdentityKey() string {
	if s.InstrumentType.IsDerivative() {
		expiry := ""
		if s.ExpiryDate != nil {
			expiry = s.ExpiryDate.Format("2006-01-02")
		}
		return fmt.Sprintf("DRV|%s|%s|%s|%.2f|%s",
			s.Exchange, s.TradingSymbol, expiry, s.StrikePrice, s.OptionType)
	}
	return fmt.Sprintf("EQ|%s|%s", s.Exchange, s.TradingSymbol)
}

// ComputeContentHash returns a sha256 fingerprint over the meaningful fields.
// An unchanged hash lets the store skip a no-op rewrite of the same payload.
func (s *StandardizedSymbol) ComputeContentHash() string {
	expiry := ""
	if s.ExpiryDate != nil {
		expiry = s.ExpiryDate.Format("2006-01-02")
	}
	payload := strings.Join([]string{
		s.DisplayName,
		s.TradingSymbol,
		string(s.InstrumentType),
		string(s.Exchange),
		s.Segment,
		s.Underlying,
		fmt.Sprintf("%.4f", s.StrikePrice),
		string(s.OptionType),
		expiry,
		fmt.Sprintf("%d", s.LotSize),
		fmt.Sprintf("%.4f", s.TickSize),
		s.ISIN,
		s.CompanyName,
		s.Sector,
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}
