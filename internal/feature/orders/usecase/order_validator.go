// Package usecase implements order-time validation: resolving a symbol from a
// canonical id or legacy trading symbol, and checking quantity, price and
// expiry against the instrument's constraints before an order is placed.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"symbol_backend/internal/feature/symbols/domain"
	"symbol_backend/internal/feature/symbols/domain/entity"
)

// OrderType is the order kind supplied by the caller.
type OrderType string

const (
	OrderMarket      OrderType = "MARKET"
	OrderLimit       OrderType = "LIMIT"
	OrderStopLoss    OrderType = "SL"
	OrderStopLossMkt OrderType = "SL-M"
)

// canonicalIDPattern matches the 32-character hex ids assigned by the store.
var canonicalIDPattern = regexp.MustCompile(`^[a-f0-9]{32}$`)

// OrderParams are the order fields validated against a resolved symbol.
type OrderParams struct {
	Quantity  int       `json:"quantity"`
	Price     *float64  `json:"price,omitempty"`
	OrderType OrderType `json:"order_type"`
}

// OrderValidation collects every violation instead of stopping at the first.
type OrderValidation struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors"`
}

// Resolution is the typed outcome of resolving a symbol input.
// Legacy trading-symbol lookups that miss are soft successes (Legacy true,
// Verified false) so pre-migration callers keep working.
type Resolution struct {
	Symbol        *entity.StandardizedSymbol `json:"symbol,omitempty"`
	TradingSymbol string                     `json:"trading_symbol"`
	Exchange      entity.Exchange            `json:"exchange,omitempty"`
	Legacy        bool                       `json:"legacy"`
	Verified      bool                       `json:"verified"`
}

// SymbolReader は注文検証が必要とする銘柄参照の最小インターフェースです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolReader interface {
	GetByID(ctx context.Context, id string) (*entity.StandardizedSymbol, error)
	GetByTradingSymbol(ctx context.Context, tradingSymbol string, exchange entity.Exchange) (*entity.StandardizedSymbol, error)
}

// OrderValidatorUsecase validates order parameters against resolved symbols.
type OrderValidatorUsecase struct {
	symbols SymbolReader
}

// NewOrderValidatorUsecase creates a new OrderValidatorUsecase.
func NewOrderValidatorUsecase(symbols SymbolReader) *OrderValidatorUsecase {
	return &OrderValidatorUsecase{symbols: symbols}
}

// ValidateAndResolveSymbol は入力文字列を正準IDまたはレガシー銘柄コードと
// して解決します。正準IDのミスはハードエラー、レガシー形式のミスは
// 「未検証」フラグ付きのソフト成功です。非アクティブ銘柄はどちらの経路で
// 解決されても拒否します。
func (u *OrderValidatorUsecase) ValidateAndResolveSymbol(ctx context.Context, input string, exchange entity.Exchange) (*Resolution, error) {
	if canonicalIDPattern.MatchString(input) {
		symbol, err := u.symbols.GetByID(ctx, input)
		if err != nil {
			if errors.Is(err, domain.ErrSymbolNotFound) {
				return nil, fmt.Errorf("canonical symbol id %s: %w", input, err)
			}
			return nil, err
		}
		if !symbol.IsActive {
			return nil, fmt.Errorf("%s: %w", symbol.TradingSymbol, domain.ErrSymbolInactive)
		}
		return &Resolution{
			Symbol:        symbol,
			TradingSymbol: symbol.TradingSymbol,
			Exchange:      symbol.Exchange,
			Verified:      true,
		}, nil
	}

	// レガシー形式: 銘柄コード (+任意の取引所) での解決
	tradingSymbol := strings.ToUpper(input)
	symbol, err := u.symbols.GetByTradingSymbol(ctx, tradingSymbol, exchange)
	if err != nil {
		if errors.Is(err, domain.ErrSymbolNotFound) {
			return &Resolution{
				TradingSymbol: tradingSymbol,
				Exchange:      exchange,
				Legacy:        true,
				Verified:      false,
			}, nil
		}
		return nil, err
	}
	if !symbol.IsActive {
		return nil, fmt.Errorf("%s: %w", symbol.TradingSymbol, domain.ErrSymbolInactive)
	}
	return &Resolution{
		Symbol:        symbol,
		TradingSymbol: symbol.TradingSymbol,
		Exchange:      symbol.Exchange,
		Legacy:        true,
		Verified:      true,
	}, nil
}

// ValidateOrderParameters checks quantity, price and expiry. MARKET orders
// skip price validation entirely; the expiry check applies regardless of
// order type.
func (u *OrderValidatorUsecase) ValidateOrderParameters(symbol *entity.StandardizedSymbol, params OrderParams) OrderValidation {
	v := OrderValidation{IsValid: true, Errors: []string{}}

	if params.Quantity <= 0 {
		v.Errors = append(v.Errors, "Quantity must be a positive integer")
	} else if symbol.LotSize > 0 && params.Quantity%symbol.LotSize != 0 {
		v.Errors = append(v.Errors,
			fmt.Sprintf("Quantity must be in multiples of lot size %d", symbol.LotSize))
	}

	if params.OrderType != OrderMarket && params.Price != nil && symbol.TickSize > 0 {
		if !priceAlignsToTick(*params.Price, symbol.TickSize) {
			v.Errors = append(v.Errors,
				fmt.Sprintf("Price must be in multiples of tick size %s",
					strconv.FormatFloat(symbol.TickSize, 'f', -1, 64)))
		}
	}

	if symbol.ExpiryDate != nil && symbol.ExpiryDate.Before(time.Now()) {
		v.Errors = append(v.Errors,
			fmt.Sprintf("Symbol has expired on %s", symbol.ExpiryDate.Format("2006-01-02")))
	}

	v.IsValid = len(v.Errors) == 0
	return v
}

// priceAlignsToTick は価格がティックサイズの整数倍かを判定します。
// float64のまま剰余を取ると 100.10 % 0.05 が誤差で弾かれるため、
// 最短10進表現に正規化してから10進数演算で剰余を取ります。
func priceAlignsToTick(price, tick float64) bool {
	p := decimal.NewFromFloat(price)
	t := decimal.NewFromFloat(tick)
	return p.Mod(t).IsZero()
}
