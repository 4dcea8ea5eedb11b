package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbol_backend/internal/feature/symbols/domain"
	"symbol_backend/internal/feature/symbols/domain/entity"
)

// mockSymbolReader はfuncフィールド式のハンドメイドモックです。
type mockSymbolReader struct {
	getByIDFunc            func(ctx context.Context, id string) (*entity.StandardizedSymbol, error)
	getByTradingSymbolFunc func(ctx context.Context, tradingSymbol string, exchange entity.Exchange) (*entity.StandardizedSymbol, error)
}

func (m *mockSymbolReader) GetByID(ctx context.Context, id string) (*entity.StandardizedSymbol, error) {
	return m.getByIDFunc(ctx, id)
}

func (m *mockSymbolReader) GetByTradingSymbol(ctx context.Context, tradingSymbol string, exchange entity.Exchange) (*entity.StandardizedSymbol, error) {
	return m.getByTradingSymbolFunc(ctx, tradingSymbol, exchange)
}

func activeEquity() *entity.StandardizedSymbol {
	return &entity.StandardizedSymbol{
		ID:             "aaaabbbbccccddddeeeeffff00001111",
		DisplayName:    "Reliance Industries",
		TradingSymbol:  "RELIANCE",
		InstrumentType: entity.InstrumentEquity,
		Exchange:       entity.ExchangeNSE,
		Segment:        "NSE_EQ",
		LotSize:        1,
		TickSize:       0.05,
		IsActive:       true,
	}
}

func activeOption(lotSize int) *entity.StandardizedSymbol {
	expiry := time.Now().AddDate(0, 2, 0)
	return &entity.StandardizedSymbol{
		ID:             "bbbbccccddddeeeeffff000011112222",
		TradingSymbol:  "NIFTY26OCT22000CE",
		InstrumentType: entity.InstrumentOption,
		Exchange:       entity.ExchangeNFO,
		Segment:        "NFO_OPT",
		Underlying:     "NIFTY",
		StrikePrice:    22000,
		OptionType:     entity.OptionCall,
		ExpiryDate:     &expiry,
		LotSize:        lotSize,
		TickSize:       0.05,
		IsActive:       true,
	}
}

// TestValidateAndResolveSymbol_CanonicalID は正準ID経由の解決を検証します。
// IDのミスはハードエラー、非アクティブは拒否です。
func TestValidateAndResolveSymbol_CanonicalID(t *testing.T) {
	t.Parallel()

	t.Run("active symbol resolves verified", func(t *testing.T) {
		t.Parallel()

		symbol := activeEquity()
		reader := &mockSymbolReader{
			getByIDFunc: func(ctx context.Context, id string) (*entity.StandardizedSymbol, error) {
				assert.Equal(t, symbol.ID, id)
				return symbol, nil
			},
		}
		uc := NewOrderValidatorUsecase(reader)

		res, err := uc.ValidateAndResolveSymbol(context.Background(), symbol.ID, "")

		require.NoError(t, err)
		assert.True(t, res.Verified)
		assert.False(t, res.Legacy)
		assert.Equal(t, "RELIANCE", res.TradingSymbol)
		assert.Equal(t, entity.ExchangeNSE, res.Exchange)
	})

	t.Run("unknown canonical id is a hard error", func(t *testing.T) {
		t.Parallel()

		reader := &mockSymbolReader{
			getByIDFunc: func(ctx context.Context, id string) (*entity.StandardizedSymbol, error) {
				return nil, domain.ErrSymbolNotFound
			},
		}
		uc := NewOrderValidatorUsecase(reader)

		_, err := uc.ValidateAndResolveSymbol(context.Background(), "ffffffffffffffffffffffffffffffff", "")
		assert.ErrorIs(t, err, domain.ErrSymbolNotFound)
	})

	t.Run("inactive symbol is rejected", func(t *testing.T) {
		t.Parallel()

		symbol := activeEquity()
		symbol.IsActive = false
		reader := &mockSymbolReader{
			getByIDFunc: func(ctx context.Context, id string) (*entity.StandardizedSymbol, error) {
				return symbol, nil
			},
		}
		uc := NewOrderValidatorUsecase(reader)

		_, err := uc.ValidateAndResolveSymbol(context.Background(), symbol.ID, "")
		assert.ErrorIs(t, err, domain.ErrSymbolInactive)
	})
}

// TestValidateAndResolveSymbol_Legacy はレガシー銘柄コード経由の解決を検証
// します。ミスはソフト成功（未検証）です。
func TestValidateAndResolveSymbol_Legacy(t *testing.T) {
	t.Parallel()

	t.Run("known trading symbol resolves verified", func(t *testing.T) {
		t.Parallel()

		symbol := activeEquity()
		reader := &mockSymbolReader{
			getByTradingSymbolFunc: func(ctx context.Context, tradingSymbol string, exchange entity.Exchange) (*entity.StandardizedSymbol, error) {
				assert.Equal(t, "RELIANCE", tradingSymbol, "input must be uppercased")
				assert.Equal(t, entity.ExchangeNSE, exchange)
				return symbol, nil
			},
		}
		uc := NewOrderValidatorUsecase(reader)

		res, err := uc.ValidateAndResolveSymbol(context.Background(), "reliance", entity.ExchangeNSE)

		require.NoError(t, err)
		assert.True(t, res.Legacy)
		assert.True(t, res.Verified)
		assert.NotNil(t, res.Symbol)
	})

	t.Run("unknown trading symbol is a soft success", func(t *testing.T) {
		t.Parallel()

		reader := &mockSymbolReader{
			getByTradingSymbolFunc: func(ctx context.Context, tradingSymbol string, exchange entity.Exchange) (*entity.StandardizedSymbol, error) {
				return nil, domain.ErrSymbolNotFound
			},
		}
		uc := NewOrderValidatorUsecase(reader)

		res, err := uc.ValidateAndResolveSymbol(context.Background(), "UNKNOWN", entity.ExchangeNSE)

		require.NoError(t, err)
		assert.True(t, res.Legacy)
		assert.False(t, res.Verified)
		assert.Nil(t, res.Symbol)
		assert.Equal(t, "UNKNOWN", res.TradingSymbol)
	})

	t.Run("inactive legacy symbol is rejected", func(t *testing.T) {
		t.Parallel()

		symbol := activeEquity()
		symbol.IsActive = false
		reader := &mockSymbolReader{
			getByTradingSymbolFunc: func(ctx context.Context, tradingSymbol string, exchange entity.Exchange) (*entity.StandardizedSymbol, error) {
				return symbol, nil
			},
		}
		uc := NewOrderValidatorUsecase(reader)

		_, err := uc.ValidateAndResolveSymbol(context.Background(), "RELIANCE", "")
		assert.ErrorIs(t, err, domain.ErrSymbolInactive)
	})
}

// TestValidateOrderParameters_Quantity はロットサイズ検証を検証します。
func TestValidateOrderParameters_Quantity(t *testing.T) {
	t.Parallel()

	uc := NewOrderValidatorUsecase(nil)

	tests := []struct {
		name        string
		lotSize     int
		quantity    int
		wantValid   bool
		wantMessage string
	}{
		{"multiple of lot size", 50, 100, true, ""},
		{"exact lot size", 50, 50, true, ""},
		{"not a multiple", 50, 75, false, "Quantity must be in multiples of lot size 50"},
		{"zero quantity", 50, 0, false, "Quantity must be a positive integer"},
		{"negative quantity", 50, -50, false, "Quantity must be a positive integer"},
		{"lot size one accepts any positive", 1, 17, true, ""},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			symbol := activeOption(tt.lotSize)
			v := uc.ValidateOrderParameters(symbol, OrderParams{
				Quantity:  tt.quantity,
				OrderType: OrderMarket,
			})

			assert.Equal(t, tt.wantValid, v.IsValid)
			if tt.wantMessage != "" {
				assert.Contains(t, v.Errors, tt.wantMessage)
			} else {
				assert.Empty(t, v.Errors)
			}
		})
	}
}

// TestValidateOrderParameters_TickSize はティックサイズ検証を検証します。
// 10進数演算により浮動小数点誤差で有効価格が弾かれないことも確認します。
func TestValidateOrderParameters_TickSize(t *testing.T) {
	t.Parallel()

	uc := NewOrderValidatorUsecase(nil)

	price := func(p float64) *float64 { return &p }

	tests := []struct {
		name      string
		tickSize  float64
		price     *float64
		orderType OrderType
		wantValid bool
	}{
		{"aligned price", 0.05, price(100.10), OrderLimit, true},
		{"aligned price with float noise", 0.05, price(100.15), OrderLimit, true},
		{"misaligned price", 0.05, price(100.03), OrderLimit, false},
		{"whole rupee ticks", 1, price(100.5), OrderLimit, false},
		{"market order skips price check", 0.05, price(100.03), OrderMarket, true},
		{"no price supplied", 0.05, nil, OrderLimit, true},
		{"stop loss validates price", 0.05, price(100.02), OrderStopLoss, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			symbol := activeEquity()
			symbol.TickSize = tt.tickSize
			v := uc.ValidateOrderParameters(symbol, OrderParams{
				Quantity:  1,
				Price:     tt.price,
				OrderType: tt.orderType,
			})

			assert.Equal(t, tt.wantValid, v.IsValid, "errors: %v", v.Errors)
			if !tt.wantValid {
				require.Len(t, v.Errors, 1)
				assert.Contains(t, v.Errors[0], "Price must be in multiples of tick size")
			}
		})
	}
}

// TestValidateOrderParameters_Expiry は満期切れ銘柄の拒否を検証します。
func TestValidateOrderParameters_Expiry(t *testing.T) {
	t.Parallel()

	uc := NewOrderValidatorUsecase(nil)

	expired := time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC)
	symbol := activeOption(50)
	symbol.ExpiryDate = &expired

	v := uc.ValidateOrderParameters(symbol, OrderParams{
		Quantity:  50,
		OrderType: OrderMarket,
	})

	assert.False(t, v.IsValid)
	assert.Contains(t, v.Errors, "Symbol has expired on 2025-01-30")
}

// TestValidateOrderParameters_CollectsAllErrors は複数違反が全件集まる
// ことを検証します。
func TestValidateOrderParameters_CollectsAllErrors(t *testing.T) {
	t.Parallel()

	uc := NewOrderValidatorUsecase(nil)

	expired := time.Date(2025, 1, 30, 0, 0, 0, 0, time.UTC)
	symbol := activeOption(50)
	symbol.ExpiryDate = &expired
	badPrice := 100.03

	v := uc.ValidateOrderParameters(symbol, OrderParams{
		Quantity:  75,
		Price:     &badPrice,
		OrderType: OrderLimit,
	})

	assert.False(t, v.IsValid)
	assert.Len(t, v.Errors, 3)
}
