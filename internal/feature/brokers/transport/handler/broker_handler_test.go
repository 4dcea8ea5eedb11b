package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"symbol_backend/internal/feature/brokers"
	"symbol_backend/internal/feature/brokers/transport/handler"
	"symbol_backend/internal/feature/symbols/domain"
	"symbol_backend/internal/feature/symbols/domain/entity"
)

// mockSymbolGetter はSymbolGetterインターフェースのモック実装です。
type mockSymbolGetter struct {
	GetSymbolByIDFunc func(ctx context.Context, id string) (*entity.StandardizedSymbol, error)
}

func (m *mockSymbolGetter) GetSymbolByID(ctx context.Context, id string) (*entity.StandardizedSymbol, error) {
	return m.GetSymbolByIDFunc(ctx, id)
}

func newBrokerRouter(getter *mockSymbolGetter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := handler.NewBrokerHandler(brokers.Default(), getter)
	r := gin.New()
	r.GET("/brokers", h.Stats)
	r.GET("/symbols/:id/brokers", h.Compatible)
	r.POST("/symbols/:id/convert", h.Convert)
	return r
}

func nseEquity(id string) *entity.StandardizedSymbol {
	return &entity.StandardizedSymbol{
		ID:             id,
		TradingSymbol:  "RELIANCE",
		InstrumentType: entity.InstrumentEquity,
		Exchange:       entity.ExchangeNSE,
		IsActive:       true,
	}
}

// TestBrokerHandler_Stats は登録済みコンバータの一覧取得をテストします。
func TestBrokerHandler_Stats(t *testing.T) {
	router := newBrokerRouter(&mockSymbolGetter{})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/brokers", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "zerodha")
	assert.Contains(t, body, "fyers")
}

// TestBrokerHandler_Compatible は対応ブローカー一覧の返却をテストします。
func TestBrokerHandler_Compatible(t *testing.T) {
	getter := &mockSymbolGetter{
		GetSymbolByIDFunc: func(ctx context.Context, id string) (*entity.StandardizedSymbol, error) {
			assert.Equal(t, "abc123", id)
			return nseEquity(id), nil
		},
	}
	router := newBrokerRouter(getter)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/symbols/abc123/brokers", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"brokers":["fyers","zerodha"]}`, w.Body.String())
}

// TestBrokerHandler_Convert は変換の成功/エラー分岐をテストします。
func TestBrokerHandler_Convert(t *testing.T) {
	tests := []struct {
		name           string
		symbol         *entity.StandardizedSymbol
		getErr         error
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "zerodha equity",
			symbol:         nseEquity("abc123"),
			body:           `{"broker":"zerodha"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   "RELIANCE",
		},
		{
			name:           "fyers equity",
			symbol:         nseEquity("abc123"),
			body:           `{"broker":"fyers"}`,
			expectedStatus: http.StatusOK,
			expectedBody:   "NSE:RELIANCE-EQ",
		},
		{
			name:           "unknown broker is 404",
			symbol:         nseEquity("abc123"),
			body:           `{"broker":"upstox"}`,
			expectedStatus: http.StatusNotFound,
			expectedBody:   "error",
		},
		{
			name: "unsupported exchange is 422",
			symbol: &entity.StandardizedSymbol{
				ID:             "abc123",
				TradingSymbol:  "GOLDM25OCTFUT",
				InstrumentType: entity.InstrumentFuture,
				Exchange:       entity.ExchangeMCX,
				IsActive:       true,
			},
			body:           `{"broker":"fyers"}`,
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   "error",
		},
		{
			name:           "missing broker field is 400",
			symbol:         nseEquity("abc123"),
			body:           `{}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "error",
		},
		{
			name:           "unknown symbol is 404",
			getErr:         domain.ErrSymbolNotFound,
			body:           `{"broker":"zerodha"}`,
			expectedStatus: http.StatusNotFound,
			expectedBody:   "symbol not found",
		},
		{
			name:           "store failure is 500",
			getErr:         assert.AnError,
			body:           `{"broker":"zerodha"}`,
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getter := &mockSymbolGetter{
				GetSymbolByIDFunc: func(ctx context.Context, id string) (*entity.StandardizedSymbol, error) {
					if tt.getErr != nil {
						return nil, tt.getErr
					}
					return tt.symbol, nil
				},
			}
			router := newBrokerRouter(getter)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodPost, "/symbols/abc123/convert", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}
