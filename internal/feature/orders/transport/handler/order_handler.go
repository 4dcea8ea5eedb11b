package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"symbol_backend/internal/feature/orders/usecase"
	"symbol_backend/internal/feature/symbols/domain"
	"symbol_backend/internal/feature/symbols/domain/entity"
)

// OrderValidatorUsecase は注文前検証ユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type OrderValidatorUsecase interface {
	ValidateAndResolveSymbol(ctx context.Context, input string, exchange entity.Exchange) (*usecase.Resolution, error)
	ValidateOrderParameters(symbol *entity.StandardizedSymbol, params usecase.OrderParams) usecase.OrderValidation
}

// validateOrderRequest is the POST /orders/validate body.
type validateOrderRequest struct {
	Symbol    string   `json:"symbol" binding:"required"`
	Exchange  string   `json:"exchange"`
	Quantity  int      `json:"quantity" binding:"required"`
	Price     *float64 `json:"price"`
	OrderType string   `json:"order_type" binding:"required"`
}

// OrderHandler は注文パラメータ検証のHTTPリクエストを処理します。
type OrderHandler struct {
	uc OrderValidatorUsecase
}

// NewOrderHandler は新しい OrderHandler を作成します。
func NewOrderHandler(uc OrderValidatorUsecase) *OrderHandler {
	return &OrderHandler{uc: uc}
}

// Validate は銘柄を解決し、数量・価格・満期を検証するAPIです。
// レガシー形式で解決できなかった入力は「未検証」のまま通します
// （移行前の呼び出し元互換）。
func (h *OrderHandler) Validate(c *gin.Context) {
	var req validateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resolution, err := h.uc.ValidateAndResolveSymbol(c.Request.Context(), req.Symbol, entity.Exchange(req.Exchange))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSymbolNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, domain.ErrSymbolInactive):
			c.JSON(http.StatusOK, gin.H{
				"is_valid": false,
				"errors":   []string{err.Error()},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if resolution.Symbol == nil {
		// レガシー形式のソフト成功: 検証に使える銘柄マスタが無い
		c.JSON(http.StatusOK, gin.H{
			"is_valid":   true,
			"errors":     []string{},
			"resolution": resolution,
			"warnings":   []string{"symbol resolved in legacy mode: order parameters are unverified"},
		})
		return
	}

	result := h.uc.ValidateOrderParameters(resolution.Symbol, usecase.OrderParams{
		Quantity:  req.Quantity,
		Price:     req.Price,
		OrderType: usecase.OrderType(req.OrderType),
	})

	c.JSON(http.StatusOK, gin.H{
		"is_valid":   result.IsValid,
		"errors":     result.Errors,
		"resolution": resolution,
	})
}
