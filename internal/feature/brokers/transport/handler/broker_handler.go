package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"symbol_backend/internal/feature/brokers"
	"symbol_backend/internal/feature/symbols/domain"
	"symbol_backend/internal/feature/symbols/domain/entity"
)

// SymbolGetter resolves canonical ids for the conversion endpoints.
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolGetter interface {
	GetSymbolByID(ctx context.Context, id string) (*entity.StandardizedSymbol, error)
}

// BrokerHandler はブローカー形式変換のHTTPリクエストを処理します。
type BrokerHandler struct {
	registry *brokers.Registry
	symbols  SymbolGetter
}

// NewBrokerHandler は新しい BrokerHandler を作成します。
func NewBrokerHandler(registry *brokers.Registry, symbols SymbolGetter) *BrokerHandler {
	return &BrokerHandler{registry: registry, symbols: symbols}
}

// Stats は登録済みコンバータの一覧と対応取引所を返します。
func (h *BrokerHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Stats())
}

// Compatible は対象銘柄を変換できるブローカー名の一覧を返します。
func (h *BrokerHandler) Compatible(c *gin.Context) {
	symbol, ok := h.loadSymbol(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"brokers": h.registry.CompatibleBrokers(symbol)})
}

// convertRequest is the POST /symbols/:id/convert body.
type convertRequest struct {
	Broker string `json:"broker" binding:"required"`
}

// Convert は銘柄を指定ブローカーのワイヤ形式へ変換します。
// 未登録ブローカーは404、対応外取引所は422を返します。
func (h *BrokerHandler) Convert(c *gin.Context) {
	symbol, ok := h.loadSymbol(c)
	if !ok {
		return
	}

	var req convertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	converted, err := h.registry.ConvertSymbol(symbol, req.Broker)
	if err != nil {
		switch {
		case errors.Is(err, brokers.ErrNoConverter):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, brokers.ErrUnsupportedExchange):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, converted)
}

// loadSymbol resolves the :id path parameter, writing the error response on
// failure.
func (h *BrokerHandler) loadSymbol(c *gin.Context) (*entity.StandardizedSymbol, bool) {
	symbol, err := h.symbols.GetSymbolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return symbol, true
}
