package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"symbol_backend/internal/feature/symbols/domain"
	"symbol_backend/internal/feature/symbols/domain/entity"
	"symbol_backend/internal/feature/symbols/transport/http/dto"
	"symbol_backend/internal/feature/symbols/usecase"
)

// SymbolUsecase は銘柄参照に関するユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type SymbolUsecase interface {
	GetSymbolByID(ctx context.Context, id string) (*entity.StandardizedSymbol, error)
	GetSymbolsByUnderlying(ctx context.Context, underlying string) ([]entity.StandardizedSymbol, error)
	SearchSymbols(ctx context.Context, filters usecase.SearchFilters) (*usecase.SearchResult, error)
	GetSymbolHistory(ctx context.Context, symbolID string, limit int) ([]entity.SymbolHistory, error)
	RecentProcessingLogs(ctx context.Context, limit int) ([]entity.ProcessingLog, error)
}

// SymbolHandler は銘柄参照に関するHTTPリクエストを処理します。
type SymbolHandler struct {
	uc SymbolUsecase
}

// NewSymbolHandler は新しい SymbolHandler を作成します。
func NewSymbolHandler(uc SymbolUsecase) *SymbolHandler {
	return &SymbolHandler{uc: uc}
}

// Get は正準IDで銘柄を1件返すAPIです。見つからない場合は404を返します。
func (h *SymbolHandler) Get(c *gin.Context) {
	symbol, err := h.uc.GetSymbolByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, domain.ErrSymbolNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, symbol)
}

// ListByUnderlying は同一原資産のデリバティブ一覧（オプションチェーン）を返します。
func (h *SymbolHandler) ListByUnderlying(c *gin.Context) {
	symbols, err := h.uc.GetSymbolsByUnderlying(c.Request.Context(), c.Param("underlying"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"symbols": symbols, "count": len(symbols)})
}

// Search はフィルタ付き銘柄検索APIです。クエリパラメータをフィルタへ
// 変換してユースケースに委譲します。
func (h *SymbolHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filters, err := searchFilters(&req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.SearchSymbols(c.Request.Context(), filters)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// History は対象銘柄の変更履歴を返すAPIです。
func (h *SymbolHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	rows, err := h.uc.GetSymbolHistory(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": rows, "count": len(rows)})
}

// ProcessingLogs は直近の取り込み実行記録を返す運用向けAPIです。
func (h *SymbolHandler) ProcessingLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	logs, err := h.uc.RecentProcessingLogs(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs, "count": len(logs)})
}

// searchFilters converts the request DTO into usecase filters.
func searchFilters(req *dto.SearchRequest) (usecase.SearchFilters, error) {
	filters := usecase.SearchFilters{
		Query:          req.Query,
		InstrumentType: entity.InstrumentType(req.InstrumentType),
		Exchange:       entity.Exchange(req.Exchange),
		Underlying:     req.Underlying,
		MinStrike:      req.MinStrike,
		MaxStrike:      req.MaxStrike,
		OptionType:     entity.OptionType(req.OptionType),
		IsActive:       req.IsActive,
		Limit:          req.Limit,
		Offset:         req.Offset,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
	}
	if req.ExpiryFrom != "" {
		t, err := time.Parse("2006-01-02", req.ExpiryFrom)
		if err != nil {
			return filters, errors.New("expiry_from must be an ISO date")
		}
		filters.ExpiryFrom = &t
	}
	if req.ExpiryTo != "" {
		t, err := time.Parse("2006-01-02", req.ExpiryTo)
		if err != nil {
			return filters, errors.New("expiry_to must be an ISO date")
		}
		filters.ExpiryTo = &t
	}
	return filters, nil
}
