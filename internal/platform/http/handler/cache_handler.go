package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"symbol_backend/internal/platform/cache"
)

// CacheIntrospector はキャッシュ運用エンドポイントが必要とする統計操作を定義します。
// Following Go convention: interfaces are defined by the consumer, not the implementation.
type CacheIntrospector interface {
	Stats() cache.StatsSnapshot
	ResetStats()
	MemoryEstimate() cache.MemoryBreakdown
}

// OpsHandler は管理者向けのキャッシュ統計・リセットエンドポイントを処理します。
type OpsHandler struct {
	cache CacheIntrospector
}

// NewOpsHandler は新しいOpsHandlerを生成します。
func NewOpsHandler(cache CacheIntrospector) *OpsHandler {
	return &OpsHandler{cache: cache}
}

// CacheStats はGET /admin/cache/stats を処理し、ヒット率とメモリ推定を返します。
func (h *OpsHandler) CacheStats(c *gin.Context) {
	snap := h.cache.Stats()
	mem := h.cache.MemoryEstimate()
	c.JSON(http.StatusOK, gin.H{
		"hits":     snap.Hits,
		"misses":   snap.Misses,
		"hit_rate": snap.HitRate,
		"memory":   mem,
	})
}

// CacheReset はPOST /admin/cache/reset を処理し、統計カウンタをゼロに戻します。
// キャッシュ本体の内容は破棄しません。
func (h *OpsHandler) CacheReset(c *gin.Context) {
	h.cache.ResetStats()
	c.JSON(http.StatusOK, gin.H{"status": "reset"})
}
