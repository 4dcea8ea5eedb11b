package router

import (
	"github.com/gin-gonic/gin"

	brokerhandler "symbol_backend/internal/feature/brokers/transport/handler"
	ingesthandler "symbol_backend/internal/feature/ingestion/transport/handler"
	orderhandler "symbol_backend/internal/feature/orders/transport/handler"
	symbolhandler "symbol_backend/internal/feature/symbols/transport/handler"
	"symbol_backend/internal/platform/http/handler"
	jwtmw "symbol_backend/internal/platform/jwt"
)

func NewRouter(symbols *symbolhandler.SymbolHandler, orders *orderhandler.OrderHandler,
	brokers *brokerhandler.BrokerHandler, ingest *ingesthandler.IngestHandler,
	rules *symbolhandler.RulesHandler, ops *handler.OpsHandler) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", handler.Health)
	// 銘柄参照
	r.GET("/symbols", symbols.Search)
	r.GET("/symbols/:id", symbols.Get)
	r.GET("/symbols/:id/history", symbols.History)
	r.GET("/symbols/underlying/:underlying", symbols.ListByUnderlying)
	// ブローカー形式変換
	r.GET("/brokers", brokers.Stats)
	r.GET("/symbols/:id/brokers", brokers.Compatible)
	r.POST("/symbols/:id/convert", brokers.Convert)
	// 注文パラメータ検証
	r.POST("/orders/validate", orders.Validate)

	// 認証必須のルート（運用系）
	admin := r.Group("/admin")
	// jwtmw.AuthRequired() ミドルウェアを適用
	// → リクエストヘッダーに JWT が必要になる
	admin.Use(jwtmw.AuthRequired())
	{
		admin.POST("/ingest", ingest.Trigger)
		admin.GET("/rules", rules.List)
		admin.DELETE("/rules/:name", rules.Remove)
		admin.PUT("/rules/equity-mode", rules.SetEquityMode)
		admin.GET("/processing-logs", symbols.ProcessingLogs)
		admin.GET("/cache/stats", ops.CacheStats)
		admin.POST("/cache/reset", ops.CacheReset)
	}

	return r
}
