package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	ingestentity "symbol_backend/internal/feature/ingestion/domain/entity"
	"symbol_backend/internal/feature/ingestion/usecase"
	"symbol_backend/internal/feature/symbols/domain/entity"
)

// IngestUsecase は取り込みユースケースのインターフェースです。
// Following Go convention: interfaces are defined by the consumer (handler), not the provider (usecase).
type IngestUsecase interface {
	Process(ctx context.Context, rows []ingestentity.RawInstrumentRow, processType entity.ProcessType, source string) (*usecase.ProcessResult, error)
}

// FeedReader reads a raw instrument export from a path on this host.
type FeedReader interface {
	ReadFile(path string) ([]ingestentity.RawInstrumentRow, error)
}

// ingestRequest is the POST /admin/ingest body.
type ingestRequest struct {
	FilePath string `json:"file_path" binding:"required"`
	Source   string `json:"source"`
}

// IngestHandler は手動取り込みトリガのHTTPリクエストを処理します。
type IngestHandler struct {
	uc     IngestUsecase
	reader FeedReader
}

// NewIngestHandler は新しい IngestHandler を作成します。
func NewIngestHandler(uc IngestUsecase, reader FeedReader) *IngestHandler {
	return &IngestHandler{uc: uc, reader: reader}
}

// Trigger はMANUAL_UPDATEの取り込み実行を開始するAPIです。
// フィードが読めない場合は審査前に400で終了します。個々の行の不備は
// 実行を止めず、サマリに載せて返します。
func (h *IngestHandler) Trigger(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Source == "" {
		req.Source = "manual"
	}

	rows, err := h.reader.ReadFile(req.FilePath)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.uc.Process(c.Request.Context(), rows, entity.ProcessManualUpdate, req.Source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "result": result})
		return
	}
	c.JSON(http.StatusOK, result)
}
