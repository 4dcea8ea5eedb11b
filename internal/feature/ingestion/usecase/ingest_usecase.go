// Package usecase implements the ingestion processor: transforming raw feed
// rows into standardized symbol candidates and driving them through
// validation into the store.
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	ingestentity "symbol_backend/internal/feature/ingestion/domain/entity"
	"symbol_backend/internal/feature/symbols/domain/entity"
	symbolusecase "symbol_backend/internal/feature/symbols/usecase"
	"symbol_backend/internal/feature/symbols/validation"
)

// instrumentTypeCodes はフィードの商品種別コードから正規の種別への
// 対応表です。ここに無いコード（通貨デリバティブ等）はスキップ対象で、
// バッチを失敗させません。
var instrumentTypeCodes = map[string]entity.InstrumentType{
	"EQ":     entity.InstrumentEquity,
	"CE":     entity.InstrumentOption,
	"PE":     entity.InstrumentOption,
	"FUT":    entity.InstrumentFuture,
	"FUTIDX": entity.InstrumentFuture,
	"FUTSTK": entity.InstrumentFuture,
}

// errSkipRow marks a row the feed carries but this pipeline does not support.
var errSkipRow = errors.New("unsupported instrument row")

// FeedReader reads a raw instrument export.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type FeedReader interface {
	ReadFile(path string) ([]ingestentity.RawInstrumentRow, error)
}

// SymbolStore is the slice of the symbols feature the processor drives.
type SymbolStore interface {
	UpsertSymbols(ctx context.Context, candidates []entity.StandardizedSymbol) (*symbolusecase.UpsertSummary, error)
	CreateProcessingLog(ctx context.Context, log *entity.ProcessingLog) error
	UpdateProcessingLog(ctx context.Context, log *entity.ProcessingLog) error
	RecordRejectedSymbol(ctx context.Context, rejected *entity.RejectedSymbol) error
}

// ProcessResult is the summary of one ingestion run.
type ProcessResult struct {
	TotalProcessed int                        `json:"total_processed"`
	ValidSymbols   int                        `json:"valid_symbols"`
	InvalidSymbols int                        `json:"invalid_symbols"`
	NewSymbols     int                        `json:"new_symbols"`
	UpdatedSymbols int                        `json:"updated_symbols"`
	SkippedRows    int                        `json:"skipped_rows"`
	RejectedRows   int                        `json:"rejected_rows"`
	Symbols        []entity.StandardizedSymbol `json:"symbols"`
	Errors         []validation.InvalidSymbol  `json:"errors"`
}

// IngestUsecase は生フィードの取り込みから検証・永続化までを駆動する
// ユースケースです。
type IngestUsecase struct {
	store  SymbolStore
	engine *validation.Engine
}

// NewIngestUsecase creates a new IngestUsecase.
func NewIngestUsecase(store SymbolStore, engine *validation.Engine) *IngestUsecase {
	return &IngestUsecase{store: store, engine: engine}
}

// Process は生フィード行を候補に変換し、検証エンジンを通してストアへ
// upsertします。個々の行の不備はスキップまたはリジェクトとして数え、
// バッチは必ずサマリ付きで完走させます。致命エラーになるのは処理記録の
// 作成失敗と永続化エラーだけです。
func (iu *IngestUsecase) Process(ctx context.Context, rows []ingestentity.RawInstrumentRow, processType entity.ProcessType, source string) (*ProcessResult, error) {
	runLog := &entity.ProcessingLog{
		ProcessType: processType,
		Source:      source,
		Status:      entity.ProcessStarted,
		StartedAt:   time.Now(),
	}
	if err := iu.store.CreateProcessingLog(ctx, runLog); err != nil {
		return nil, fmt.Errorf("create processing log: %w", err)
	}

	result := &ProcessResult{
		TotalProcessed: len(rows),
		Symbols:        []entity.StandardizedSymbol{},
		Errors:         []validation.InvalidSymbol{},
	}

	candidates := make([]entity.StandardizedSymbol, 0, len(rows))
	for i := range rows {
		candidate, err := transformRow(&rows[i], source)
		if errors.Is(err, errSkipRow) {
			result.SkippedRows++
			continue
		}
		if err != nil {
			result.RejectedRows++
			iu.recordReject(ctx, &rows[i], source, err)
			continue
		}
		candidates = append(candidates, *candidate)
	}

	vres := iu.engine.Validate(candidates)
	result.ValidSymbols = len(vres.ValidSymbols)
	result.InvalidSymbols = len(vres.InvalidSymbols)
	result.Symbols = vres.ValidSymbols
	result.Errors = vres.InvalidSymbols

	summary, err := iu.store.UpsertSymbols(ctx, vres.ValidSymbols)
	if summary != nil {
		result.NewSymbols = summary.NewSymbols
		result.UpdatedSymbols = summary.UpdatedSymbols
	}

	now := time.Now()
	runLog.TotalProcessed = result.TotalProcessed
	runLog.ValidSymbols = result.ValidSymbols
	runLog.InvalidSymbols = result.InvalidSymbols
	runLog.NewSymbols = result.NewSymbols
	runLog.UpdatedSymbols = result.UpdatedSymbols
	runLog.CompletedAt = &now
	if err != nil {
		runLog.Status = entity.ProcessFailed
		runLog.ErrorMessage = err.Error()
	} else {
		runLog.Status = entity.ProcessCompleted
	}
	if logErr := iu.store.UpdateProcessingLog(ctx, runLog); logErr != nil {
		slog.Error("failed to update processing log", "id", runLog.ID, "error", logErr)
	}

	if err != nil {
		return result, fmt.Errorf("upsert symbols: %w", err)
	}
	return result, nil
}

// recordReject persists a raw-row reject for debugging. Best effort.
func (iu *IngestUsecase) recordReject(ctx context.Context, row *ingestentity.RawInstrumentRow, source string, cause error) {
	raw, _ := json.Marshal(row)
	rejected := &entity.RejectedSymbol{
		Source:     source,
		Reason:     cause.Error(),
		RawData:    string(raw),
		RejectedAt: time.Now(),
	}
	if err := iu.store.RecordRejectedSymbol(ctx, rejected); err != nil {
		slog.Error("failed to record rejected symbol", "symbol", row.TradingSymbol, "error", err)
	}
}

// transformRow は1行を標準化候補へ変換します。未対応の商品種別コードや
// 取引所はerrSkipRow、キー列の欠落や数値の解析失敗はリジェクト理由付きの
// エラーを返します。
func transformRow(row *ingestentity.RawInstrumentRow, source string) (*entity.StandardizedSymbol, error) {
	code := strings.ToUpper(strings.TrimSpace(row.InstrumentType))
	instrumentType, supported := instrumentTypeCodes[code]
	if !supported {
		return nil, errSkipRow
	}

	exchange := entity.Exchange(strings.ToUpper(strings.TrimSpace(row.Exchange)))
	if !exchange.Valid() {
		return nil, errSkipRow
	}

	tradingSymbol := strings.ToUpper(strings.TrimSpace(row.TradingSymbol))
	if tradingSymbol == "" {
		return nil, errors.New("missing trading symbol")
	}

	displayName := strings.TrimSpace(row.Name)
	if displayName == "" {
		displayName = tradingSymbol
	}

	lotSize := 0
	if v := strings.TrimSpace(row.LotSize); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("unparsable lot size %q", row.LotSize)
		}
		lotSize = parsed
	}

	tickSize := 0.0
	if v := strings.TrimSpace(row.TickSize); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("unparsable tick size %q", row.TickSize)
		}
		tickSize = parsed
	}

	candidate := &entity.StandardizedSymbol{
		DisplayName:    displayName,
		TradingSymbol:  tradingSymbol,
		InstrumentType: instrumentType,
		Exchange:       exchange,
		Segment:        segmentFor(row, exchange),
		LotSize:        lotSize,
		TickSize:       tickSize,
		IsActive:       true,
		Source:         source,
		ISIN:           strings.ToUpper(strings.TrimSpace(row.ISIN)),
	}

	if instrumentType == entity.InstrumentEquity {
		candidate.CompanyName = displayName
		return candidate, nil
	}

	// デリバティブ固有フィールド
	underlying := strings.ToUpper(strings.TrimSpace(row.Underlying))
	if underlying == "" {
		underlying = strings.ToUpper(strings.TrimSpace(row.Name))
	}
	candidate.Underlying = underlying

	if v := strings.TrimSpace(row.Expiry); v != "" {
		expiry, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, fmt.Errorf("unparsable expiry date %q", row.Expiry)
		}
		candidate.ExpiryDate = &expiry
	}

	if instrumentType == entity.InstrumentOption {
		candidate.OptionType = entity.OptionType(code)
		if v := strings.TrimSpace(row.Strike); v != "" {
			strike, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("unparsable strike price %q", row.Strike)
			}
			candidate.StrikePrice = strike
		}
	}

	return candidate, nil
}

// segmentFor falls back to a venue-derived segment when the feed omits one.
func segmentFor(row *ingestentity.RawInstrumentRow, exchange entity.Exchange) string {
	if seg := strings.ToUpper(strings.TrimSpace(row.Segment)); seg != "" {
		return seg
	}
	switch exchange {
	case entity.ExchangeNFO, entity.ExchangeBFO:
		return string(exchange) + "-FO"
	case entity.ExchangeMCX:
		return "MCX-FO"
	default:
		return string(exchange) + "-EQ"
	}
}
