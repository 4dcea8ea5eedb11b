// Package usecase implements the business logic for standardized symbol
// operations: lookups, filtered search and the deduplicating bulk upsert.
package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"symbol_backend/internal/feature/symbols/domain/entity"
	"symbol_backend/internal/feature/symbols/validation"
	"symbol_backend/internal/shared/ratelimiter"
)

const (
	defaultChunkSize   = 500 // 1チャンクあたりのupsert件数
	defaultSearchLimit = 50
	maxSearchLimit     = 500
)

// SearchFilters describes a filtered, paginated symbol search.
type SearchFilters struct {
	Query          string                `form:"q" json:"query,omitempty"`
	InstrumentType entity.InstrumentType `form:"instrument_type" json:"instrument_type,omitempty"`
	Exchange       entity.Exchange       `form:"exchange" json:"exchange,omitempty"`
	Underlying     string                `form:"underlying" json:"underlying,omitempty"`
	MinStrike      *float64              `form:"min_strike" json:"min_strike,omitempty"`
	MaxStrike      *float64              `form:"max_strike" json:"max_strike,omitempty"`
	OptionType     entity.OptionType     `form:"option_type" json:"option_type,omitempty"`
	ExpiryFrom     *time.Time            `form:"expiry_from" json:"expiry_from,omitempty"`
	ExpiryTo       *time.Time            `form:"expiry_to" json:"expiry_to,omitempty"`
	IsActive       *bool                 `form:"is_active" json:"is_active,omitempty"`
	Limit          int                   `form:"limit" json:"limit,omitempty"`
	Offset         int                   `form:"offset" json:"offset,omitempty"`
	SortBy         string                `form:"sort_by" json:"sort_by,omitempty"`
	SortOrder      string                `form:"sort_order" json:"sort_order,omitempty"`
}

// SearchResult is a single page of a filtered search.
type SearchResult struct {
	Symbols []entity.StandardizedSymbol `json:"symbols"`
	Total   int64                       `json:"total"`
	HasMore bool                        `json:"has_more"`
}

// SymbolRepository abstracts the persistence layer for standardized symbols.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SymbolRepository interface {
	GetByID(ctx context.Context, id string) (*entity.StandardizedSymbol, error)
	GetByTradingSymbol(ctx context.Context, tradingSymbol string, exchange entity.Exchange) (*entity.StandardizedSymbol, error)
	GetByUnderlying(ctx context.Context, underlying string) ([]entity.StandardizedSymbol, error)
	Search(ctx context.Context, filters SearchFilters) (*SearchResult, error)
	UpsertOne(ctx context.Context, candidate *entity.StandardizedSymbol) (entity.ChangeType, error)
	HistoryForSymbol(ctx context.Context, symbolID string, limit int) ([]entity.SymbolHistory, error)
	CreateProcessingLog(ctx context.Context, log *entity.ProcessingLog) error
	UpdateProcessingLog(ctx context.Context, log *entity.ProcessingLog) error
	RecentProcessingLogs(ctx context.Context, limit int) ([]entity.ProcessingLog, error)
	CreateRejectedSymbol(ctx context.Context, rejected *entity.RejectedSymbol) error
}

// SymbolChangeEvent is emitted after a successful write for downstream
// consumers (option-chain rebuilders, audit sinks).
type SymbolChangeEvent struct {
	SymbolID      string            `json:"symbol_id"`
	TradingSymbol string            `json:"trading_symbol"`
	Exchange      entity.Exchange   `json:"exchange"`
	ChangeType    entity.ChangeType `json:"change_type"`
	OccurredAt    time.Time         `json:"occurred_at"`
}

// EventPublisher publishes symbol change events. Implementations are
// best-effort; a publish failure never fails the write.
type EventPublisher interface {
	PublishSymbolChange(ctx context.Context, event SymbolChangeEvent) error
}

// UpsertError surfaces the validation issues that kept one candidate out of
// the store.
type UpsertError struct {
	TradingSymbol string             `json:"trading_symbol"`
	Exchange      entity.Exchange    `json:"exchange"`
	Issues        []validation.Issue `json:"issues"`
}

// UpsertSummary is the aggregate outcome of a bulk upsert.
type UpsertSummary struct {
	TotalProcessed int           `json:"total_processed"`
	ValidSymbols   int           `json:"valid_symbols"`
	InvalidSymbols int           `json:"invalid_symbols"`
	NewSymbols     int           `json:"new_symbols"`
	UpdatedSymbols int           `json:"updated_symbols"`
	Errors         []UpsertError `json:"errors"`
}

// SymbolUsecase provides business logic for symbol operations.
type SymbolUsecase struct {
	repo      SymbolRepository
	engine    *validation.Engine
	events    EventPublisher
	limiter   ratelimiter.RateLimiterInterface
	chunkSize int
}

// NewSymbolUsecase creates a new SymbolUsecase. events and limiter may be nil.
func NewSymbolUsecase(repo SymbolRepository, engine *validation.Engine, events EventPublisher, limiter ratelimiter.RateLimiterInterface) *SymbolUsecase {
	return &SymbolUsecase{
		repo:      repo,
		engine:    engine,
		events:    events,
		limiter:   limiter,
		chunkSize: defaultChunkSize,
	}
}

// SetChunkSize overrides the upsert chunk size. Throughput knob, not a
// correctness requirement.
func (u *SymbolUsecase) SetChunkSize(n int) {
	if n > 0 {
		u.chunkSize = n
	}
}

// Engine exposes the validation engine for operational rule tuning.
func (u *SymbolUsecase) Engine() *validation.Engine {
	return u.engine
}

// UpsertSymbols は候補バッチをストアに反映します。呼び出し側が事前検証して
// いても、ここで必ず再検証します（ストアが最終ゲート）。有効な候補は
// チャンク単位でupsertし、CREATED/UPDATEDを数えます。無効な候補はバッチを
// 中断せずにErrorsへ載せます。永続化エラーだけは呼び出し元へ伝播します。
func (u *SymbolUsecase) UpsertSymbols(ctx context.Context, candidates []entity.StandardizedSymbol) (*UpsertSummary, error) {
	result := u.engine.Validate(candidates)

	summary := &UpsertSummary{
		TotalProcessed: len(candidates),
		ValidSymbols:   len(result.ValidSymbols),
		InvalidSymbols: len(result.InvalidSymbols),
		Errors:         []UpsertError{},
	}
	for _, inv := range result.InvalidSymbols {
		summary.Errors = append(summary.Errors, UpsertError{
			TradingSymbol: inv.Symbol.TradingSymbol,
			Exchange:      inv.Symbol.Exchange,
			Issues:        inv.Issues,
		})
	}

	for start := 0; start < len(result.ValidSymbols); start += u.chunkSize {
		end := start + u.chunkSize
		if end > len(result.ValidSymbols) {
			end = len(result.ValidSymbols)
		}
		if start > 0 && u.limiter != nil {
			u.limiter.WaitIfNeeded()
		}
		for i := start; i < end; i++ {
			candidate := result.ValidSymbols[i]
			changeType, err := u.repo.UpsertOne(ctx, &candidate)
			if err != nil {
				return summary, fmt.Errorf("upsert %s/%s: %w", candidate.Exchange, candidate.TradingSymbol, err)
			}
			switch changeType {
			case entity.ChangeCreated:
				summary.NewSymbols++
			default:
				summary.UpdatedSymbols++
			}
			u.publishChange(ctx, &candidate, changeType)
		}
	}

	return summary, nil
}

// publishChange emits a change event when a publisher is configured.
// UNCHANGED short-circuits are not published.
func (u *SymbolUsecase) publishChange(ctx context.Context, s *entity.StandardizedSymbol, changeType entity.ChangeType) {
	if u.events == nil || changeType == entity.ChangeUnchanged {
		return
	}
	event := SymbolChangeEvent{
		SymbolID:      s.ID,
		TradingSymbol: s.TradingSymbol,
		Exchange:      s.Exchange,
		ChangeType:    changeType,
		OccurredAt:    time.Now(),
	}
	if err := u.events.PublishSymbolChange(ctx, event); err != nil {
		slog.Error("failed to publish symbol change event",
			"symbol", s.TradingSymbol, "change", changeType, "error", err)
	}
}

// GetSymbolByID returns the symbol with the given canonical id.
func (u *SymbolUsecase) GetSymbolByID(ctx context.Context, id string) (*entity.StandardizedSymbol, error) {
	return u.repo.GetByID(ctx, id)
}

// GetSymbolByTradingSymbol resolves a symbol by its trading symbol, optionally
// scoped to one exchange.
func (u *SymbolUsecase) GetSymbolByTradingSymbol(ctx context.Context, tradingSymbol string, exchange entity.Exchange) (*entity.StandardizedSymbol, error) {
	return u.repo.GetByTradingSymbol(ctx, tradingSymbol, exchange)
}

// GetSymbolsByUnderlying returns every derivative sharing an underlying, for
// option-chain and futures-chain construction.
func (u *SymbolUsecase) GetSymbolsByUnderlying(ctx context.Context, underlying string) ([]entity.StandardizedSymbol, error) {
	return u.repo.GetByUnderlying(ctx, underlying)
}

// SearchSymbols runs a filtered search after clamping pagination inputs.
func (u *SymbolUsecase) SearchSymbols(ctx context.Context, filters SearchFilters) (*SearchResult, error) {
	if filters.Limit <= 0 {
		filters.Limit = defaultSearchLimit
	}
	if filters.Limit > maxSearchLimit {
		filters.Limit = maxSearchLimit
	}
	if filters.Offset < 0 {
		filters.Offset = 0
	}
	return u.repo.Search(ctx, filters)
}

// GetSymbolHistory returns the change history for one symbol, newest first.
func (u *SymbolUsecase) GetSymbolHistory(ctx context.Context, symbolID string, limit int) ([]entity.SymbolHistory, error) {
	return u.repo.HistoryForSymbol(ctx, symbolID, limit)
}

// CreateProcessingLog records the start of an ingestion or validation run.
func (u *SymbolUsecase) CreateProcessingLog(ctx context.Context, log *entity.ProcessingLog) error {
	return u.repo.CreateProcessingLog(ctx, log)
}

// UpdateProcessingLog updates an existing run record.
func (u *SymbolUsecase) UpdateProcessingLog(ctx context.Context, log *entity.ProcessingLog) error {
	return u.repo.UpdateProcessingLog(ctx, log)
}

// RecentProcessingLogs returns the most recent run records, newest first.
func (u *SymbolUsecase) RecentProcessingLogs(ctx context.Context, limit int) ([]entity.ProcessingLog, error) {
	return u.repo.RecentProcessingLogs(ctx, limit)
}

// RecordRejectedSymbol writes a raw-row reject for debugging. Best effort.
func (u *SymbolUsecase) RecordRejectedSymbol(ctx context.Context, rejected *entity.RejectedSymbol) error {
	return u.repo.CreateRejectedSymbol(ctx, rejected)
}
