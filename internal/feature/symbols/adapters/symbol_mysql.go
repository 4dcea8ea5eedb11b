// Package adapters はsymbolsフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"symbol_backend/internal/feature/symbols/domain"
	"symbol_backend/internal/feature/symbols/domain/entity"
	"symbol_backend/internal/feature/symbols/usecase"
)

// symbolMySQL はSymbolRepositoryインターフェースのMySQL実装です。
type symbolMySQL struct {
	db *gorm.DB
}

var _ usecase.SymbolRepository = (*symbolMySQL)(nil)

// NewSymbolRepository は指定されたDB接続でsymbolMySQLリポジトリの新しいインスタンスを生成します。
func NewSymbolRepository(db *gorm.DB) *symbolMySQL {
	return &symbolMySQL{db: db}
}

// GetByID は正準IDで銘柄を1件取得します。
func (r *symbolMySQL) GetByID(ctx context.Context, id string) (*entity.StandardizedSymbol, error) {
	var symbol entity.StandardizedSymbol
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSymbolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &symbol, nil
}

// GetByTradingSymbol は銘柄コードで1件取得します。exchangeが空の場合は
// 全取引所を対象にし、アクティブなレコードを優先します。
func (r *symbolMySQL) GetByTradingSymbol(ctx context.Context, tradingSymbol string, exchange entity.Exchange) (*entity.StandardizedSymbol, error) {
	q := r.db.WithContext(ctx).Where("trading_symbol = ?", tradingSymbol)
	if exchange != "" {
		q = q.Where("exchange = ?", exchange)
	}
	var symbol entity.StandardizedSymbol
	err := q.Order("is_active DESC").Order("id ASC").First(&symbol).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSymbolNotFound
	}
	if err != nil {
		return nil, err
	}
	return &symbol, nil
}

// GetByUnderlying は同一原資産を持つデリバティブをチェーン構築順
// (満期, 権利行使価格, オプション種別) で返します。
func (r *symbolMySQL) GetByUnderlying(ctx context.Context, underlying string) ([]entity.StandardizedSymbol, error) {
	var symbols []entity.StandardizedSymbol
	err := r.db.WithContext(ctx).
		Where("underlying = ?", underlying).
		Where("instrument_type IN ?", []entity.InstrumentType{entity.InstrumentOption, entity.InstrumentFuture}).
		Order("expiry_date ASC").
		Order("strike_price ASC").
		Order("option_type ASC").
		Order("id ASC").
		Find(&symbols).Error
	if err != nil {
		return nil, err
	}
	return symbols, nil
}

// sortColumns is the whitelist of user-selectable sort keys.
var sortColumns = map[string]string{
	"trading_symbol": "trading_symbol",
	"display_name":   "display_name",
	"expiry_date":    "expiry_date",
	"strike_price":   "strike_price",
	"last_updated":   "last_updated",
	"created_at":     "created_at",
}

// Search はフィルタ付き検索を実行します。ページングを安定させるため、
// どのソート順でも最後にidで順序を固定します。
func (r *symbolMySQL) Search(ctx context.Context, filters usecase.SearchFilters) (*usecase.SearchResult, error) {
	q := r.db.WithContext(ctx).Model(&entity.StandardizedSymbol{})

	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		q = q.Where("display_name LIKE ? OR trading_symbol LIKE ? OR company_name LIKE ?", like, like, like)
	}
	if filters.InstrumentType != "" {
		q = q.Where("instrument_type = ?", filters.InstrumentType)
	}
	if filters.Exchange != "" {
		q = q.Where("exchange = ?", filters.Exchange)
	}
	if filters.Underlying != "" {
		q = q.Where("underlying = ?", filters.Underlying)
	}
	if filters.MinStrike != nil {
		q = q.Where("strike_price >= ?", *filters.MinStrike)
	}
	if filters.MaxStrike != nil {
		q = q.Where("strike_price <= ?", *filters.MaxStrike)
	}
	if filters.OptionType != "" {
		q = q.Where("option_type = ?", filters.OptionType)
	}
	if filters.ExpiryFrom != nil {
		q = q.Where("expiry_date >= ?", *filters.ExpiryFrom)
	}
	if filters.ExpiryTo != nil {
		q = q.Where("expiry_date <= ?", *filters.ExpiryTo)
	}
	if filters.IsActive != nil {
		q = q.Where("is_active = ?", *filters.IsActive)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, err
	}

	if col, ok := sortColumns[filters.SortBy]; ok {
		order := "ASC"
		if filters.SortOrder == "desc" || filters.SortOrder == "DESC" {
			order = "DESC"
		}
		q = q.Order(col + " " + order)
	} else {
		q = q.Order("trading_symbol ASC")
	}
	q = q.Order("id ASC")

	var symbols []entity.StandardizedSymbol
	if err := q.Limit(filters.Limit).Offset(filters.Offset).Find(&symbols).Error; err != nil {
		return nil, err
	}

	return &usecase.SearchResult{
		Symbols: symbols,
		Total:   total,
		HasMore: int64(filters.Offset+filters.Limit) < total,
	}, nil
}

// UpsertOne は識別キーで1件をinsertまたはupdateし、履歴行を追記します。
// 同一キーに対する並行upsertは一意インデックス違反で検出し、update側に
// 倒すことでCREATEDがちょうど1回になるよう収束させます。
//
// 負けた側のリトライは同一トランザクション内では行いません。REPEATABLE READ
// ではスナップショットが最初の読み取りで固定されるため、同じトランザクション
// で読み直しても勝者のコミット済み行は見えないからです。新しいトランザク
// ションなら新しいスナップショットで勝者の行が見えます。
func (r *symbolMySQL) UpsertOne(ctx context.Context, candidate *entity.StandardizedSymbol) (entity.ChangeType, error) {
	candidate.IdentityKey = candidate.ComputeIdentityKey()
	hash := candidate.ComputeContentHash()

	changeType, err := r.upsertTx(ctx, candidate, hash)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		changeType, err = r.upsertTx(ctx, candidate, hash)
	}
	if err != nil {
		return "", err
	}
	return changeType, nil
}

// upsertTx runs one insert-or-update attempt in its own transaction. A lost
// insert race surfaces as gorm.ErrDuplicatedKey after rollback.
func (r *symbolMySQL) upsertTx(ctx context.Context, candidate *entity.StandardizedSymbol, hash string) (entity.ChangeType, error) {
	var changeType entity.ChangeType
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing entity.StandardizedSymbol
		err := tx.Where("identity_key = ?", candidate.IdentityKey).First(&existing).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			changeType = entity.ChangeCreated
			return r.createSymbol(tx, candidate, hash)
		}
		if err != nil {
			return err
		}

		changeType, err = r.updateSymbol(tx, &existing, candidate, hash)
		return err
	})
	if err != nil {
		return "", err
	}
	return changeType, nil
}

// createSymbol inserts a fresh record plus its CREATED history row.
func (r *symbolMySQL) createSymbol(tx *gorm.DB, candidate *entity.StandardizedSymbol, hash string) error {
	now := time.Now()
	candidate.ContentHash = hash
	candidate.LastUpdated = now
	if candidate.CreatedAt.IsZero() {
		candidate.CreatedAt = now
	}

	if err := tx.Create(candidate).Error; err != nil {
		return err
	}

	return r.writeHistory(tx, candidate.ID, entity.ChangeCreated, nil, candidate)
}

// updateSymbol applies candidate fields over the stored record. An unchanged
// content hash short-circuits the write entirely.
func (r *symbolMySQL) updateSymbol(tx *gorm.DB, existing, candidate *entity.StandardizedSymbol, hash string) (entity.ChangeType, error) {
	if existing.ContentHash != "" && existing.ContentHash == hash && existing.IsActive == candidate.IsActive {
		*candidate = *existing
		return entity.ChangeUnchanged, nil
	}

	changeType := entity.ChangeUpdated
	if existing.IsActive && !candidate.IsActive {
		changeType = entity.ChangeDeactivated
	} else if !existing.IsActive && candidate.IsActive {
		changeType = entity.ChangeReactivated
	}

	old := *existing

	// 識別子と作成時刻は既存レコードのものを維持する
	candidate.ID = existing.ID
	candidate.CreatedAt = existing.CreatedAt
	candidate.ContentHash = hash
	// lastUpdatedはフックではなくここで明示的に設定する
	candidate.LastUpdated = time.Now()

	if err := tx.Save(candidate).Error; err != nil {
		return "", err
	}

	return changeType, r.writeHistory(tx, candidate.ID, changeType, &old, candidate)
}

// writeHistory appends one history row with JSON snapshots.
func (r *symbolMySQL) writeHistory(tx *gorm.DB, symbolID string, changeType entity.ChangeType, old, updated *entity.StandardizedSymbol) error {
	row := entity.SymbolHistory{
		SymbolID:   symbolID,
		ChangeType: changeType,
		ChangedAt:  time.Now(),
	}
	if old != nil {
		b, err := json.Marshal(old)
		if err != nil {
			return fmt.Errorf("marshal old snapshot: %w", err)
		}
		row.OldData = string(b)
	}
	if updated != nil {
		b, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("marshal new snapshot: %w", err)
		}
		row.NewData = string(b)
	}
	return tx.Create(&row).Error
}

// HistoryForSymbol は対象銘柄の履歴を新しい順で返します。
func (r *symbolMySQL) HistoryForSymbol(ctx context.Context, symbolID string, limit int) ([]entity.SymbolHistory, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []entity.SymbolHistory
	err := r.db.WithContext(ctx).
		Where("symbol_id = ?", symbolID).
		Order("changed_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CreateProcessingLog inserts a new run record.
func (r *symbolMySQL) CreateProcessingLog(ctx context.Context, log *entity.ProcessingLog) error {
	if log.StartedAt.IsZero() {
		log.StartedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(log).Error
}

// UpdateProcessingLog saves an existing run record.
func (r *symbolMySQL) UpdateProcessingLog(ctx context.Context, log *entity.ProcessingLog) error {
	return r.db.WithContext(ctx).Save(log).Error
}

// RecentProcessingLogs returns the newest run records first.
func (r *symbolMySQL) RecentProcessingLogs(ctx context.Context, limit int) ([]entity.ProcessingLog, error) {
	if limit <= 0 {
		limit = 20
	}
	var logs []entity.ProcessingLog
	err := r.db.WithContext(ctx).
		Order("started_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}

// CreateRejectedSymbol writes one raw-row reject.
func (r *symbolMySQL) CreateRejectedSymbol(ctx context.Context, rejected *entity.RejectedSymbol) error {
	if rejected.RejectedAt.IsZero() {
		rejected.RejectedAt = time.Now()
	}
	return r.db.WithContext(ctx).Create(rejected).Error
}
