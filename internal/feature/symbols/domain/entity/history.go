package entity

import "time"

// ChangeType describes what an upsert did to a stored symbol.
type ChangeType string

const (
	ChangeCreated     ChangeType = "CREATED"
	ChangeUpdated     ChangeType = "UPDATED"
	ChangeDeactivated ChangeType = "DEACTIVATED"
	ChangeReactivated ChangeType = "REACTIVATED"

	// ChangeUnchanged is returned when a matching content hash short-circuits
	// the write. It is never persisted to the history table.
	ChangeUnchanged ChangeType = "UNCHANGED"
)

// SymbolHistory は銘柄レコードの変更履歴です。追記専用で、更新前後の
// スナップショットをJSONで保持します。
type SymbolHistory struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SymbolID   string     `gorm:"size:32;not null;index" json:"symbol_id"`
	ChangeType ChangeType `gorm:"size:16;not null" json:"change_type"`
	OldData    string     `gorm:"type:text" json:"old_data,omitempty"`
	NewData    string     `gorm:"type:text" json:"new_data,omitempty"`
	Actor      string     `gorm:"size:64" json:"actor,omitempty"`
	ChangedAt  time.Time  `gorm:"not null;index" json:"changed_at"`
}

// TableName specifies the table name for SymbolHistory.
func (SymbolHistory) TableName() string {
	return "symbol_histories"
}
