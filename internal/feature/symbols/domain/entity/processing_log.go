package entity

import "time"

// ProcessType identifies what kind of run produced a processing log.
type ProcessType string

const (
	ProcessDailyUpdate  ProcessType = "DAILY_UPDATE"
	ProcessManualUpdate ProcessType = "MANUAL_UPDATE"
	ProcessValidation   ProcessType = "VALIDATION"
)

// ProcessStatus tracks the lifecycle of a run.
type ProcessStatus string

const (
	ProcessStarted   ProcessStatus = "STARTED"
	ProcessCompleted ProcessStatus = "COMPLETED"
	ProcessFailed    ProcessStatus = "FAILED"
)

// ProcessingLog は取り込み・検証の1実行分の運用記録です。
// ダッシュボード側から読み取り専用で参照されます。
type ProcessingLog struct {
	ID             uint          `gorm:"primaryKey" json:"id"`
	ProcessType    ProcessType   `gorm:"size:16;not null;index" json:"process_type"`
	Source         string        `gorm:"size:64;not null" json:"source"`
	Status         ProcessStatus `gorm:"size:12;not null" json:"status"`
	TotalProcessed int           `json:"total_processed"`
	ValidSymbols   int           `json:"valid_symbols"`
	InvalidSymbols int           `json:"invalid_symbols"`
	NewSymbols     int           `json:"new_symbols"`
	UpdatedSymbols int           `json:"updated_symbols"`
	ErrorMessage   string        `gorm:"type:text" json:"error_message,omitempty"`
	StartedAt      time.Time     `gorm:"not null;index" json:"started_at"`
	CompletedAt    *time.Time    `json:"completed_at,omitempty"`
}

// TableName specifies the table name for ProcessingLog.
func (ProcessingLog) TableName() string {
	return "processing_logs"
}

// RejectedSymbol is a debugging sink for raw rows that could not be
// transformed into a candidate at all. Validation failures on well-formed
// candidates are not recorded here.
type RejectedSymbol struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Source     string    `gorm:"size:64;not null;index" json:"source"`
	Reason     string    `gorm:"size:255;not null" json:"reason"`
	RawData    string    `gorm:"type:text" json:"raw_data"`
	RejectedAt time.Time `gorm:"not null" json:"rejected_at"`
}

// TableName specifies the table name for RejectedSymbol.
func (RejectedSymbol) TableName() string {
	return "rejected_symbols"
}
