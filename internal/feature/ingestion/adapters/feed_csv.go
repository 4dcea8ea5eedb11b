// Package adapters はingestionフィーチャーのフィード読み取り実装を提供します。
package adapters

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"symbol_backend/internal/feature/ingestion/domain/entity"
	"symbol_backend/internal/feature/ingestion/usecase"
)

// feedCSV はFeedReaderインターフェースのCSVファイル実装です。
type feedCSV struct{}

var _ usecase.FeedReader = (*feedCSV)(nil)

// NewFeedCSV creates a CSV feed reader.
func NewFeedCSV() *feedCSV {
	return &feedCSV{}
}

// ReadFile は銘柄マスタのCSVエクスポートを全行読み込みます。
// ファイルが存在しない・開けない・1行も無い場合は実行全体の致命エラーです。
func (f *feedCSV) ReadFile(path string) ([]entity.RawInstrumentRow, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open feed file: %w", err)
	}
	defer file.Close()

	var rows []entity.RawInstrumentRow
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("parse feed file %s: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("feed file %s is empty", path)
	}
	return rows, nil
}
