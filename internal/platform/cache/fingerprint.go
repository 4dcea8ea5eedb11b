package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"symbol_backend/internal/feature/symbols/usecase"
)

// SearchFingerprint は検索フィルタの安定したフィンガープリントを返します。
// フィールドを固定順で並べてからハッシュするため、等価なフィルタは
// 指定順に関係なく常に同じキーになります。
func SearchFingerprint(f usecase.SearchFilters) string {
	parts := []string{
		"q=" + f.Query,
		"type=" + string(f.InstrumentType),
		"exch=" + string(f.Exchange),
		"und=" + f.Underlying,
		"minStrike=" + floatPart(f.MinStrike),
		"maxStrike=" + floatPart(f.MaxStrike),
		"opt=" + string(f.OptionType),
		"expFrom=" + timePart(f.ExpiryFrom),
		"expTo=" + timePart(f.ExpiryTo),
		"active=" + boolPart(f.IsActive),
		fmt.Sprintf("limit=%d", f.Limit),
		fmt.Sprintf("offset=%d", f.Offset),
		"sortBy=" + f.SortBy,
		"sortOrder=" + f.SortOrder,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "&")))
	return hex.EncodeToString(sum[:])
}

func floatPart(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%g", *v)
}

func timePart(v *time.Time) string {
	if v == nil {
		return ""
	}
	return v.Format("2006-01-02")
}

func boolPart(v *bool) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%t", *v)
}
