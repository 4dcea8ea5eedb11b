// Package validation implements the rule-based validation engine for
// standardized symbol candidates.
package validation

import (
	"math"
	"sync"

	"symbol_backend/internal/feature/symbols/domain/entity"
)

// Severity grades a validation issue.
type Severity string

const (
	// SeverityError marks the record as invalid.
	SeverityError Severity = "ERROR"
	// SeverityWarning is a quality signal; the record stays valid.
	SeverityWarning Severity = "WARNING"
)

// Issue is a single finding produced by a rule against one candidate.
type Issue struct {
	Rule     string   `json:"rule"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Field    string   `json:"field"`
	Value    string   `json:"value,omitempty"`
}

// Rule は候補レコード1件を検査する検証ルールです。Check は純粋関数で、
// 0件以上のIssueを返します。サブクラス化ではなくデータ値として保持する
// ことで、実行時の追加・削除を単なるリスト操作にしています。
type Rule struct {
	Name     string
	Severity Severity
	Check    func(s *entity.StandardizedSymbol) []Issue
}

// InvalidSymbol pairs a rejected candidate with the issues that rejected it.
type InvalidSymbol struct {
	Symbol entity.StandardizedSymbol `json:"symbol"`
	Issues []Issue                   `json:"issues"`
}

// DuplicateGroup reports candidates sharing one identity key within a batch.
// Duplicates are a quality signal, not a rejection.
type DuplicateGroup struct {
	IdentityKey string   `json:"identity_key"`
	Count       int      `json:"count"`
	Members     []string `json:"members"`
}

// QualityMetrics aggregates batch-level validation quality.
type QualityMetrics struct {
	TotalSymbols     int     `json:"total_symbols"`
	ValidSymbols     int     `json:"valid_symbols"`
	InvalidSymbols   int     `json:"invalid_symbols"`
	DuplicateSymbols int     `json:"duplicate_symbols"`
	QualityScore     float64 `json:"quality_score"`
}

// Result is the outcome of validating a batch of candidates.
type Result struct {
	IsValid        bool                        `json:"is_valid"`
	ValidSymbols   []entity.StandardizedSymbol `json:"valid_symbols"`
	InvalidSymbols []InvalidSymbol             `json:"invalid_symbols"`
	AllIssues      []Issue                     `json:"all_issues"`
	Duplicates     []DuplicateGroup            `json:"duplicates"`
	QualityMetrics QualityMetrics              `json:"quality_metrics"`
}

// Engine runs an ordered list of rules over candidate batches.
// Rules can be tuned at runtime, so access is mutex-guarded.
type Engine struct {
	mu    sync.RWMutex
	rules []Rule
}

// NewEngine creates an engine loaded with the default rule set.
func NewEngine() *Engine {
	return &Engine{rules: DefaultRules()}
}

// AddRule appends a rule, replacing an existing rule of the same name in place.
func (e *Engine) AddRule(r Rule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.rules {
		if e.rules[i].Name == r.Name {
			e.rules[i] = r
			return
		}
	}
	e.rules = append(e.rules, r)
}

// RemoveRule removes the named rule and reports whether it was present.
func (e *Engine) RemoveRule(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.rules {
		if e.rules[i].Name == name {
			e.rules = append(e.rules[:i], e.rules[i+1:]...)
			return true
		}
	}
	return false
}

// Rules returns a copy of the current rule list in evaluation order.
func (e *Engine) Rules() []Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}

// Validate は候補バッチを全ルールで検査し、有効・無効の振り分けと
// 重複グループ、品質メトリクスをまとめて返します。ERRORが1件でも付いた
// レコードは無効、WARNINGのみなら有効のままです。
func (e *Engine) Validate(candidates []entity.StandardizedSymbol) *Result {
	rules := e.Rules()

	res := &Result{
		ValidSymbols:   []entity.StandardizedSymbol{},
		InvalidSymbols: []InvalidSymbol{},
		AllIssues:      []Issue{},
		Duplicates:     []DuplicateGroup{},
	}

	for i := range candidates {
		var issues []Issue
		for _, r := range rules {
			issues = append(issues, r.Check(&candidates[i])...)
		}

		hasError := false
		for _, is := range issues {
			if is.Severity == SeverityError {
				hasError = true
				break
			}
		}

		res.AllIssues = append(res.AllIssues, issues...)
		if hasError {
			res.InvalidSymbols = append(res.InvalidSymbols, InvalidSymbol{
				Symbol: candidates[i],
				Issues: issues,
			})
		} else {
			res.ValidSymbols = append(res.ValidSymbols, candidates[i])
		}
	}

	res.Duplicates = findDuplicates(candidates)

	dupCount := 0
	for _, g := range res.Duplicates {
		dupCount += g.Count
	}

	total := len(candidates)
	res.QualityMetrics = QualityMetrics{
		TotalSymbols:     total,
		ValidSymbols:     len(res.ValidSymbols),
		InvalidSymbols:   len(res.InvalidSymbols),
		DuplicateSymbols: dupCount,
	}
	if total > 0 {
		res.QualityMetrics.QualityScore = math.Round(float64(len(res.ValidSymbols))/float64(total)*10000) / 100
	}
	res.IsValid = len(res.InvalidSymbols) == 0

	return res
}

// findDuplicates groups candidates by identity key and reports groups of two
// or more.
func findDuplicates(candidates []entity.StandardizedSymbol) []DuplicateGroup {
	byKey := map[string][]string{}
	order := []string{}
	for i := range candidates {
		key := candidates[i].ComputeIdentityKey()
		if _, seen := byKey[key]; !seen {
			order = append(order, key)
		}
		byKey[key] = append(byKey[key], candidates[i].TradingSymbol)
	}

	groups := []DuplicateGroup{}
	for _, key := range order {
		members := byKey[key]
		if len(members) > 1 {
			groups = append(groups, DuplicateGroup{
				IdentityKey: key,
				Count:       len(members),
				Members:     members,
			})
		}
	}
	return groups
}
