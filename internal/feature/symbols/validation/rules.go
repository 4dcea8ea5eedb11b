package validation

import (
	"fmt"
	"regexp"
	"time"

	"symbol_backend/internal/feature/symbols/domain/entity"
)

var (
	tradingSymbolPattern = regexp.MustCompile(`^[A-Z0-9\-_]+$`)
	isinPattern          = regexp.MustCompile(`^[A-Z]{2}[A-Z0-9]{9}[0-9]$`)
)

// issue is a small constructor to keep rule bodies short.
func issue(rule string, sev Severity, msg, field, value string) Issue {
	return Issue{Rule: rule, Severity: sev, Message: msg, Field: field, Value: value}
}

// DefaultRules はデフォルトのルールセットを評価順で返します。
// 必須フィールド → 形式チェック → 商品種別ごとの不変条件、の順です。
func DefaultRules() []Rule {
	rules := []Rule{
		{
			Name:     "display_name_required",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.DisplayName == "" {
					return []Issue{issue("display_name_required", SeverityError,
						"display name is required", "display_name", "")}
				}
				return nil
			},
		},
		{
			Name:     "trading_symbol_required",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.TradingSymbol == "" {
					return []Issue{issue("trading_symbol_required", SeverityError,
						"trading symbol is required", "trading_symbol", "")}
				}
				if !tradingSymbolPattern.MatchString(s.TradingSymbol) {
					return []Issue{issue("trading_symbol_required", SeverityError,
						"trading symbol must be uppercase alphanumeric with - or _",
						"trading_symbol", s.TradingSymbol)}
				}
				return nil
			},
		},
		{
			Name:     "instrument_type_valid",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if !s.InstrumentType.Valid() {
					return []Issue{issue("instrument_type_valid", SeverityError,
						fmt.Sprintf("instrument type %q is not supported", s.InstrumentType),
						"instrument_type", string(s.InstrumentType))}
				}
				return nil
			},
		},
		{
			Name:     "exchange_valid",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if !s.Exchange.Valid() {
					return []Issue{issue("exchange_valid", SeverityError,
						fmt.Sprintf("exchange %q is not supported", s.Exchange),
						"exchange", string(s.Exchange))}
				}
				return nil
			},
		},
		{
			Name:     "segment_required",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.Segment == "" {
					return []Issue{issue("segment_required", SeverityError,
						"segment is required", "segment", "")}
				}
				return nil
			},
		},
		{
			Name:     "lot_size_positive",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.LotSize <= 0 {
					return []Issue{issue("lot_size_positive", SeverityError,
						"lot size must be a positive integer", "lot_size",
						fmt.Sprintf("%d", s.LotSize))}
				}
				return nil
			},
		},
		{
			Name:     "tick_size_positive",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.TickSize <= 0 {
					return []Issue{issue("tick_size_positive", SeverityError,
						"tick size must be positive", "tick_size",
						fmt.Sprintf("%g", s.TickSize))}
				}
				return nil
			},
		},
		{
			Name:     "source_required",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.Source == "" {
					return []Issue{issue("source_required", SeverityError,
						"source feed tag is required", "source", "")}
				}
				return nil
			},
		},
		{
			Name:     "isin_format",
			Severity: SeverityWarning,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.ISIN != "" && !isinPattern.MatchString(s.ISIN) {
					return []Issue{issue("isin_format", SeverityWarning,
						"ISIN does not match the ISO 6166 pattern", "isin", s.ISIN)}
				}
				return nil
			},
		},
		StrictEquityCompanyNameRule(),
		{
			Name:     "equity_no_derivative_fields",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.InstrumentType != entity.InstrumentEquity {
					return nil
				}
				var out []Issue
				if s.Underlying != "" {
					out = append(out, issue("equity_no_derivative_fields", SeverityError,
						"equity must not carry an underlying", "underlying", s.Underlying))
				}
				if s.StrikePrice != 0 {
					out = append(out, issue("equity_no_derivative_fields", SeverityError,
						"equity must not carry a strike price", "strike_price",
						fmt.Sprintf("%g", s.StrikePrice)))
				}
				if s.OptionType != "" {
					out = append(out, issue("equity_no_derivative_fields", SeverityError,
						"equity must not carry an option type", "option_type", string(s.OptionType)))
				}
				if s.ExpiryDate != nil {
					out = append(out, issue("equity_no_derivative_fields", SeverityError,
						"equity must not carry an expiry date", "expiry_date",
						s.ExpiryDate.Format("2006-01-02")))
				}
				return out
			},
		},
		{
			Name:     "option_underlying_required",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.InstrumentType == entity.InstrumentOption && s.Underlying == "" {
					return []Issue{issue("option_underlying_required", SeverityError,
						"option must carry an underlying", "underlying", "")}
				}
				return nil
			},
		},
		{
			Name:     "option_strike_price_required",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.InstrumentType == entity.InstrumentOption && s.StrikePrice <= 0 {
					return []Issue{issue("option_strike_price_required", SeverityError,
						"option must carry a positive strike price", "strike_price",
						fmt.Sprintf("%g", s.StrikePrice))}
				}
				return nil
			},
		},
		{
			Name:     "option_type_required",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.InstrumentType == entity.InstrumentOption && !s.OptionType.Valid() {
					return []Issue{issue("option_type_required", SeverityError,
						"option must carry option type CE or PE", "option_type",
						string(s.OptionType))}
				}
				return nil
			},
		},
		{
			Name:     "option_expiry_required",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.InstrumentType == entity.InstrumentOption && s.ExpiryDate == nil {
					return []Issue{issue("option_expiry_required", SeverityError,
						"option must carry an expiry date", "expiry_date", "")}
				}
				return nil
			},
		},
		{
			Name:     "option_no_equity_fields",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.InstrumentType != entity.InstrumentOption {
					return nil
				}
				return derivativeNoEquityFields("option_no_equity_fields", s)
			},
		},
		{
			Name:     "future_underlying_required",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.InstrumentType == entity.InstrumentFuture && s.Underlying == "" {
					return []Issue{issue("future_underlying_required", SeverityError,
						"future must carry an underlying", "underlying", "")}
				}
				return nil
			},
		},
		{
			Name:     "future_expiry_required",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.InstrumentType == entity.InstrumentFuture && s.ExpiryDate == nil {
					return []Issue{issue("future_expiry_required", SeverityError,
						"future must carry an expiry date", "expiry_date", "")}
				}
				return nil
			},
		},
		{
			Name:     "future_no_option_fields",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if s.InstrumentType != entity.InstrumentFuture {
					return nil
				}
				out := derivativeNoEquityFields("future_no_option_fields", s)
				if s.StrikePrice != 0 {
					out = append(out, issue("future_no_option_fields", SeverityError,
						"future must not carry a strike price", "strike_price",
						fmt.Sprintf("%g", s.StrikePrice)))
				}
				if s.OptionType != "" {
					out = append(out, issue("future_no_option_fields", SeverityError,
						"future must not carry an option type", "option_type",
						string(s.OptionType)))
				}
				return out
			},
		},
		{
			Name:     "expiry_not_stale",
			Severity: SeverityError,
			Check: func(s *entity.StandardizedSymbol) []Issue {
				if !s.InstrumentType.IsDerivative() || s.ExpiryDate == nil {
					return nil
				}
				if s.ExpiryDate.Before(time.Now().AddDate(-1, 0, 0)) {
					return []Issue{issue("expiry_not_stale", SeverityError,
						"expiry date is more than one year in the past", "expiry_date",
						s.ExpiryDate.Format("2006-01-02"))}
				}
				return nil
			},
		},
	}
	return rules
}

// derivativeNoEquityFields flags equity-only fields on a derivative.
func derivativeNoEquityFields(rule string, s *entity.StandardizedSymbol) []Issue {
	var out []Issue
	if s.CompanyName != "" {
		out = append(out, issue(rule, SeverityError,
			"derivative must not carry a company name", "company_name", s.CompanyName))
	}
	if s.Sector != "" {
		out = append(out, issue(rule, SeverityError,
			"derivative must not carry a sector", "sector", s.Sector))
	}
	return out
}

// StrictEquityCompanyNameRule requires companyName on every equity. The feeds
// we ingest are inconsistent about this field; the permissive variant below
// exists for operators until product signs off on one behavior.
func StrictEquityCompanyNameRule() Rule {
	return Rule{
		Name:     "equity_company_name_required",
		Severity: SeverityError,
		Check: func(s *entity.StandardizedSymbol) []Issue {
			if s.InstrumentType == entity.InstrumentEquity && s.CompanyName == "" {
				return []Issue{issue("equity_company_name_required", SeverityError,
					"equity must carry a company name", "company_name", "")}
			}
			return nil
		},
	}
}

// PermissiveEquityCompanyNameRule downgrades a missing equity companyName to a
// warning. Register it via Engine.AddRule to swap out the strict variant.
func PermissiveEquityCompanyNameRule() Rule {
	return Rule{
		Name:     "equity_company_name_required",
		Severity: SeverityWarning,
		Check: func(s *entity.StandardizedSymbol) []Issue {
			if s.InstrumentType == entity.InstrumentEquity && s.CompanyName == "" {
				return []Issue{issue("equity_company_name_required", SeverityWarning,
					"equity is missing a company name", "company_name", "")}
			}
			return nil
		},
	}
}
