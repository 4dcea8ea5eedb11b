package brokers

import (
	"fmt"
	"strconv"
	"strings"

	"symbol_backend/internal/feature/symbols/domain/entity"
)

// zerodhaConverter はZerodha (Kite) 形式のシンボル変換アダプタです。
// 株式は銘柄コードをそのまま使い、デリバティブはKiteの
// <原資産><YY><MON><権利行使価格><CE|PE> 形式に組み立てます。
type zerodhaConverter struct {
	supported map[entity.Exchange]struct{}
}

var _ Converter = (*zerodhaConverter)(nil)

// NewZerodhaConverter creates the Zerodha adapter. It supports every venue
// the pipeline standardizes.
func NewZerodhaConverter() Converter {
	return &zerodhaConverter{
		supported: map[entity.Exchange]struct{}{
			entity.ExchangeNSE: {},
			entity.ExchangeBSE: {},
			entity.ExchangeNFO: {},
			entity.ExchangeBFO: {},
			entity.ExchangeMCX: {},
		},
	}
}

func (z *zerodhaConverter) BrokerName() string {
	return "zerodha"
}

func (z *zerodhaConverter) CanConvert(s *entity.StandardizedSymbol) bool {
	_, ok := z.supported[s.Exchange]
	return ok
}

func (z *zerodhaConverter) ConvertToBrokerFormat(s *entity.StandardizedSymbol) (BrokerSymbol, error) {
	if !z.CanConvert(s) {
		return BrokerSymbol{}, fmt.Errorf("broker %s %w %s", z.BrokerName(), ErrUnsupportedExchange, s.Exchange)
	}

	out := BrokerSymbol{Exchange: s.Exchange, Segment: s.Segment}

	switch s.InstrumentType {
	case entity.InstrumentOption:
		if s.ExpiryDate == nil {
			return BrokerSymbol{}, fmt.Errorf("option %s has no expiry date", s.TradingSymbol)
		}
		out.TradingSymbol = fmt.Sprintf("%s%s%s%s%s",
			s.Underlying,
			s.ExpiryDate.Format("06"),
			strings.ToUpper(s.ExpiryDate.Format("Jan")),
			strconv.FormatFloat(s.StrikePrice, 'f', -1, 64),
			s.OptionType,
		)
	case entity.InstrumentFuture:
		if s.ExpiryDate == nil {
			return BrokerSymbol{}, fmt.Errorf("future %s has no expiry date", s.TradingSymbol)
		}
		out.TradingSymbol = fmt.Sprintf("%s%s%sFUT",
			s.Underlying,
			s.ExpiryDate.Format("06"),
			strings.ToUpper(s.ExpiryDate.Format("Jan")),
		)
	default:
		// 株式は標準の銘柄コードをそのまま通す
		out.TradingSymbol = s.TradingSymbol
	}

	return out, nil
}
