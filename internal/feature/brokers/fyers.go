package brokers

import (
	"fmt"
	"strings"

	"symbol_backend/internal/feature/symbols/domain/entity"
)

// fyersConverter はFyers形式のシンボル変換アダプタです。
// 株式は <取引所>:<銘柄コード>-EQ、デリバティブは <取引所>:<銘柄コード> に
// 整形します。MCXには対応していません。
type fyersConverter struct {
	supported map[entity.Exchange]struct{}
}

var _ Converter = (*fyersConverter)(nil)

// NewFyersConverter creates the Fyers adapter.
func NewFyersConverter() Converter {
	return &fyersConverter{
		supported: map[entity.Exchange]struct{}{
			entity.ExchangeNSE: {},
			entity.ExchangeBSE: {},
			entity.ExchangeNFO: {},
			entity.ExchangeBFO: {},
		},
	}
}

func (f *fyersConverter) BrokerName() string {
	return "fyers"
}

func (f *fyersConverter) CanConvert(s *entity.StandardizedSymbol) bool {
	_, ok := f.supported[s.Exchange]
	return ok
}

func (f *fyersConverter) ConvertToBrokerFormat(s *entity.StandardizedSymbol) (BrokerSymbol, error) {
	if !f.CanConvert(s) {
		return BrokerSymbol{}, fmt.Errorf("broker %s %w %s", f.BrokerName(), ErrUnsupportedExchange, s.Exchange)
	}

	out := BrokerSymbol{Exchange: s.Exchange, Segment: s.Segment}

	if s.InstrumentType == entity.InstrumentEquity {
		out.TradingSymbol = fmt.Sprintf("%s:%s-EQ", s.Exchange, strings.ToUpper(s.TradingSymbol))
	} else {
		out.TradingSymbol = fmt.Sprintf("%s:%s", s.Exchange, strings.ToUpper(s.TradingSymbol))
	}

	return out, nil
}
