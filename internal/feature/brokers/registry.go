package brokers

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"symbol_backend/internal/feature/symbols/domain/entity"
)

// Registry errors. ConvertSymbol wraps ErrUnsupportedExchange with the broker
// and venue so callers can both branch and display.
var (
	ErrNoConverter         = errors.New("no converter registered for broker")
	ErrUnsupportedExchange = errors.New("does not support exchange")
)

// Registry holds the per-broker converters, keyed by case-insensitive name.
type Registry struct {
	mu         sync.RWMutex
	converters map[string]Converter
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{converters: map[string]Converter{}}
}

var (
	defaultRegistry *Registry
	defaultOnce     sync.Once
)

// Default は参照用ブローカーを登録済みのプロセス共通レジストリを返します。
// 初回アクセス時に遅延初期化されます。テストではNewRegistryで独立した
// インスタンスを作ってください。
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		defaultRegistry.Register(NewZerodhaConverter())
		defaultRegistry.Register(NewFyersConverter())
	})
	return defaultRegistry
}

// Register adds a converter, replacing any existing converter of the same
// name. Idempotent by name.
func (r *Registry) Register(c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.converters[strings.ToLower(c.BrokerName())] = c
}

// Unregister removes the named converter and reports whether it was present.
func (r *Registry) Unregister(brokerName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := strings.ToLower(brokerName)
	_, ok := r.converters[key]
	delete(r.converters, key)
	return ok
}

// Get returns the named converter.
func (r *Registry) Get(brokerName string) (Converter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.converters[strings.ToLower(brokerName)]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrNoConverter, brokerName)
	}
	return c, nil
}

// ConvertSymbol converts one symbol for one broker.
func (r *Registry) ConvertSymbol(s *entity.StandardizedSymbol, brokerName string) (BrokerSymbol, error) {
	c, err := r.Get(brokerName)
	if err != nil {
		return BrokerSymbol{}, err
	}
	if !c.CanConvert(s) {
		return BrokerSymbol{}, fmt.Errorf("broker %s %w %s", c.BrokerName(), ErrUnsupportedExchange, s.Exchange)
	}
	return c.ConvertToBrokerFormat(s)
}

// ConvertSymbols converts a batch for one broker. Unlike the single-item
// path, the batch fails fast: the first incompatible symbol aborts the whole
// batch, naming the symbol and exchange that caused the failure.
func (r *Registry) ConvertSymbols(symbols []entity.StandardizedSymbol, brokerName string) ([]BrokerSymbol, error) {
	c, err := r.Get(brokerName)
	if err != nil {
		return nil, err
	}

	out := make([]BrokerSymbol, 0, len(symbols))
	for i := range symbols {
		s := &symbols[i]
		if !c.CanConvert(s) {
			return nil, fmt.Errorf("batch conversion aborted at %s: broker %s %w %s",
				s.TradingSymbol, c.BrokerName(), ErrUnsupportedExchange, s.Exchange)
		}
		converted, err := c.ConvertToBrokerFormat(s)
		if err != nil {
			return nil, fmt.Errorf("batch conversion aborted at %s: %w", s.TradingSymbol, err)
		}
		out = append(out, converted)
	}
	return out, nil
}

// CompatibleBrokers returns the sorted names of every broker that can convert
// the symbol.
func (r *Registry) CompatibleBrokers(s *entity.StandardizedSymbol) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := []string{}
	for name, c := range r.converters {
		if c.CanConvert(s) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// CanConvertSymbol reports whether the named broker supports the symbol.
// Unknown brokers report false.
func (r *Registry) CanConvertSymbol(s *entity.StandardizedSymbol, brokerName string) bool {
	c, err := r.Get(brokerName)
	if err != nil {
		return false
	}
	return c.CanConvert(s)
}

// RegistryStats is an introspection view over the registered converters.
type RegistryStats struct {
	TotalConverters    int                 `json:"total_converters"`
	SupportedExchanges map[string][]string `json:"supported_exchanges"`
}

// Stats probes every converter against the known venues.
func (r *Registry) Stats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		TotalConverters:    len(r.converters),
		SupportedExchanges: map[string][]string{},
	}
	for name, c := range r.converters {
		exchanges := []string{}
		for _, exch := range entity.AllExchanges {
			probe := entity.StandardizedSymbol{Exchange: exch, InstrumentType: entity.InstrumentEquity}
			if c.CanConvert(&probe) {
				exchanges = append(exchanges, string(exch))
			}
		}
		sort.Strings(exchanges)
		stats.SupportedExchanges[name] = exchanges
	}
	return stats
}
