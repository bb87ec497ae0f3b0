package market

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/model"
)

// changeBufferSize is the capacity of the change notification channel.
const changeBufferSize = 1000

// Entry is what the registry knows about one instrument.
type Entry struct {
	Number      int32            `json:"number"`
	Type        string           `json:"type,omitempty"` // catalog tag, empty until a catalog record arrives
	Symbol      string           `json:"symbol,omitempty"`
	Catalog     model.Instrument `json:"catalog,omitempty"`
	LastPrice   *codec.Price     `json:"last_price,omitempty"`
	LastTradeAt *codec.DateTime  `json:"last_trade_at,omitempty"`
	Volume      int64            `json:"volume"`
	Trades      int32            `json:"trades"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// ChangeType identifies a registry change.
type ChangeType string

const (
	ChangeCreated ChangeType = "created"
	ChangeUpdated ChangeType = "updated"
)

// InstrumentChange is published when a catalog record is stored.
type InstrumentChange struct {
	EventType ChangeType
	Number    int32
	Type      string
	Symbol    string
}

// registryState holds the instrument map. Safe for concurrent use.
type registryState struct {
	mu          sync.RWMutex
	instruments map[int32]*Entry
	symbols     map[string]int32

	changes chan InstrumentChange
}

func newState() *registryState {
	return &registryState{
		instruments: make(map[int32]*Entry),
		symbols:     make(map[string]int32),
		changes:     make(chan InstrumentChange, changeBufferSize),
	}
}

// entry returns the entry for n, creating it. Caller holds mu.
func (s *registryState) entry(n int32) (*Entry, bool) {
	e, ok := s.instruments[n]
	if !ok {
		e = &Entry{Number: n}
		s.instruments[n] = e
	}
	return e, !ok
}

// upsertCatalog stores inst and reports whether the instrument was new.
func (s *registryState) upsertCatalog(inst model.Instrument, now time.Time) InstrumentChange {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := inst.InstrumentNumber()
	e, _ := s.entry(n)
	created := e.Catalog == nil

	if e.Symbol != "" {
		delete(s.symbols, e.Symbol)
	}
	e.Type = inst.Type().Tag()
	e.Catalog = inst
	e.Symbol = symbolOf(inst)
	e.UpdatedAt = now
	if e.Symbol != "" {
		s.symbols[e.Symbol] = n
	}

	change := InstrumentChange{EventType: ChangeUpdated, Number: n, Type: e.Type, Symbol: e.Symbol}
	if created {
		change.EventType = ChangeCreated
	}
	return change
}

func (s *registryState) recordTrade(p model.MessageP, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _ := s.entry(p.NumeroInstrumento)
	price := p.Precio
	at := p.HoraHecho
	e.LastPrice = &price
	e.LastTradeAt = &at
	e.UpdatedAt = now
}

func (s *registryState) recordStats(m model.MessageE, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, _ := s.entry(m.NumeroInstrumento)
	e.Volume = m.Volumen
	e.Trades = m.NumeroOperaciones
	if e.LastPrice == nil {
		last := m.Last
		e.LastPrice = &last
	}
	e.UpdatedAt = now
}

func (s *registryState) get(n int32) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.instruments[n]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

func (s *registryState) lookup(symbol string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.symbols[normalizeSymbol(symbol)]
	if !ok {
		return Entry{}, false
	}
	return *s.instruments[n], true
}

// list returns a copy of every entry sorted by number.
func (s *registryState) list() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, len(s.instruments))
	for _, e := range s.instruments {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func (s *registryState) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.instruments)
}

// notifyChange publishes without blocking; changes are dropped when the
// channel is full.
func (s *registryState) notifyChange(c InstrumentChange) bool {
	select {
	case s.changes <- c:
		return true
	default:
		return false
	}
}

// symbolOf returns "EMISORA SERIE" for catalog records that carry them.
func symbolOf(inst model.Instrument) string {
	var emisora, serie string
	switch c := inst.(type) {
	case model.CatalogCA:
		emisora, serie = c.Emisora, c.Serie
	case model.CatalogCB:
		emisora = c.Emisora
	case model.CatalogCC:
		emisora, serie = c.Emisora, c.Serie
	case model.CatalogCF:
		emisora, serie = c.Emisora, c.Serie
	case model.CatalogCY:
		emisora, serie = c.Emisora, c.Serie
	}
	return normalizeSymbol(emisora + " " + serie)
}

func normalizeSymbol(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
