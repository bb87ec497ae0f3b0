package market

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/rickgao/bmv-data/internal/model"
)

// Registry tracks instruments from the decoded record stream.
type Registry interface {
	// Write consumes one decoded record. Records that describe no
	// instrument are ignored.
	Write(ctx context.Context, msg model.Message) error

	// Close stops change notifications.
	Close() error

	// Get returns the entry for an instrument number.
	Get(number int32) (Entry, bool)

	// Lookup returns the entry for "EMISORA SERIE", case-insensitive.
	Lookup(symbol string) (Entry, bool)

	// List returns every entry sorted by number.
	List() []Entry

	// Count returns the number of known instruments.
	Count() int

	// SubscribeChanges returns the catalog change channel.
	SubscribeChanges() <-chan InstrumentChange
}

// Config holds registry configuration.
type Config struct {
	// TrackTrades overlays producto 18 trade and statistics records.
	TrackTrades bool
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{TrackTrades: true}
}

// registryImpl implements the Registry interface.
type registryImpl struct {
	cfg    Config
	logger *slog.Logger
	now    func() time.Time

	state   *registryState
	closed  atomic.Bool
	dropped atomic.Int64
}

// NewRegistry creates an empty registry.
func NewRegistry(cfg Config, logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &registryImpl{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		state:  newState(),
	}
}

// Write updates the registry from msg.
func (r *registryImpl) Write(_ context.Context, msg model.Message) error {
	switch m := msg.(type) {
	case model.Instrument:
		change := r.state.upsertCatalog(m, r.now())
		if change.EventType == ChangeCreated {
			r.logger.Debug("instrument added",
				"number", change.Number,
				"type", change.Type,
				"symbol", change.Symbol,
			)
		}
		if !r.closed.Load() && !r.state.notifyChange(change) {
			if r.dropped.Add(1) == 1 {
				r.logger.Warn("instrument change buffer full, dropping changes")
			}
		}
	case model.MessageP:
		if r.cfg.TrackTrades {
			r.state.recordTrade(m, r.now())
		}
	case model.MessageE:
		if r.cfg.TrackTrades {
			r.state.recordStats(m, r.now())
		}
	}
	return nil
}

// Close stops change notifications. The registry stays readable.
func (r *registryImpl) Close() error {
	r.closed.Store(true)
	return nil
}

func (r *registryImpl) Get(number int32) (Entry, bool) {
	return r.state.get(number)
}

func (r *registryImpl) Lookup(symbol string) (Entry, bool) {
	return r.state.lookup(symbol)
}

func (r *registryImpl) List() []Entry {
	return r.state.list()
}

func (r *registryImpl) Count() int {
	return r.state.count()
}

func (r *registryImpl) SubscribeChanges() <-chan InstrumentChange {
	return r.state.changes
}
