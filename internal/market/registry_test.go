package market

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/model"
)

func capital(n int32, emisora, serie string) model.CatalogCA {
	return model.CatalogCA{
		Envelope:          model.Envelope{TipoMensaje: "ca"},
		NumeroInstrumento: n,
		TipoValor:         "1",
		Emisora:           emisora,
		Serie:             serie,
		UltimoPrecio:      codec.MustPrice("64.82"),
	}
}

func TestRegistry_CatalogUpsert(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil)
	ctx := context.Background()

	if err := r.Write(ctx, capital(1833, "GBM", "O")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	e, ok := r.Get(1833)
	if !ok {
		t.Fatal("instrument 1833 not found")
	}
	if e.Type != "ca" {
		t.Errorf("Type = %q, want ca", e.Type)
	}
	if e.Symbol != "GBM O" {
		t.Errorf("Symbol = %q, want GBM O", e.Symbol)
	}
	if _, ok := e.Catalog.(model.CatalogCA); !ok {
		t.Errorf("Catalog has type %T, want model.CatalogCA", e.Catalog)
	}

	change := <-r.SubscribeChanges()
	if change.EventType != ChangeCreated || change.Number != 1833 {
		t.Errorf("change = %+v, want created 1833", change)
	}

	r.Write(ctx, capital(1833, "GBM", "O"))
	if change := <-r.SubscribeChanges(); change.EventType != ChangeUpdated {
		t.Errorf("second change = %s, want updated", change.EventType)
	}
	if r.Count() != 1 {
		t.Errorf("Count() = %d, want 1", r.Count())
	}
}

func TestRegistry_LookupBySymbol(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil)
	ctx := context.Background()

	r.Write(ctx, capital(10, "WALMEX", "*"))
	r.Write(ctx, capital(11, "AMX", "B"))

	tests := []struct {
		symbol string
		want   int32
		ok     bool
	}{
		{"WALMEX *", 10, true},
		{"amx   b", 11, true},
		{"CEMEX CPO", 0, false},
	}
	for _, tt := range tests {
		e, ok := r.Lookup(tt.symbol)
		if ok != tt.ok || e.Number != tt.want {
			t.Errorf("Lookup(%q) = %d, %v, want %d, %v", tt.symbol, e.Number, ok, tt.want, tt.ok)
		}
	}

	// A renamed series drops the old symbol.
	r.Write(ctx, capital(11, "AMX", "L"))
	if _, ok := r.Lookup("AMX B"); ok {
		t.Error("Lookup(AMX B) found after rename")
	}
	if e, ok := r.Lookup("AMX L"); !ok || e.Number != 11 {
		t.Errorf("Lookup(AMX L) = %d, %v, want 11, true", e.Number, ok)
	}
}

func TestRegistry_TradeOverlay(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil)
	ctx := context.Background()

	r.Write(ctx, capital(1833, "GBM", "O"))
	r.Write(ctx, model.MessageE{NumeroInstrumento: 1833, NumeroOperaciones: 7, Volumen: 900, Last: codec.MustPrice("64.5")})

	e, _ := r.Get(1833)
	if e.Volume != 900 || e.Trades != 7 {
		t.Errorf("Volume/Trades = %d/%d, want 900/7", e.Volume, e.Trades)
	}
	if e.LastPrice == nil || e.LastPrice.String() != "64.5" {
		t.Errorf("LastPrice = %v, want 64.5", e.LastPrice)
	}

	hora := codec.DateTime{Time: time.Date(2022, 10, 19, 9, 1, 35, 0, codec.Location)}
	r.Write(ctx, model.MessageP{NumeroInstrumento: 1833, HoraHecho: hora, Precio: codec.MustPrice("64.82")})

	e, _ = r.Get(1833)
	if e.LastPrice.String() != "64.82" {
		t.Errorf("LastPrice = %v, want 64.82", e.LastPrice)
	}
	if e.LastTradeAt == nil || !e.LastTradeAt.Equal(hora.Time) {
		t.Errorf("LastTradeAt = %v, want %v", e.LastTradeAt, hora)
	}
	if e.Type != "ca" {
		t.Errorf("catalog lost after trade: Type = %q", e.Type)
	}
}

func TestRegistry_TrackTradesDisabled(t *testing.T) {
	r := NewRegistry(Config{}, nil)
	r.Write(context.Background(), model.MessageP{NumeroInstrumento: 5, Precio: codec.MustPrice("1")})

	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}

func TestRegistry_IgnoresOtherRecords(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil)
	r.Write(context.Background(), model.MessageH{NumeroInstrumento: 5, FolioHecho: 1})

	if r.Count() != 0 {
		t.Errorf("Count() = %d, want 0", r.Count())
	}
}

func TestRegistry_TracUsesTracNumber(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil)
	r.Write(context.Background(), model.CatalogCE{NumeroTrac: 77, EmisoraSubyacente: "NAFTRAC"})

	e, ok := r.Get(77)
	if !ok {
		t.Fatal("TRAC 77 not found")
	}
	if e.Type != "ce" {
		t.Errorf("Type = %q, want ce", e.Type)
	}
}

func TestRegistry_ListSorted(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil)
	ctx := context.Background()
	for _, n := range []int32{30, 10, 20} {
		r.Write(ctx, capital(n, "E", "S"))
	}

	list := r.List()
	if len(list) != 3 {
		t.Fatalf("len(List()) = %d, want 3", len(list))
	}
	for i, want := range []int32{10, 20, 30} {
		if list[i].Number != want {
			t.Errorf("List()[%d].Number = %d, want %d", i, list[i].Number, want)
		}
	}
}

func TestRegistry_ChangeBufferFull(t *testing.T) {
	r := NewRegistry(DefaultConfig(), nil).(*registryImpl)
	ctx := context.Background()

	for i := 0; i < changeBufferSize+5; i++ {
		r.Write(ctx, capital(int32(i), "E", "S"))
	}
	if got := r.dropped.Load(); got != 5 {
		t.Errorf("dropped = %d, want 5", got)
	}
	if r.Count() != changeBufferSize+5 {
		t.Errorf("Count() = %d, want %d", r.Count(), changeBufferSize+5)
	}
}

func TestRegistry_ConcurrentAccess(t *testing.T) {
	r := NewRegistry(Config{TrackTrades: true}, nil)
	ctx := context.Background()

	go func() {
		for range r.SubscribeChanges() {
		}
	}()

	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				n := int32(w*100 + i)
				r.Write(ctx, capital(n, "E", "S"))
				r.Write(ctx, model.MessageP{NumeroInstrumento: n, Precio: codec.MustPrice("2")})
				r.Get(n)
				r.List()
			}
		}(w)
	}
	wg.Wait()

	if r.Count() != 400 {
		t.Errorf("Count() = %d, want 400", r.Count())
	}
}

func TestDefaultConfig(t *testing.T) {
	if !DefaultConfig().TrackTrades {
		t.Error("TrackTrades = false, want true")
	}
}
