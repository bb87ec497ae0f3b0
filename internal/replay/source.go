package replay

import (
	"errors"
	"time"

	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/framer"
	"github.com/rickgao/bmv-data/internal/model"
)

// ErrNotStored is returned for a sequence the source cannot serve.
var ErrNotStored = errors.New("sequence not stored")

// Source supplies the packets streamed after an accepted replay request.
type Source interface {
	// Contains reports whether every sequence in [first, first+qty) can
	// be served.
	Contains(first uint32, qty int) bool

	// Packet returns the packet carrying sequence seq.
	Packet(seq uint32) ([]byte, error)
}

// Synthetic generates one trade packet per sequence. It serves any range.
type Synthetic struct {
	now func() time.Time
}

// NewSynthetic returns a Synthetic stamped with the wall clock.
func NewSynthetic() *Synthetic {
	return &Synthetic{now: time.Now}
}

// Contains always reports true.
func (s *Synthetic) Contains(uint32, int) bool { return true }

// Trade returns the trade generated for seq.
func (s *Synthetic) Trade(seq uint32) model.MessageP {
	return model.MessageP{
		NumeroInstrumento: 12345,
		HoraHecho:         codec.DateTime{Time: s.now().In(codec.Location).Truncate(time.Second)},
		Volumen:           200,
		Precio:            codec.MustPrice("10.5"),
		TipoConcertacion:  "C",
		FolioHecho:        int32(seq),
		FijaPrecio:        true,
		TipoOperacion:     "C",
		Importe:           codec.MustPrice("2100"),
		Compra:            "GBM",
		Vende:             "HSBC",
		Liquidacion:       "2",
		IndicadorSubasta:  " ",
	}
}

// Packet returns a single-trade packet with header sequence seq.
func (s *Synthetic) Packet(seq uint32) ([]byte, error) {
	now := s.now().In(codec.Location).Truncate(time.Millisecond)
	b := framer.NewBuilder(model.Producto18, ResponseSession, seq, codec.DateTimeMillis{Time: now})
	if err := b.AddMessage(s.Trade(seq)); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
