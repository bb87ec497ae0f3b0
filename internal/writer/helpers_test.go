package writer

import (
	"fmt"
	"time"

	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/model"
)

var sampleTime = time.Date(2022, 10, 19, 9, 1, 35, 501_000_000, codec.Location)

func sampleEnvelope(seq int, tag string) model.Envelope {
	return model.Envelope{
		Key:         fmt.Sprintf("20221019-%d", seq),
		Timestamp:   codec.DateTimeMicros{Time: sampleTime.Add(time.Millisecond)},
		FechaHora:   codec.DateTimeMillis{Time: sampleTime},
		TipoMensaje: tag,
	}
}

func sampleTrade(seq int) model.MessageP {
	return model.MessageP{
		Envelope:          sampleEnvelope(seq, "P"),
		NumeroInstrumento: 1833,
		HoraHecho:         codec.DateTime{Time: sampleTime.Truncate(time.Second)},
		Volumen:           689,
		Precio:            codec.MustPrice("64.82"),
		TipoConcertacion:  "O",
		FolioHecho:        int32(seq),
		FijaPrecio:        true,
		TipoOperacion:     "C",
		Importe:           codec.MustPrice("44660.98"),
		Compra:            "GBM",
		Vende:             "CITI",
		Liquidacion:       "4",
	}
}

func sampleStats(seq int) model.MessageE {
	return model.MessageE{
		Envelope:          sampleEnvelope(seq, "E"),
		NumeroInstrumento: 1833,
		NumeroOperaciones: 12,
		Volumen:           1000,
		Importe:           codec.MustPrice("64820"),
		Apertura:          codec.MustPrice("64.5"),
		Maximo:            codec.MustPrice("65"),
		Minimo:            codec.MustPrice("64.1"),
		Promedio:          codec.MustPrice("64.82"),
		Last:              codec.MustPrice("64.82"),
	}
}
