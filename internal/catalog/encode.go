package catalog

import (
	"fmt"

	"github.com/rickgao/bmv-data/internal/model"
)

// Encode returns the wire payload of m, type tag included. Envelope fields
// are not part of the payload; they live in the packet header.
func Encode(m model.Message) ([]byte, error) {
	t := m.Type()
	p := newPayload(t.Tag(), payloadLen[t])

	switch v := m.(type) {
	case model.MessageM:
		p.i32(v.NumeroInstrumento)
		p.precio8(v.PrecioPromedioPonderado)
		p.precio8(v.Volatilidad)
	case model.MessageH:
		p.i32(v.NumeroInstrumento)
		p.i32(v.FolioHecho)
	case model.MessageO:
		p.i32(v.NumeroInstrumento)
		p.i32(v.Volumen)
		p.precio8(v.Precio)
		p.alpha(v.Sentido, 1)
		p.alpha(v.Tipo, 1)
	case model.MessageE:
		p.i32(v.NumeroInstrumento)
		p.i32(v.NumeroOperaciones)
		p.i64(v.Volumen)
		p.precio8(v.Importe)
		p.precio8(v.Apertura)
		p.precio8(v.Maximo)
		p.precio8(v.Minimo)
		p.precio8(v.Promedio)
		p.precio8(v.Last)
	case model.MessageP:
		encodeP(p, v)
	case model.CatalogCA:
		p.i32(v.NumeroInstrumento)
		p.alpha(v.TipoValor, 4)
		p.alpha(v.Emisora, 7)
		p.alpha(v.Serie, 6)
		p.precio8(v.UltimoPrecio)
		p.precio8(v.PPP)
		p.precio8(v.PrecioCierre)
		p.ts1(v.FechaReferencia)
		p.alpha(v.Referencia, 1)
		p.i16(v.CuponVigente)
		p.alpha(v.Bursatilidad, 1)
		p.precio4(v.BursatilidadNumerica)
		p.alpha(v.ISIN, 12)
		p.alpha(v.Mercado, 1)
		p.i64(v.ValoresInscritos)
		p.precio8(v.ImporteBloques)
		p.alpha(v.BolsaOrigen, 1)
	case model.CatalogCB:
		p.i32(v.NumeroInstrumento)
		p.alpha(v.TipoValor, 4)
		p.alpha(v.Emisora, 7)
		p.alpha(v.Emision, 6)
		p.ts1(v.FechaEmision)
		p.ts1(v.FechaVencimiento)
		p.precio8(v.PrecioOTasaReferencia)
		p.ts1(v.FechaReferencia)
		p.alpha(v.Referencia, 1)
		p.i32(v.DiasPlazo)
		p.i32(v.CuponOPeriodo)
		p.alpha(v.ISIN, 12)
		p.alpha(v.Mercado, 1)
		p.precio8(v.ValorNominalActual)
		p.precio8(v.ValorNominalOriginal)
		p.i64(v.AccionesEnCirculacion)
		p.precio8(v.MontoColocado)
		p.alpha(v.OperaTasaPrecio, 1)
		p.alpha(v.BolsaOrigen, 1)
	case model.CatalogCC:
		p.i32(v.NumeroInstrumento)
		p.alpha(v.TipoValor, 4)
		p.alpha(v.Emisora, 7)
		p.alpha(v.Serie, 6)
		p.alpha(v.TipoWarrant, 1)
		p.ts1(v.FechaVencimiento)
		p.precio8(v.PrecioEjercicio)
		p.precio8(v.PrecioReferencia)
		p.ts1(v.FechaReferencia)
		p.alpha(v.Referencia, 1)
		p.alpha(v.ISIN, 12)
		p.alpha(v.BolsaOrigen, 1)
	case model.CatalogCD:
		p.i32(v.NumeroInstrumento)
		p.alpha(v.TipoValor, 4)
		p.alpha(v.Clase, 6)
		p.alpha(v.Vencimiento, 6)
		p.alpha(v.TipoOpcion, 1)
		p.precio8(v.PrecioEjercicio)
		p.precio8(v.Puja)
		p.precio8(v.PrecioLiquidacionDiaAnterior)
		p.ts1(v.UltimaFechaOperacion)
		p.ts1(v.FechaVencimiento)
		p.i64(v.ContratosAbiertos)
		p.i32(v.TamanoContrato)
		p.alpha(v.CodigoProducto, 4)
		p.flag(v.VencimientoDiario)
		p.alpha(v.ClavePrecioEjercicio, 6)
		p.alpha(v.CodigoCFI, 6)
	case model.CatalogCE:
		p.i32(v.NumeroTrac)
		p.alpha(v.NombreTrac, 20)
		p.alpha(v.EmisoraSubyacente, 7)
		p.alpha(v.SerieSubyacente, 6)
		p.i64(v.Titulos)
		p.i64(v.TitulosExcluidos)
		p.precio8(v.Precio)
		p.precio8(v.ComponenteEfectivo)
		p.precio8(v.ValorExcluido)
		p.i64(v.NumeroCertificados)
		p.precio8(v.PrecioTeorico)
	case model.CatalogCF:
		p.i32(v.NumeroInstrumento)
		p.alpha(v.TipoValor, 4)
		p.alpha(v.Emisora, 7)
		p.alpha(v.Serie, 6)
		p.i16(v.Sector)
		p.i16(v.Subsector)
		p.i16(v.Ramo)
		p.i16(v.Subramo)
		p.alpha(v.Operadora, 7)
		p.precio8(v.PrecioReferencia)
		p.ts1(v.FechaReferencia)
		p.alpha(v.Referencia, 1)
		p.alpha(v.ISIN, 12)
		p.alpha(v.Calificacion, 10)
	case model.CatalogCG:
		p.i32(v.NumeroInstrumento)
		p.alpha(v.TipoValor, 4)
		p.alpha(v.Clase, 6)
		p.alpha(v.Vencimiento, 6)
		p.alpha(v.TipoEstrategia, 2)
		p.precio8(v.Puja)
		p.ts1(v.UltimaFechaOperacion)
		p.ts1(v.FechaVencimiento)
		p.i64(v.IdentificadorPataCorta)
		p.i64(v.IdentificadorPataLarga)
		p.alpha(v.Periodicidad, 1)
		p.i16(v.NumeroVencimientos)
	case model.CatalogCY:
		p.i32(v.NumeroInstrumento)
		p.alpha(v.Emisora, 7)
		p.alpha(v.Serie, 6)
		p.alpha(v.TipoValor, 4)
		p.alpha(v.EmisoraSubyacente, 7)
		p.alpha(v.SerieSubyacente, 6)
		p.alpha(v.TipoValorSubyacente, 4)
		p.i64(v.NumeroValoresInscritos)
		p.alpha(v.ISIN, 12)
		p.ts1(v.FechaReferencia)
		p.alpha(v.BolsaOrigen, 1)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownType, m)
	}

	if p.err != nil {
		return nil, fmt.Errorf("encode %s: %w", t, p.err)
	}
	if len(p.b) != payloadLen[t] {
		return nil, fmt.Errorf("encode %s: produced %d bytes, want %d", t, len(p.b), payloadLen[t])
	}
	return p.b, nil
}

func encodeP(p *payload, v model.MessageP) {
	p.i32(v.NumeroInstrumento)
	p.ts2(v.HoraHecho)
	p.i32(v.Volumen)
	p.precio8(v.Precio)
	p.alpha(v.TipoConcertacion, 1)
	p.i32(v.FolioHecho)
	p.flag(v.FijaPrecio)
	p.alpha(v.TipoOperacion, 1)
	p.precio8(v.Importe)
	p.alpha(v.Compra, 5)
	p.alpha(v.Vende, 5)
	p.alpha(v.Liquidacion, 1)
	p.alpha(v.IndicadorSubasta, 1)
}
