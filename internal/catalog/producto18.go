package catalog

import "github.com/rickgao/bmv-data/internal/model"

func decodeM(f *fields, c *checker, env model.Envelope) model.MessageM {
	m := model.MessageM{
		Envelope:                env,
		NumeroInstrumento:       f.i32(1),
		PrecioPromedioPonderado: f.precio8(5),
		Volatilidad:             f.precio8(13),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.positivePrice("precioPromedioPonderado", m.PrecioPromedioPonderado)
	c.positivePrice("volatilidad", m.Volatilidad)
	return m
}

func decodeH(f *fields, c *checker, env model.Envelope) model.MessageH {
	m := model.MessageH{
		Envelope:          env,
		NumeroInstrumento: f.i32(1),
		FolioHecho:        f.i32(5),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.positive("folioHecho", int64(m.FolioHecho))
	return m
}

func decodeO(f *fields, c *checker, env model.Envelope) model.MessageO {
	m := model.MessageO{
		Envelope:          env,
		NumeroInstrumento: f.i32(1),
		Volumen:           f.i32(5),
		Precio:            f.precio8(9),
		Sentido:           f.alpha(17, 1),
		Tipo:              f.alpha(18, 1),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.nonNegative("volumen", int64(m.Volumen))
	c.nonNegativePrice("precio", m.Precio)
	c.inCatalog("sentido", m.Sentido, Sentido)
	c.inCatalog("tipo", m.Tipo, TipoPostura)
	return m
}

func decodeE(f *fields, c *checker, env model.Envelope) model.MessageE {
	m := model.MessageE{
		Envelope:          env,
		NumeroInstrumento: f.i32(1),
		NumeroOperaciones: f.i32(5),
		Volumen:           f.i64(9),
		Importe:           f.precio8(17),
		Apertura:          f.precio8(25),
		Maximo:            f.precio8(33),
		Minimo:            f.precio8(41),
		Promedio:          f.precio8(49),
		Last:              f.precio8(57),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.nonNegative("numeroOperaciones", int64(m.NumeroOperaciones))
	c.nonNegative("volumen", m.Volumen)
	c.nonNegativePrice("importe", m.Importe)
	c.nonNegativePrice("apertura", m.Apertura)
	c.nonNegativePrice("maximo", m.Maximo)
	c.nonNegativePrice("minimo", m.Minimo)
	c.nonNegativePrice("promedio", m.Promedio)
	c.positivePrice("last", m.Last)
	return m
}

func decodeP(f *fields, c *checker, env model.Envelope) model.MessageP {
	m := model.MessageP{
		Envelope:          env,
		NumeroInstrumento: f.i32(1),
		HoraHecho:         f.ts2(5),
		Volumen:           f.i32(13),
		Precio:            f.precio8(17),
		TipoConcertacion:  f.alpha(25, 1),
		FolioHecho:        f.i32(26),
		FijaPrecio:        f.flag(30),
		TipoOperacion:     f.alpha(31, 1),
		Importe:           f.precio8(32),
		Compra:            f.alpha(40, 5),
		Vende:             f.alpha(45, 5),
		Liquidacion:       f.alpha(50, 1),
		IndicadorSubasta:  f.alpha(51, 1),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.positive("volumen", int64(m.Volumen))
	c.positivePrice("precio", m.Precio)
	c.inCatalog("tipoConcertacion", m.TipoConcertacion, TipoConcertacion)
	c.positive("folioHecho", int64(m.FolioHecho))
	c.inCatalog("tipoOperacion", m.TipoOperacion, TipoOperacion)
	c.positivePrice("importe", m.Importe)
	c.inCatalog("liquidacion", m.Liquidacion, Liquidacion)
	c.inCatalog("indicadorSubasta", m.IndicadorSubasta, IndicadorSubasta)
	return m
}
