package catalog

import "github.com/rickgao/bmv-data/internal/model"

func decodeCA(f *fields, c *checker, env model.Envelope) model.CatalogCA {
	m := model.CatalogCA{
		Envelope:             env,
		NumeroInstrumento:    f.i32(2),
		TipoValor:            f.alpha(6, 4),
		Emisora:              f.alpha(10, 7),
		Serie:                f.alpha(17, 6),
		UltimoPrecio:         f.precio8(23),
		PPP:                  f.precio8(31),
		PrecioCierre:         f.precio8(39),
		FechaReferencia:      f.ts1(47),
		Referencia:           f.alpha(55, 1),
		CuponVigente:         f.i16(56),
		Bursatilidad:         f.alpha(58, 1),
		BursatilidadNumerica: f.precio4(59),
		ISIN:                 f.alpha(63, 12),
		Mercado:              f.alpha(75, 1),
		ValoresInscritos:     f.i64(76),
		ImporteBloques:       f.precio8(84),
		BolsaOrigen:          f.alpha(92, 1),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.nonNegativePrice("ultimoPrecio", m.UltimoPrecio)
	c.nonNegativePrice("PPP", m.PPP)
	c.nonNegativePrice("precioCierre", m.PrecioCierre)
	c.nonNegative("cuponVigente", int64(m.CuponVigente))
	c.nonNegativePrice("bursatilidadNumerica", m.BursatilidadNumerica)
	c.nonNegative("valoresInscritos", m.ValoresInscritos)
	c.nonNegativePrice("importeBloques", m.ImporteBloques)

	c.advise("tipoValor", m.TipoValor, TipoValor)
	c.advise("referencia", m.Referencia, Referencia)
	c.advise("bursatilidad", m.Bursatilidad, Bursatilidad)
	c.advise("mercado", m.Mercado, Mercado)
	c.advise("bolsaOrigen", m.BolsaOrigen, BolsaOrigen)
	return m
}

func decodeCB(f *fields, c *checker, env model.Envelope) model.CatalogCB {
	m := model.CatalogCB{
		Envelope:              env,
		NumeroInstrumento:     f.i32(2),
		TipoValor:             f.alpha(6, 4),
		Emisora:               f.alpha(10, 7),
		Emision:               f.alpha(17, 6),
		FechaEmision:          f.ts1(23),
		FechaVencimiento:      f.ts1(31),
		PrecioOTasaReferencia: f.precio8(39),
		FechaReferencia:       f.ts1(47),
		Referencia:            f.alpha(55, 1),
		DiasPlazo:             f.i32(56),
		CuponOPeriodo:         f.i32(60),
		ISIN:                  f.alpha(64, 12),
		Mercado:               f.alpha(76, 1),
		ValorNominalActual:    f.precio8(77),
		ValorNominalOriginal:  f.precio8(85),
		AccionesEnCirculacion: f.i64(93),
		MontoColocado:         f.precio8(101),
		OperaTasaPrecio:       f.alpha(109, 1),
		BolsaOrigen:           f.alpha(110, 1),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.nonNegativePrice("precioOtasaReferencia", m.PrecioOTasaReferencia)
	c.nonNegative("diasPlazo", int64(m.DiasPlazo))
	c.nonNegative("cuponOperiodo", int64(m.CuponOPeriodo))
	c.nonNegativePrice("valorNominalActual", m.ValorNominalActual)
	c.nonNegativePrice("valorNominalOriginal", m.ValorNominalOriginal)
	c.nonNegative("accionesEnCirculacion", m.AccionesEnCirculacion)
	c.nonNegativePrice("montoColocado", m.MontoColocado)

	c.advise("tipoValor", m.TipoValor, TipoValor)
	c.advise("referencia", m.Referencia, Referencia)
	c.advise("mercado", m.Mercado, Mercado)
	c.advise("operaTasaPrecio", m.OperaTasaPrecio, OperaTasaPrecio)
	c.advise("bolsaOrigen", m.BolsaOrigen, BolsaOrigen)
	return m
}

func decodeCC(f *fields, c *checker, env model.Envelope) model.CatalogCC {
	m := model.CatalogCC{
		Envelope:          env,
		NumeroInstrumento: f.i32(2),
		TipoValor:         f.alpha(6, 4),
		Emisora:           f.alpha(10, 7),
		Serie:             f.alpha(17, 6),
		TipoWarrant:       f.alpha(23, 1),
		FechaVencimiento:  f.ts1(24),
		PrecioEjercicio:   f.precio8(32),
		PrecioReferencia:  f.precio8(40),
		FechaReferencia:   f.ts1(48),
		Referencia:        f.alpha(56, 1),
		ISIN:              f.alpha(57, 12),
		BolsaOrigen:       f.alpha(69, 1),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.nonNegativePrice("precioEjercicio", m.PrecioEjercicio)
	c.nonNegativePrice("precioReferencia", m.PrecioReferencia)

	c.advise("tipoValor", m.TipoValor, TipoValor)
	c.advise("tipoWarrant", m.TipoWarrant, TipoWarrant)
	c.advise("referencia", m.Referencia, Referencia)
	c.advise("bolsaOrigen", m.BolsaOrigen, BolsaOrigen)
	return m
}

func decodeCD(f *fields, c *checker, env model.Envelope) model.CatalogCD {
	m := model.CatalogCD{
		Envelope:                     env,
		NumeroInstrumento:            f.i32(2),
		TipoValor:                    f.alpha(6, 4),
		Clase:                        f.alpha(10, 6),
		Vencimiento:                  f.alpha(16, 6),
		TipoOpcion:                   f.alpha(22, 1),
		PrecioEjercicio:              f.precio8(23),
		Puja:                         f.precio8(31),
		PrecioLiquidacionDiaAnterior: f.precio8(39),
		UltimaFechaOperacion:         f.ts1(47),
		FechaVencimiento:             f.ts1(55),
		ContratosAbiertos:            f.i64(63),
		TamanoContrato:               f.i32(71),
		CodigoProducto:               f.alpha(75, 4),
		VencimientoDiario:            f.flag(79),
		ClavePrecioEjercicio:         f.alpha(80, 6),
		CodigoCFI:                    f.alpha(86, 6),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.nonNegativePrice("precioEjercicio", m.PrecioEjercicio)
	c.nonNegativePrice("puja", m.Puja)
	c.nonNegativePrice("precioLiquidacionDiaAnterior", m.PrecioLiquidacionDiaAnterior)
	c.nonNegative("contratosAbiertos", m.ContratosAbiertos)
	c.nonNegative("tamanoContrato", int64(m.TamanoContrato))

	c.advise("tipoValor", m.TipoValor, TipoValor)
	c.advise("tipoOpcion", m.TipoOpcion, TipoOpcion)
	return m
}

func decodeCE(f *fields, c *checker, env model.Envelope) model.CatalogCE {
	m := model.CatalogCE{
		Envelope:           env,
		NumeroTrac:         f.i32(2),
		NombreTrac:         f.alpha(6, 20),
		EmisoraSubyacente:  f.alpha(26, 7),
		SerieSubyacente:    f.alpha(33, 6),
		Titulos:            f.i64(39),
		TitulosExcluidos:   f.i64(47),
		Precio:             f.precio8(55),
		ComponenteEfectivo: f.precio8(63),
		ValorExcluido:      f.precio8(71),
		NumeroCertificados: f.i64(79),
		PrecioTeorico:      f.precio8(87),
	}
	c.positive("numeroTrac", int64(m.NumeroTrac))
	c.nonNegative("titulos", m.Titulos)
	c.nonNegative("titulosExcluidos", m.TitulosExcluidos)
	c.nonNegativePrice("precio", m.Precio)
	c.nonNegativePrice("valorExcluido", m.ValorExcluido)
	c.nonNegative("numeroCertificados", m.NumeroCertificados)
	c.nonNegativePrice("precioTeorico", m.PrecioTeorico)
	return m
}

func decodeCF(f *fields, c *checker, env model.Envelope) model.CatalogCF {
	m := model.CatalogCF{
		Envelope:          env,
		NumeroInstrumento: f.i32(2),
		TipoValor:         f.alpha(6, 4),
		Emisora:           f.alpha(10, 7),
		Serie:             f.alpha(17, 6),
		Sector:            f.i16(23),
		Subsector:         f.i16(25),
		Ramo:              f.i16(27),
		Subramo:           f.i16(29),
		Operadora:         f.alpha(31, 7),
		PrecioReferencia:  f.precio8(38),
		FechaReferencia:   f.ts1(46),
		Referencia:        f.alpha(54, 1),
		ISIN:              f.alpha(55, 12),
		Calificacion:      f.alpha(67, 10),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.nonNegative("sector", int64(m.Sector))
	c.nonNegative("subsector", int64(m.Subsector))
	c.nonNegative("ramo", int64(m.Ramo))
	c.nonNegative("subramo", int64(m.Subramo))
	c.nonNegativePrice("precioReferencia", m.PrecioReferencia)

	c.advise("tipoValor", m.TipoValor, TipoValor)
	c.advise("referencia", m.Referencia, Referencia)
	return m
}

func decodeCG(f *fields, c *checker, env model.Envelope) model.CatalogCG {
	m := model.CatalogCG{
		Envelope:               env,
		NumeroInstrumento:      f.i32(2),
		TipoValor:              f.alpha(6, 4),
		Clase:                  f.alpha(10, 6),
		Vencimiento:            f.alpha(16, 6),
		TipoEstrategia:         f.alpha(22, 2),
		Puja:                   f.precio8(24),
		UltimaFechaOperacion:   f.ts1(32),
		FechaVencimiento:       f.ts1(40),
		IdentificadorPataCorta: f.i64(48),
		IdentificadorPataLarga: f.i64(56),
		Periodicidad:           f.alpha(64, 1),
		NumeroVencimientos:     f.i16(65),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.nonNegativePrice("puja", m.Puja)
	c.positive("identificadorPataCorta", m.IdentificadorPataCorta)
	c.positive("identificadorPataLarga", m.IdentificadorPataLarga)
	c.nonNegative("numeroVencimientos", int64(m.NumeroVencimientos))

	c.advise("tipoValor", m.TipoValor, TipoValor)
	c.advise("tipoEstrategia", m.TipoEstrategia, TipoEstrategia)
	c.advise("periodicidad", m.Periodicidad, Periodicidad)
	return m
}

func decodeCY(f *fields, c *checker, env model.Envelope) model.CatalogCY {
	m := model.CatalogCY{
		Envelope:               env,
		NumeroInstrumento:      f.i32(2),
		Emisora:                f.alpha(6, 7),
		Serie:                  f.alpha(13, 6),
		TipoValor:              f.alpha(19, 4),
		EmisoraSubyacente:      f.alpha(23, 7),
		SerieSubyacente:        f.alpha(30, 6),
		TipoValorSubyacente:    f.alpha(36, 4),
		NumeroValoresInscritos: f.i64(40),
		ISIN:                   f.alpha(48, 12),
		FechaReferencia:        f.ts1(60),
		BolsaOrigen:            f.alpha(68, 1),
	}
	c.positive("numeroInstrumento", int64(m.NumeroInstrumento))
	c.nonNegative("numeroValoresInscritos", m.NumeroValoresInscritos)

	c.advise("tipoValor", m.TipoValor, TipoValor)
	c.advise("tipoValorSubyacente", m.TipoValorSubyacente, TipoValor)
	c.advise("bolsaOrigen", m.BolsaOrigen, BolsaOrigen)
	return m
}
