package model

import "github.com/rickgao/bmv-data/internal/codec"

// CatalogCA describes an equity instrument (capitales).
type CatalogCA struct {
	Envelope
	NumeroInstrumento    int32       `json:"numeroInstrumento"`
	TipoValor            string      `json:"tipoValor"`
	Emisora              string      `json:"emisora"`
	Serie                string      `json:"serie"`
	UltimoPrecio         codec.Price `json:"ultimoPrecio"`
	PPP                  codec.Price `json:"PPP"`
	PrecioCierre         codec.Price `json:"precioCierre"`
	FechaReferencia      codec.Date  `json:"fechaReferencia"`
	Referencia           string      `json:"referencia"`
	CuponVigente         int16       `json:"cuponVigente"`
	Bursatilidad         string      `json:"bursatilidad"`
	BursatilidadNumerica codec.Price `json:"bursatilidadNumerica"`
	ISIN                 string      `json:"ISIN"`
	Mercado              string      `json:"mercado"`
	ValoresInscritos     int64       `json:"valoresInscritos"`
	ImporteBloques       codec.Price `json:"importeBloques"`
	BolsaOrigen          string      `json:"bolsaOrigen"`
}

// CatalogCB describes a debt instrument (deuda).
type CatalogCB struct {
	Envelope
	NumeroInstrumento     int32       `json:"numeroInstrumento"`
	TipoValor             string      `json:"tipoValor"`
	Emisora               string      `json:"emisora"`
	Emision               string      `json:"emision"`
	FechaEmision          codec.Date  `json:"fechaEmision"`
	FechaVencimiento      codec.Date  `json:"fechaVencimiento"`
	PrecioOTasaReferencia codec.Price `json:"precioOtasaReferencia"`
	FechaReferencia       codec.Date  `json:"fechaReferencia"`
	Referencia            string      `json:"referencia"`
	DiasPlazo             int32       `json:"diasPlazo"`
	CuponOPeriodo         int32       `json:"cuponOperiodo"`
	ISIN                  string      `json:"ISIN"`
	Mercado               string      `json:"mercado"`
	ValorNominalActual    codec.Price `json:"valorNominalActual"`
	ValorNominalOriginal  codec.Price `json:"valorNominalOriginal"`
	AccionesEnCirculacion int64       `json:"accionesEnCirculacion"`
	MontoColocado         codec.Price `json:"montoColocado"`
	OperaTasaPrecio       string      `json:"operaTasaPrecio"`
	BolsaOrigen           string      `json:"bolsaOrigen"`
}

// CatalogCC describes a warrant.
type CatalogCC struct {
	Envelope
	NumeroInstrumento int32       `json:"numeroInstrumento"`
	TipoValor         string      `json:"tipoValor"`
	Emisora           string      `json:"emisora"`
	Serie             string      `json:"serie"`
	TipoWarrant       string      `json:"tipoWarrant"`
	FechaVencimiento  codec.Date  `json:"fechaVencimiento"`
	PrecioEjercicio   codec.Price `json:"precioEjercicio"`
	PrecioReferencia  codec.Price `json:"precioReferencia"`
	FechaReferencia   codec.Date  `json:"fechaReferencia"`
	Referencia        string      `json:"referencia"`
	ISIN              string      `json:"ISIN"`
	BolsaOrigen       string      `json:"bolsaOrigen"`
}

// CatalogCD describes a listed derivative (future or option).
type CatalogCD struct {
	Envelope
	NumeroInstrumento            int32       `json:"numeroInstrumento"`
	TipoValor                    string      `json:"tipoValor"`
	Clase                        string      `json:"clase"`
	Vencimiento                  string      `json:"vencimiento"`
	TipoOpcion                   string      `json:"tipoOpcion"`
	PrecioEjercicio              codec.Price `json:"precioEjercicio"`
	Puja                         codec.Price `json:"puja"`
	PrecioLiquidacionDiaAnterior codec.Price `json:"precioLiquidacionDiaAnterior"`
	UltimaFechaOperacion         codec.Date  `json:"ultimaFechaOperacion"`
	FechaVencimiento             codec.Date  `json:"fechaVencimiento"`
	ContratosAbiertos            int64       `json:"contratosAbiertos"`
	TamanoContrato               int32       `json:"tamanoContrato"`
	CodigoProducto               string      `json:"codigoProducto"`
	VencimientoDiario            bool        `json:"vencimientoDiario"`
	ClavePrecioEjercicio         string      `json:"clavePrecioEjercicio"`
	CodigoCFI                    string      `json:"codigoCFI"`
}

// CatalogCE describes a TRAC (exchange traded certificate) basket.
type CatalogCE struct {
	Envelope
	NumeroTrac         int32       `json:"numeroTrac"`
	NombreTrac         string      `json:"nombreTrac"`
	EmisoraSubyacente  string      `json:"emisoraSubyacente"`
	SerieSubyacente    string      `json:"serieSubyacente"`
	Titulos            int64       `json:"titulos"`
	TitulosExcluidos   int64       `json:"titulosExcluidos"`
	Precio             codec.Price `json:"precio"`
	ComponenteEfectivo codec.Price `json:"componenteEfectivo"`
	ValorExcluido      codec.Price `json:"valorExcluido"`
	NumeroCertificados int64       `json:"numeroCertificados"`
	PrecioTeorico      codec.Price `json:"precioTeorico"`
}

// CatalogCF describes an investment fund share class.
type CatalogCF struct {
	Envelope
	NumeroInstrumento int32       `json:"numeroInstrumento"`
	TipoValor         string      `json:"tipoValor"`
	Emisora           string      `json:"emisora"`
	Serie             string      `json:"serie"`
	Sector            int16       `json:"sector"`
	Subsector         int16       `json:"subsector"`
	Ramo              int16       `json:"ramo"`
	Subramo           int16       `json:"subramo"`
	Operadora         string      `json:"operadora"`
	PrecioReferencia  codec.Price `json:"precioReferencia"`
	FechaReferencia   codec.Date  `json:"fechaReferencia"`
	Referencia        string      `json:"referencia"`
	ISIN              string      `json:"ISIN"`
	Calificacion      string      `json:"calificacion"`
}

// CatalogCG describes a derivatives strategy built from two legs.
type CatalogCG struct {
	Envelope
	NumeroInstrumento      int32       `json:"numeroInstrumento"`
	TipoValor              string      `json:"tipoValor"`
	Clase                  string      `json:"clase"`
	Vencimiento            string      `json:"vencimiento"`
	TipoEstrategia         string      `json:"tipoEstrategia"`
	Puja                   codec.Price `json:"puja"`
	UltimaFechaOperacion   codec.Date  `json:"ultimaFechaOperacion"`
	FechaVencimiento       codec.Date  `json:"fechaVencimiento"`
	IdentificadorPataCorta int64       `json:"identificadorPataCorta"`
	IdentificadorPataLarga int64       `json:"identificadorPataLarga"`
	Periodicidad           string      `json:"periodicidad"`
	NumeroVencimientos     int16       `json:"numeroVencimientos"`
}

// CatalogCY describes an instrument listed through the international
// quotation system together with its underlying.
type CatalogCY struct {
	Envelope
	NumeroInstrumento      int32      `json:"numeroInstrumento"`
	Emisora                string     `json:"emisora"`
	Serie                  string     `json:"serie"`
	TipoValor              string     `json:"tipoValor"`
	EmisoraSubyacente      string     `json:"emisoraSubyacente"`
	SerieSubyacente        string     `json:"serieSubyacente"`
	TipoValorSubyacente    string     `json:"tipoValorSubyacente"`
	NumeroValoresInscritos int64      `json:"numeroValoresInscritos"`
	ISIN                   string     `json:"ISIN"`
	FechaReferencia        codec.Date `json:"fechaReferencia"`
	BolsaOrigen            string     `json:"bolsaOrigen"`
}

func (CatalogCA) Type() MessageType { return TypeCA }
func (CatalogCB) Type() MessageType { return TypeCB }
func (CatalogCC) Type() MessageType { return TypeCC }
func (CatalogCD) Type() MessageType { return TypeCD }
func (CatalogCE) Type() MessageType { return TypeCE }
func (CatalogCF) Type() MessageType { return TypeCF }
func (CatalogCG) Type() MessageType { return TypeCG }
func (CatalogCY) Type() MessageType { return TypeCY }

func (CatalogCA) isMessage() {}
func (CatalogCB) isMessage() {}
func (CatalogCC) isMessage() {}
func (CatalogCD) isMessage() {}
func (CatalogCE) isMessage() {}
func (CatalogCF) isMessage() {}
func (CatalogCG) isMessage() {}
func (CatalogCY) isMessage() {}

func (c CatalogCA) InstrumentNumber() int32 { return c.NumeroInstrumento }
func (c CatalogCB) InstrumentNumber() int32 { return c.NumeroInstrumento }
func (c CatalogCC) InstrumentNumber() int32 { return c.NumeroInstrumento }
func (c CatalogCD) InstrumentNumber() int32 { return c.NumeroInstrumento }
func (c CatalogCE) InstrumentNumber() int32 { return c.NumeroTrac }
func (c CatalogCF) InstrumentNumber() int32 { return c.NumeroInstrumento }
func (c CatalogCG) InstrumentNumber() int32 { return c.NumeroInstrumento }
func (c CatalogCY) InstrumentNumber() int32 { return c.NumeroInstrumento }
