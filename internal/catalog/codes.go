package catalog

import "slices"

// Catalog is a fixed, ordered set of string codes.
type Catalog struct {
	name  string
	codes []string
}

// NewCatalog builds a catalog. The order of codes is preserved.
func NewCatalog(name string, codes ...string) Catalog {
	return Catalog{name: name, codes: codes}
}

// Name returns the catalog name.
func (c Catalog) Name() string { return c.name }

// Codes returns a copy of the codes in declaration order.
func (c Catalog) Codes() []string { return slices.Clone(c.codes) }

// Contains reports whether code belongs to the catalog.
func (c Catalog) Contains(code string) bool {
	return slices.Contains(c.codes, code)
}

// Producto 18 catalogs, enforced.
var (
	TipoConcertacion = NewCatalog("tipoConcertacion",
		"C", "O", "H", "D", "M", "P", "X", "v", "w", "%", "x", "y",
		"A", "B", "E", "F", "J", "K", "L", "N", "Q")
	TipoOperacion    = NewCatalog("tipoOperacion", "E", "C", "B", "D", "W", "X")
	Liquidacion      = NewCatalog("liquidacion", "M", "2", "4", "7", "9", "1")
	IndicadorSubasta = NewCatalog("indicadorSubasta", "P", "S", " ", "N", "")
	Sentido          = NewCatalog("sentido", "C", "V")
	TipoPostura      = NewCatalog("tipo", "C", "H", "P", "N")
)

// Producto 40 catalogs, advisory.
var (
	TipoValor = NewCatalog("tipoValor",
		"0", "1", "1A", "1B", "1E", "1I", "2", "3", "4", "41", "CF", "D", "F",
		"FE", "FF", "FH", "I", "J", "M", "R", "S", "T", "LD", "BI", "IP", "IT",
		"IS", "JE", "JI", "93", "94", "95", "97", "98", "CD", "D1", "D2", "D4",
		"D5", "D6", "D7", "D8", "FA", "FB", "FC", "FD", "FI", "FM", "FS", "FU",
		"G", "QI", "TA", "TR", "YY", "WA", "WC", "WE", "WI", "OA", "OC", "OI", "OE")
	Mercado         = NewCatalog("mercado", "G", "L", "S", "D", "M")
	Bursatilidad    = NewCatalog("bursatilidad", "A", "M", "B", "N", "")
	Referencia      = NewCatalog("referencia", "C", "P", "U", "R", "T", "")
	BolsaOrigen     = NewCatalog("bolsaOrigen", "M", "B", "")
	OperaTasaPrecio = NewCatalog("operaTasaPrecio", "T", "P")
	TipoWarrant     = NewCatalog("tipoWarrant", "C", "V")
	TipoOpcion      = NewCatalog("tipoOpcion", "C", "P", "")
	TipoEstrategia  = NewCatalog("tipoEstrategia", "CA", "PU", "SP", "CS", "BF", "CO", "ST", "SG")
	Periodicidad    = NewCatalog("periodicidad", "D", "S", "M", "T", "A")
)
