package model

import (
	"fmt"

	"github.com/rickgao/bmv-data/internal/codec"
)

// -----------------------------------------------------------------------------
// Groups and message types
// -----------------------------------------------------------------------------

// Group is the market-data group (producto) carried in the packet header.
type Group uint8

const (
	Producto18 Group = 18 // trading messages, 1-byte type tags
	Producto40 Group = 40 // instrument catalogs, 2-byte type tags
)

// Valid reports whether g is a known producto.
func (g Group) Valid() bool {
	return g == Producto18 || g == Producto40
}

// TagWidth returns the width of the type tag that starts every frame.
func (g Group) TagWidth() int {
	if g == Producto40 {
		return 2
	}
	return 1
}

// MessageType enumerates the decodable message and catalog types.
type MessageType uint8

const (
	TypeUnknown MessageType = iota
	TypeM
	TypeH
	TypeO
	TypeE
	TypeP
	TypeCA
	TypeCB
	TypeCC
	TypeCD
	TypeCE
	TypeCF
	TypeCG
	TypeCY
)

var typeTags = [...]string{
	TypeUnknown: "",
	TypeM:       "M",
	TypeH:       "H",
	TypeO:       "O",
	TypeE:       "E",
	TypeP:       "P",
	TypeCA:      "ca",
	TypeCB:      "cb",
	TypeCC:      "cc",
	TypeCD:      "cd",
	TypeCE:      "ce",
	TypeCF:      "cf",
	TypeCG:      "cg",
	TypeCY:      "cy",
}

// Tag returns the wire type tag.
func (t MessageType) Tag() string {
	if int(t) < len(typeTags) {
		return typeTags[t]
	}
	return ""
}

func (t MessageType) String() string {
	if tag := t.Tag(); tag != "" {
		return tag
	}
	return fmt.Sprintf("MessageType(%d)", uint8(t))
}

// Group returns the producto that carries t.
func (t MessageType) Group() Group {
	if t >= TypeCA {
		return Producto40
	}
	return Producto18
}

// ParseType maps a wire tag to its MessageType. The match is exact and
// scoped to the group, so "P" under producto 40 is unknown.
func ParseType(g Group, tag string) (MessageType, bool) {
	switch g {
	case Producto18:
		switch tag {
		case "M":
			return TypeM, true
		case "H":
			return TypeH, true
		case "O":
			return TypeO, true
		case "E":
			return TypeE, true
		case "P":
			return TypeP, true
		}
	case Producto40:
		switch tag {
		case "ca":
			return TypeCA, true
		case "cb":
			return TypeCB, true
		case "cc":
			return TypeCC, true
		case "cd":
			return TypeCD, true
		case "ce":
			return TypeCE, true
		case "cf":
			return TypeCF, true
		case "cg":
			return TypeCG, true
		case "cy":
			return TypeCY, true
		}
	}
	return TypeUnknown, false
}

// -----------------------------------------------------------------------------
// Envelope
// -----------------------------------------------------------------------------

// Envelope holds the fields stamped on every record by the packet framer.
type Envelope struct {
	Key         string               `json:"key"`         // "YYYYMMDD-<sequence>"
	Timestamp   codec.DateTimeMicros `json:"timestamp"`   // processing time
	FechaHora   codec.DateTimeMillis `json:"fechaHora"`   // packet header time
	TipoMensaje string               `json:"tipoMensaje"` // wire type tag
}

// Meta returns the envelope.
func (e Envelope) Meta() Envelope { return e }

// Message is a decoded record. The set of implementations is closed.
type Message interface {
	Type() MessageType
	Meta() Envelope
	isMessage()
}

// Instrument is implemented by catalog records that describe one instrument.
type Instrument interface {
	Message
	InstrumentNumber() int32
}

// -----------------------------------------------------------------------------
// Producto 18
// -----------------------------------------------------------------------------

// MessageM carries the weighted average price and volatility of an instrument.
type MessageM struct {
	Envelope
	NumeroInstrumento       int32       `json:"numeroInstrumento"`
	PrecioPromedioPonderado codec.Price `json:"precioPromedioPonderado"`
	Volatilidad             codec.Price `json:"volatilidad"`
}

// MessageH cancels a previously published trade.
type MessageH struct {
	Envelope
	NumeroInstrumento int32 `json:"numeroInstrumento"`
	FolioHecho        int32 `json:"folioHecho"`
}

// MessageO is a best bid/offer update.
type MessageO struct {
	Envelope
	NumeroInstrumento int32       `json:"numeroInstrumento"`
	Volumen           int32       `json:"volumen"`
	Precio            codec.Price `json:"precio"`
	Sentido           string      `json:"sentido"` // C buy, V sell
	Tipo              string      `json:"tipo"`
}

// MessageE is the accumulated daily statistics of an instrument.
type MessageE struct {
	Envelope
	NumeroInstrumento int32       `json:"numeroInstrumento"`
	NumeroOperaciones int32       `json:"numeroOperaciones"`
	Volumen           int64       `json:"volumen"`
	Importe           codec.Price `json:"importe"`
	Apertura          codec.Price `json:"apertura"`
	Maximo            codec.Price `json:"maximo"`
	Minimo            codec.Price `json:"minimo"`
	Promedio          codec.Price `json:"promedio"`
	Last              codec.Price `json:"last"`
}

// MessageP is a trade (hecho).
type MessageP struct {
	Envelope
	NumeroInstrumento int32          `json:"numeroInstrumento"`
	HoraHecho         codec.DateTime `json:"horaHecho"`
	Volumen           int32          `json:"volumen"`
	Precio            codec.Price    `json:"precio"`
	TipoConcertacion  string         `json:"tipoConcertacion"`
	FolioHecho        int32          `json:"folioHecho"`
	FijaPrecio        bool           `json:"fijaPrecio"`
	TipoOperacion     string         `json:"tipoOperacion"`
	Importe           codec.Price    `json:"importe"`
	Compra            string         `json:"compra"`
	Vende             string         `json:"vende"`
	Liquidacion       string         `json:"liquidacion"`
	IndicadorSubasta  string         `json:"indicadorSubasta"`
}

func (MessageM) Type() MessageType { return TypeM }
func (MessageH) Type() MessageType { return TypeH }
func (MessageO) Type() MessageType { return TypeO }
func (MessageE) Type() MessageType { return TypeE }
func (MessageP) Type() MessageType { return TypeP }

func (MessageM) isMessage() {}
func (MessageH) isMessage() {}
func (MessageO) isMessage() {}
func (MessageE) isMessage() {}
func (MessageP) isMessage() {}
