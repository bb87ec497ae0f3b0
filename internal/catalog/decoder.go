package catalog

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/model"
)

// payloadLen is the exact payload length per type, type tag included.
var payloadLen = map[model.MessageType]int{
	model.TypeM:  21,
	model.TypeH:  9,
	model.TypeO:  19,
	model.TypeE:  65,
	model.TypeP:  52,
	model.TypeCA: 93,
	model.TypeCB: 111,
	model.TypeCC: 70,
	model.TypeCD: 92,
	model.TypeCE: 95,
	model.TypeCF: 77,
	model.TypeCG: 67,
	model.TypeCY: 69,
}

// PayloadLen returns the fixed payload length of t, type tag included.
func PayloadLen(t model.MessageType) int {
	return payloadLen[t]
}

// UnknownCode identifies an advisory catalog value that was not recognised.
type UnknownCode struct {
	Type  model.MessageType
	Field string
	Value string
}

// Decoder turns frame payloads into records.
type Decoder struct {
	logger *slog.Logger

	mu      sync.Mutex
	unknown map[UnknownCode]int64
}

// NewDecoder creates a Decoder. Unknown producto 40 codes are logged to logger.
func NewDecoder(logger *slog.Logger) *Decoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Decoder{
		logger:  logger,
		unknown: make(map[UnknownCode]int64),
	}
}

// Tag extracts the type tag of a payload for group g.
func Tag(g model.Group, payload []byte) (string, error) {
	w := g.TagWidth()
	if len(payload) < w {
		return "", &codec.LengthError{Kind: "type tag", Want: w, Got: len(payload)}
	}
	return codec.DecodeAlpha(payload[:w])
}

// Decode decodes one frame payload. env is copied into the record with its
// TipoMensaje set from the tag. It returns ErrUnknownType for tags outside
// the decodable set, a codec.LengthError for a wrong payload length and a
// *ValidationError when a field breaks its rule.
func (d *Decoder) Decode(g model.Group, payload []byte, env model.Envelope) (model.Message, error) {
	tag, err := Tag(g, payload)
	if err != nil {
		return nil, err
	}
	t, ok := model.ParseType(g, tag)
	if !ok {
		return nil, fmt.Errorf("%w: group %d tag %q", ErrUnknownType, g, tag)
	}
	if want := payloadLen[t]; len(payload) != want {
		return nil, fmt.Errorf("message %s: %w", t, &codec.LengthError{Kind: "payload", Want: want, Got: len(payload)})
	}
	env.TipoMensaje = tag

	f := &fields{b: payload}
	c := &checker{typ: t}
	var msg model.Message

	switch t {
	case model.TypeM:
		msg = decodeM(f, c, env)
	case model.TypeH:
		msg = decodeH(f, c, env)
	case model.TypeO:
		msg = decodeO(f, c, env)
	case model.TypeE:
		msg = decodeE(f, c, env)
	case model.TypeP:
		msg = decodeP(f, c, env)
	case model.TypeCA:
		msg = decodeCA(f, c, env)
	case model.TypeCB:
		msg = decodeCB(f, c, env)
	case model.TypeCC:
		msg = decodeCC(f, c, env)
	case model.TypeCD:
		msg = decodeCD(f, c, env)
	case model.TypeCE:
		msg = decodeCE(f, c, env)
	case model.TypeCF:
		msg = decodeCF(f, c, env)
	case model.TypeCG:
		msg = decodeCG(f, c, env)
	case model.TypeCY:
		msg = decodeCY(f, c, env)
	}

	if f.err != nil {
		return nil, fmt.Errorf("message %s: %w", t, f.err)
	}
	if c.err != nil {
		return nil, c.err
	}
	for _, u := range c.unknown {
		d.advise(u)
	}
	return msg, nil
}

// UnknownCodes returns how often each unrecognised advisory code was seen.
func (d *Decoder) UnknownCodes() map[UnknownCode]int64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make(map[UnknownCode]int64, len(d.unknown))
	for k, v := range d.unknown {
		out[k] = v
	}
	return out
}

// advise counts an unrecognised code of an accepted record. The first
// sighting of each code is logged.
func (d *Decoder) advise(key UnknownCode) {
	d.mu.Lock()
	d.unknown[key]++
	first := d.unknown[key] == 1
	d.mu.Unlock()

	if first {
		d.logger.Warn("unknown catalog code",
			"type", key.Type.Tag(),
			"field", key.Field,
			"value", key.Value,
		)
	}
}
