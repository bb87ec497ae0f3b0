package replay

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/framer"
	"github.com/rickgao/bmv-data/internal/model"
)

// Message types.
const (
	TypeLogin          byte = '!'
	TypeLoginResponse  byte = '&'
	TypeReplay         byte = '#'
	TypeReplayResponse byte = '*'
)

// Frame sizes.
const (
	LoginRequestLen   = 19
	ReplayRequestLen  = 9
	UserLen           = 6
	PasswordLen       = 10
	loginBodyLen      = 2
	replayBodyLen     = 9
	LoginResponseLen  = framer.HeaderLen + framer.FrameLenSize + loginBodyLen
	ReplayResponseLen = framer.HeaderLen + framer.FrameLenSize + replayBodyLen

	// ResponseSession is the session byte in response headers.
	ResponseSession = 2
)

// Status is the one-byte result of a login or replay request.
type Status byte

const (
	StatusAccepted        Status = 'A'
	StatusWrongGroup      Status = 'B'
	StatusBadCredentials  Status = 'C'
	StatusInvalidFirst    Status = 'J'
	StatusInvalidQuantity Status = 'K'
)

func (s Status) String() string {
	switch s {
	case StatusAccepted:
		return "A (accepted)"
	case StatusWrongGroup:
		return "B (wrong group)"
	case StatusBadCredentials:
		return "C (invalid credentials)"
	case StatusInvalidFirst:
		return "J (invalid first sequence)"
	case StatusInvalidQuantity:
		return "K (invalid quantity)"
	default:
		return fmt.Sprintf("%q (unknown)", byte(s))
	}
}

var (
	// ErrRejected is matched by every *StatusError.
	ErrRejected = errors.New("request rejected")

	// ErrMalformed is returned for frames of unexpected length or type.
	ErrMalformed = errors.New("malformed frame")
)

// StatusError reports a response whose status was not 'A'.
type StatusError struct {
	Request string // "login" or "replay"
	Status  Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s rejected: status %s", e.Request, e.Status)
}

// Is reports whether target is ErrRejected.
func (e *StatusError) Is(target error) bool {
	return target == ErrRejected
}

// LoginRequest is the first frame a client sends.
type LoginRequest struct {
	Group    model.Group
	User     string
	Password string
}

// MarshalBinary encodes r in its 19-byte wire form.
func (r LoginRequest) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, LoginRequestLen)
	b = append(b, LoginRequestLen, TypeLogin, byte(r.Group))
	b, err := codec.AppendAlpha(b, r.User, UserLen)
	if err != nil {
		return nil, fmt.Errorf("user: %w", err)
	}
	b, err = codec.AppendAlpha(b, r.Password, PasswordLen)
	if err != nil {
		return nil, fmt.Errorf("password: %w", err)
	}
	return b, nil
}

// UnmarshalBinary decodes a 19-byte login request. Space and zero padding
// is removed from user and password.
func (r *LoginRequest) UnmarshalBinary(b []byte) error {
	if len(b) != LoginRequestLen || b[0] != LoginRequestLen {
		return fmt.Errorf("login request: %w: %d bytes", ErrMalformed, len(b))
	}
	if b[1] != TypeLogin {
		return fmt.Errorf("login request: %w: type %q", ErrMalformed, b[1])
	}
	user, err := codec.DecodeAlpha(b[3 : 3+UserLen])
	if err != nil {
		return fmt.Errorf("user: %w", err)
	}
	pass, err := codec.DecodeAlpha(b[3+UserLen:])
	if err != nil {
		return fmt.Errorf("password: %w", err)
	}
	r.Group = model.Group(b[2])
	r.User = strings.TrimRight(user, "\x00 ")
	r.Password = strings.TrimRight(pass, "\x00 ")
	return nil
}

// ReplayRequest asks for Quantity packets starting at sequence First.
type ReplayRequest struct {
	Group    model.Group
	First    int32
	Quantity int16
}

// MarshalBinary encodes r in its 9-byte wire form.
func (r ReplayRequest) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, ReplayRequestLen)
	b = append(b, ReplayRequestLen, TypeReplay, byte(r.Group))
	b = codec.AppendInt32(b, r.First)
	return codec.AppendInt16(b, r.Quantity), nil
}

// UnmarshalBinary decodes a 9-byte replay request.
func (r *ReplayRequest) UnmarshalBinary(b []byte) error {
	if len(b) != ReplayRequestLen || b[0] != ReplayRequestLen {
		return fmt.Errorf("replay request: %w: %d bytes", ErrMalformed, len(b))
	}
	if b[1] != TypeReplay {
		return fmt.Errorf("replay request: %w: type %q", ErrMalformed, b[1])
	}
	first, _ := codec.DecodeInt32(b[3:7])
	qty, _ := codec.DecodeInt16(b[7:9])
	r.Group = model.Group(b[2])
	r.First = first
	r.Quantity = qty
	return nil
}

// LoginResponse answers a LoginRequest.
type LoginResponse struct {
	Status Status
}

// ReplayResponse answers a ReplayRequest. Rejections carry zero fields.
type ReplayResponse struct {
	Group    model.Group
	First    int32
	Quantity int16
	Status   Status
}

// responseHeader returns the header shared by both responses.
func responseHeader(length int, now time.Time) framer.Header {
	return framer.Header{
		Length:       uint16(length),
		MessageCount: 1,
		Group:        model.Producto18,
		Session:      ResponseSession,
		Timestamp:    codec.DateTimeMillis{Time: now.Truncate(time.Millisecond)},
	}
}

// AppendLoginResponse appends r in wire form.
func AppendLoginResponse(dst []byte, r LoginResponse, now time.Time) []byte {
	dst = framer.AppendHeader(dst, responseHeader(LoginResponseLen, now))
	dst = codec.AppendInt16(dst, loginBodyLen)
	return append(dst, TypeLoginResponse, byte(r.Status))
}

// AppendReplayResponse appends r in wire form.
func AppendReplayResponse(dst []byte, r ReplayResponse, now time.Time) []byte {
	dst = framer.AppendHeader(dst, responseHeader(ReplayResponseLen, now))
	dst = codec.AppendInt16(dst, replayBodyLen)
	dst = append(dst, TypeReplayResponse, byte(r.Group))
	dst = codec.AppendInt32(dst, r.First)
	dst = codec.AppendInt16(dst, r.Quantity)
	return append(dst, byte(r.Status))
}

// DecodeLoginResponse decodes a full login response.
func DecodeLoginResponse(b []byte) (LoginResponse, error) {
	if len(b) != LoginResponseLen {
		return LoginResponse{}, fmt.Errorf("login response: %w: %d bytes", ErrMalformed, len(b))
	}
	body := b[framer.HeaderLen+framer.FrameLenSize:]
	if body[0] != TypeLoginResponse {
		return LoginResponse{}, fmt.Errorf("login response: %w: type %q", ErrMalformed, body[0])
	}
	return LoginResponse{Status: Status(body[1])}, nil
}

// DecodeReplayResponse decodes a full replay response. The body length
// field is not checked; some servers send 2 instead of 9.
func DecodeReplayResponse(b []byte) (ReplayResponse, error) {
	if len(b) != ReplayResponseLen {
		return ReplayResponse{}, fmt.Errorf("replay response: %w: %d bytes", ErrMalformed, len(b))
	}
	body := b[framer.HeaderLen+framer.FrameLenSize:]
	if body[0] != TypeReplayResponse {
		return ReplayResponse{}, fmt.Errorf("replay response: %w: type %q", ErrMalformed, body[0])
	}
	first, _ := codec.DecodeInt32(body[2:6])
	qty, _ := codec.DecodeInt16(body[6:8])
	return ReplayResponse{
		Group:    model.Group(body[1]),
		First:    first,
		Quantity: qty,
		Status:   Status(body[8]),
	}, nil
}
