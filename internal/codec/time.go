package codec

import (
	"fmt"
	"time"
	_ "time/tzdata"
)

// Output layouts. The exchange publishes local wall-clock times, so no
// offset is written.
const (
	DateLayout           = "2006-01-02"
	DateTimeLayout       = "2006-01-02T15:04:05"
	DateTimeMillisLayout = "2006-01-02T15:04:05.000"
	DateTimeMicrosLayout = "2006-01-02T15:04:05.000000"
	KeyDateLayout        = "20060102"
)

// Location is the exchange time zone used for every decoded timestamp.
var Location = loadLocation("America/Mexico_City")

func loadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("CST", -6*60*60)
	}
	return loc
}

// Date is a calendar date (timestamp1).
type Date struct{ time.Time }

// DateTime is a wall-clock time with second precision (timestamp2).
type DateTime struct{ time.Time }

// DateTimeMillis is a wall-clock time with millisecond precision (timestamp3).
type DateTimeMillis struct{ time.Time }

// DateTimeMicros is a wall-clock time with microsecond precision, used for
// processing timestamps.
type DateTimeMicros struct{ time.Time }

func (d Date) MarshalJSON() ([]byte, error)           { return quote(d.Time, DateLayout), nil }
func (d DateTime) MarshalJSON() ([]byte, error)       { return quote(d.Time, DateTimeLayout), nil }
func (d DateTimeMillis) MarshalJSON() ([]byte, error) { return quote(d.Time, DateTimeMillisLayout), nil }
func (d DateTimeMicros) MarshalJSON() ([]byte, error) { return quote(d.Time, DateTimeMicrosLayout), nil }

func (d *Date) UnmarshalJSON(b []byte) error           { return unquote(b, DateLayout, &d.Time) }
func (d *DateTime) UnmarshalJSON(b []byte) error       { return unquote(b, DateTimeLayout, &d.Time) }
func (d *DateTimeMillis) UnmarshalJSON(b []byte) error { return unquote(b, DateTimeMillisLayout, &d.Time) }
func (d *DateTimeMicros) UnmarshalJSON(b []byte) error { return unquote(b, DateTimeMicrosLayout, &d.Time) }

func (d Date) String() string           { return d.Format(DateLayout) }
func (d DateTime) String() string       { return d.Format(DateTimeLayout) }
func (d DateTimeMillis) String() string { return d.Format(DateTimeMillisLayout) }
func (d DateTimeMicros) String() string { return d.Format(DateTimeMicrosLayout) }

func quote(t time.Time, layout string) []byte {
	b := make([]byte, 0, len(layout)+2)
	b = append(b, '"')
	b = t.In(Location).AppendFormat(b, layout)
	return append(b, '"')
}

func unquote(b []byte, layout string, t *time.Time) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("time %s: not a JSON string", b)
	}
	parsed, err := time.ParseInLocation(layout, string(b[1:len(b)-1]), Location)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// splitMillis floors raw epoch milliseconds into seconds and milliseconds.
func splitMillis(raw int64) (sec, ms int64) {
	sec, ms = raw/1000, raw%1000
	if ms < 0 {
		sec--
		ms += 1000
	}
	return sec, ms
}

// DecodeTimestamp1 decodes an 8-byte epoch-millisecond value as a date.
func DecodeTimestamp1(b []byte) (Date, error) {
	raw, err := DecodeInt64(b)
	if err != nil {
		return Date{}, fmt.Errorf("timestamp1: %w", err)
	}
	sec, _ := splitMillis(raw)
	t := time.Unix(sec, 0).In(Location)
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)}, nil
}

// DecodeTimestamp2 decodes an 8-byte epoch-millisecond value to whole seconds.
func DecodeTimestamp2(b []byte) (DateTime, error) {
	raw, err := DecodeInt64(b)
	if err != nil {
		return DateTime{}, fmt.Errorf("timestamp2: %w", err)
	}
	sec, _ := splitMillis(raw)
	return DateTime{Time: time.Unix(sec, 0).In(Location)}, nil
}

// DecodeTimestamp3 decodes an 8-byte epoch-millisecond value keeping the
// millisecond part.
func DecodeTimestamp3(b []byte) (DateTimeMillis, error) {
	raw, err := DecodeInt64(b)
	if err != nil {
		return DateTimeMillis{}, fmt.Errorf("timestamp3: %w", err)
	}
	sec, ms := splitMillis(raw)
	return DateTimeMillis{Time: time.Unix(sec, ms*int64(time.Millisecond)).In(Location)}, nil
}

// AppendTimestamp1 appends the midnight of d as epoch milliseconds.
func AppendTimestamp1(dst []byte, d Date) []byte {
	t := d.In(Location)
	midnight := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, Location)
	return AppendInt64(dst, midnight.Unix()*1000)
}

// AppendTimestamp2 appends t truncated to the second as epoch milliseconds.
func AppendTimestamp2(dst []byte, t DateTime) []byte {
	return AppendInt64(dst, t.Unix()*1000)
}

// AppendTimestamp3 appends t as epoch milliseconds.
func AppendTimestamp3(dst []byte, t DateTimeMillis) []byte {
	return AppendInt64(dst, t.UnixMilli())
}
