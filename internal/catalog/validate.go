package catalog

import (
	"github.com/rickgao/bmv-data/internal/codec"
	"github.com/rickgao/bmv-data/internal/model"
)

// AssertPositive fails unless v > 0.
func AssertPositive(field string, v int64) error {
	if v <= 0 {
		return &ValidationError{Field: field, Value: v, Reason: "must be greater than zero"}
	}
	return nil
}

// AssertNonNegative fails unless v >= 0.
func AssertNonNegative(field string, v int64) error {
	if v < 0 {
		return &ValidationError{Field: field, Value: v, Reason: "must be zero or greater"}
	}
	return nil
}

// AssertPositivePrice fails unless p > 0.
func AssertPositivePrice(field string, p codec.Price) error {
	if p.Sign() <= 0 {
		return &ValidationError{Field: field, Value: p, Reason: "must be greater than zero"}
	}
	return nil
}

// AssertNonNegativePrice fails unless p >= 0.
func AssertNonNegativePrice(field string, p codec.Price) error {
	if p.Sign() < 0 {
		return &ValidationError{Field: field, Value: p, Reason: "must be zero or greater"}
	}
	return nil
}

// AssertInCatalog fails unless value belongs to cat.
func AssertInCatalog(field, value string, cat Catalog) error {
	if !cat.Contains(value) {
		return &ValidationError{Field: field, Value: value, Reason: "not in catalog " + cat.Name()}
	}
	return nil
}

// checker keeps the first failure and tags it with the message type.
type checker struct {
	typ     model.MessageType
	err     error
	unknown []UnknownCode
}

// advise notes value when it is outside cat. Codes are advisory and never
// reject the record.
func (c *checker) advise(field, value string, cat Catalog) {
	if !cat.Contains(value) {
		c.unknown = append(c.unknown, UnknownCode{Type: c.typ, Field: field, Value: value})
	}
}

func (c *checker) add(err error) {
	if c.err != nil || err == nil {
		return
	}
	if ve, ok := err.(*ValidationError); ok {
		ve.Type = c.typ
	}
	c.err = err
}

func (c *checker) positive(field string, v int64)    { c.add(AssertPositive(field, v)) }
func (c *checker) nonNegative(field string, v int64) { c.add(AssertNonNegative(field, v)) }

func (c *checker) positivePrice(field string, p codec.Price)    { c.add(AssertPositivePrice(field, p)) }
func (c *checker) nonNegativePrice(field string, p codec.Price) { c.add(AssertNonNegativePrice(field, p)) }

func (c *checker) inCatalog(field, value string, cat Catalog) {
	c.add(AssertInCatalog(field, value, cat))
}
