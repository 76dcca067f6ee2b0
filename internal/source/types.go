package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownType is returned for a variable type outside the scalar set.
var ErrUnknownType = errors.New("unknown variable type")

// ScalarType is the canonical (upper-case) name of a variable value type.
type ScalarType string

const (
	TypeBoolean  ScalarType = "BOOLEAN"
	TypeDatetime ScalarType = "DATETIME"
	TypeDecimal  ScalarType = "DECIMAL"
	TypeInteger  ScalarType = "INTEGER"
	TypeText     ScalarType = "TEXT"
	TypeLocale   ScalarType = "LOCALE"
	TypeBinary   ScalarType = "BINARY"
	TypePoint    ScalarType = "POINT"
)

// legacyDate is the deprecated spelling of TypeDatetime.
const legacyDate = "DATE"

var scalarTypes = []ScalarType{
	TypeBoolean, TypeDatetime, TypeDecimal, TypeInteger,
	TypeText, TypeLocale, TypeBinary, TypePoint,
}

// ParseType maps a raw type attribute to its canonical form. The match is
// case-insensitive, the legacy "DATE" alias included.
func ParseType(raw string) (ScalarType, error) {
	if strings.EqualFold(raw, legacyDate) {
		return TypeDatetime, nil
	}
	for _, t := range scalarTypes {
		if strings.EqualFold(raw, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownType, raw)
}

// Continuous reports whether values of t are free-form rather than chosen
// from a list.
func (t ScalarType) Continuous() bool {
	switch t {
	case TypeDatetime, TypeDecimal, TypeInteger, TypeText:
		return true
	}
	return false
}
