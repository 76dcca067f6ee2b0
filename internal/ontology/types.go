// Package ontology holds the refined output: the folder tree that drives the
// ontology table and the standalone enumerated-concept artifacts.
package ontology

import "ontorefine/internal/source"

// Type tags an output variable or artifact.
type Type string

const (
	TypeBoolean  Type = "BOOLEAN"
	TypeDatetime Type = "DATETIME"
	TypeDecimal  Type = "DECIMAL"
	TypeInteger  Type = "INTEGER"
	TypeText     Type = "TEXT"
	TypeLocale   Type = "LOCALE"
	TypeBinary   Type = "BINARY"
	TypePoint    Type = "POINT"

	// TypeGeneratedEnumeration marks values synthesised by the refiner.
	TypeGeneratedEnumeration Type = "GENERATED_ENUMERATION"
	TypeRecentTime           Type = "RECENT_TIME"
	TypeVitalStatus          Type = "VITAL_STATUS"
)

// TypeOf converts a canonical source type to its output tag.
func TypeOf(t source.ScalarType) Type {
	return Type(t)
}

// Variable is always a leaf of the output tree.
type Variable struct {
	Name        string `xml:"name" json:"name" msgpack:"name"`
	Description string `xml:"description,omitempty" json:"description,omitempty" msgpack:"description,omitempty"`
	Type        Type   `xml:"type" json:"type" msgpack:"type"`
	Code        string `xml:"code" json:"code" msgpack:"code"`
}
