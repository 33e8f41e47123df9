package store

import "fmt"

// DType identifies the element type of a column.
type DType uint8

const (
	DTypeInvalid DType = iota
	DTypeBool
	DTypeInt8
	DTypeInt16
	DTypeInt32
	DTypeInt64
	DTypeUint8
	DTypeUint16
	DTypeUint32
	DTypeUint64
	DTypeFloat32
	DTypeFloat64
	DTypeString
)

var dtypeNames = [...]string{
	DTypeInvalid: "invalid",
	DTypeBool:    "bool",
	DTypeInt8:    "int8",
	DTypeInt16:   "int16",
	DTypeInt32:   "int32",
	DTypeInt64:   "int64",
	DTypeUint8:   "uint8",
	DTypeUint16:  "uint16",
	DTypeUint32:  "uint32",
	DTypeUint64:  "uint64",
	DTypeFloat32: "float32",
	DTypeFloat64: "float64",
	DTypeString:  "string",
}

// Scalar is the set of Go types a column can hold.
type Scalar interface {
	bool | int8 | int16 | int32 | int64 |
		uint8 | uint16 | uint32 | uint64 |
		float32 | float64 | string
}

// DTypeOf returns the DType for T.
func DTypeOf[T Scalar]() DType {
	var zero T
	switch any(zero).(type) {
	case bool:
		return DTypeBool
	case int8:
		return DTypeInt8
	case int16:
		return DTypeInt16
	case int32:
		return DTypeInt32
	case int64:
		return DTypeInt64
	case uint8:
		return DTypeUint8
	case uint16:
		return DTypeUint16
	case uint32:
		return DTypeUint32
	case uint64:
		return DTypeUint64
	case float32:
		return DTypeFloat32
	case float64:
		return DTypeFloat64
	case string:
		return DTypeString
	}
	return DTypeInvalid
}

// Width returns the encoded size of one value in bytes, or 0 for
// variable-width types.
func (d DType) Width() int {
	switch d {
	case DTypeBool, DTypeInt8, DTypeUint8:
		return 1
	case DTypeInt16, DTypeUint16:
		return 2
	case DTypeInt32, DTypeUint32, DTypeFloat32:
		return 4
	case DTypeInt64, DTypeUint64, DTypeFloat64:
		return 8
	default:
		return 0
	}
}

// Valid reports whether d is a known column type.
func (d DType) Valid() bool {
	return d > DTypeInvalid && d <= DTypeString
}

func (d DType) String() string {
	if int(d) < len(dtypeNames) {
		return dtypeNames[d]
	}
	return fmt.Sprintf("dtype(%d)", d)
}

// MarshalText implements encoding.TextMarshaler.
func (d DType) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("store: invalid dtype %d", d)
	}
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *DType) UnmarshalText(text []byte) error {
	for i, name := range dtypeNames {
		if DType(i) != DTypeInvalid && name == string(text) {
			*d = DType(i)
			return nil
		}
	}
	return fmt.Errorf("store: unknown dtype %q", text)
}
